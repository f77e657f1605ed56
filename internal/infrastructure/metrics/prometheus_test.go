package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, DefaultNamespace, c.namespace)
	assert.NotNil(t, c.Registry())

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		assert.NotContains(t, mf.GetName(), "go_", "runtime collectors are opt-in")
	}
}

func TestCollector_GinMiddleware(t *testing.T) {
	c := New(Config{})
	engine := gin.New()
	engine.Use(c.GinMiddleware())
	engine.GET("/api/v1/clients/:id", func(ctx *gin.Context) {
		ctx.Status(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/clients/"+id, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/api/v1/clients/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.httpInFlight))
	assert.Equal(t, 2, testutil.CollectAndCount(c.httpDuration))
}

func TestCollector_ObserveDelivery(t *testing.T) {
	c := New(Config{})
	c.ObserveDelivery("client.created", nil)
	c.ObserveDelivery("client.created", nil)
	c.ObserveDelivery("client.created", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.eventDeliveries.WithLabelValues("client.created", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.eventDeliveries.WithLabelValues("client.created", OutcomeFailure)))
}

type stubRefresher struct {
	err   error
	calls int
}

func (s *stubRefresher) Refresh(context.Context) error {
	s.calls++
	return s.err
}

func TestCollector_InstrumentRefresher(t *testing.T) {
	c := New(Config{})
	inner := &stubRefresher{}
	r := c.InstrumentRefresher(inner)

	require.NoError(t, r.Refresh(context.Background()))
	inner.err = errors.New("store down")
	assert.EqualError(t, r.Refresh(context.Background()), "store down")

	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.refreshRuns.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.refreshRuns.WithLabelValues(OutcomeFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.refreshDuration))
}

func TestCollector_RegisterGaugeFunc(t *testing.T) {
	c := New(Config{Namespace: "test"})
	subscribers := 3.0
	require.NoError(t, c.RegisterGaugeFunc("realtime", "subscribers", "Connected subscribers.", func() float64 {
		return subscribers
	}))

	err := c.RegisterGaugeFunc("realtime", "subscribers", "Connected subscribers.", func() float64 { return 0 })
	var already prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &already)

	families, err := c.Registry().Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() == "test_realtime_subscribers" {
			found = true
			assert.Equal(t, 3.0, mf.GetMetric()[0].GetGauge().GetValue())
		}
	}
	assert.True(t, found)
}

func TestCollector_Handler(t *testing.T) {
	c := New(Config{RuntimeCollectors: true})
	c.ObserveDelivery("client.deleted", nil)

	engine := gin.New()
	engine.GET("/metrics", c.GinHandler())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `onboard_events_deliveries_total{event_type="client.deleted",outcome="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
