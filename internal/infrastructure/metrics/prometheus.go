// Package metrics exposes service metrics in the Prometheus text format.
// Every collector lives on a private registry served at /metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "onboard"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Config holds collector configuration
type Config struct {
	// Namespace prefixes metric names. Default: "onboard".
	Namespace string
	// HTTPBuckets are the request duration buckets. Default: prometheus.DefBuckets.
	HTTPBuckets []float64
	// RuntimeCollectors adds the Go and process collectors.
	RuntimeCollectors bool
}

// Collector owns the registry and the service's instruments.
//
// Safe for concurrent use.
type Collector struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	httpInFlight    prometheus.Gauge
	eventDeliveries *prometheus.CounterVec
	refreshRuns     *prometheus.CounterVec
	refreshDuration prometheus.Histogram

	namespace string
}

// New creates a Collector and registers its instruments
func New(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if len(cfg.HTTPBuckets) == 0 {
		cfg.HTTPBuckets = prometheus.DefBuckets
	}

	c := &Collector{
		registry:  prometheus.NewRegistry(),
		namespace: cfg.Namespace,
	}

	c.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served.",
		},
		[]string{"method", "route", "status"},
	)
	c.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   cfg.HTTPBuckets,
		},
		[]string{"method", "route"},
	)
	c.httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		},
	)
	c.eventDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "events",
			Name:      "deliveries_total",
			Help:      "Event handler invocations by event type and outcome.",
		},
		[]string{"event_type", "outcome"},
	)
	c.refreshRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "roster",
			Name:      "refresh_total",
			Help:      "Roster refreshes from the store by outcome.",
		},
		[]string{"outcome"},
	)
	c.refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "roster",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of roster refreshes in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.httpInFlight,
		c.eventDeliveries,
		c.refreshRuns,
		c.refreshDuration,
	)
	if cfg.RuntimeCollectors {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// GinHandler is Handler adapted to a gin route
func (c *Collector) GinHandler() gin.HandlerFunc {
	return gin.WrapH(c.Handler())
}

// GinMiddleware records request count, latency and in-flight requests.
// Routes are labelled by their pattern so ids never become label values.
func (c *Collector) GinMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		c.httpInFlight.Inc()
		defer c.httpInFlight.Dec()

		ctx.Next()

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := ctx.Request.Method
		c.httpRequests.WithLabelValues(method, route, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveDelivery counts one event handler invocation. Its signature
// matches the event bus delivery observer.
func (c *Collector) ObserveDelivery(eventType string, err error) {
	c.eventDeliveries.WithLabelValues(eventType, outcome(err)).Inc()
}

// RegisterGaugeFunc exposes a value sampled at scrape time, such as the
// number of realtime subscribers.
func (c *Collector) RegisterGaugeFunc(subsystem, name, help string, fn func() float64) error {
	return c.registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		},
		fn,
	))
}

// Refresher is anything that reloads the roster
type Refresher interface {
	Refresh(ctx context.Context) error
}

type instrumentedRefresher struct {
	next      Refresher
	collector *Collector
}

func (r instrumentedRefresher) Refresh(ctx context.Context) error {
	start := time.Now()
	err := r.next.Refresh(ctx)
	r.collector.refreshDuration.Observe(time.Since(start).Seconds())
	r.collector.refreshRuns.WithLabelValues(outcome(err)).Inc()
	return err
}

// InstrumentRefresher wraps next so every refresh is counted and timed
func (c *Collector) InstrumentRefresher(next Refresher) Refresher {
	return instrumentedRefresher{next: next, collector: c}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
