package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/infrastructure/event"
	"github.com/attractify/onboarding/internal/infrastructure/localstore"
	"github.com/attractify/onboarding/internal/interfaces/http/middleware"
	"github.com/attractify/onboarding/internal/interfaces/http/router"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

type fakeAssets struct {
	keys []string
}

func (f *fakeAssets) PresignPut(_ context.Context, key, _ string) (string, time.Time, error) {
	f.keys = append(f.keys, key)
	return "https://storage.test/recordings/" + key + "?X-Amz-Signature=abc", fixedNow.Add(15 * time.Minute), nil
}

type testAPI struct {
	engine  *gin.Engine
	clients *clientapp.ClientService
	store   *localstore.Store
	assets  *fakeAssets
	router  *router.Router
}

type apiOption func(*apiConfig)

type apiConfig struct {
	noAsset bool
}

func withoutAssets() apiOption {
	return func(c *apiConfig) { c.noAsset = true }
}

func newTestAPI(t *testing.T, opts ...apiOption) *testAPI {
	t.Helper()

	cfg := &apiConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	clock := func() time.Time { return fixedNow }
	store := localstore.New(localstore.NewMemorySlot("employee_portal_clients"),
		localstore.WithActivitySlot(localstore.NewMemorySlot("activity")),
		localstore.WithClock(clock),
	)
	bus := event.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(clientapp.NewActivityRecorder(store, nil))
	clients := clientapp.NewClientService(store, bus, zap.NewNop()).WithClock(clock)
	require.NoError(t, clients.Load(context.Background()))

	assets := &fakeAssets{}
	var storage clientapp.AssetStorage = assets
	if cfg.noAsset {
		storage = nil
	}

	analytics := clientapp.NewAnalyticsService(clients, store)
	clientHandler := NewClientHandler(clients, analytics)
	clientHandler.now = clock

	hs := Handlers{
		Dashboard:  NewDashboardHandler(clientapp.NewDashboardService(clients, store, zap.NewNop())),
		Clients:    clientHandler,
		Onboarding: NewOnboardingHandler(clientapp.NewOnboardingService(clients, store)),
		Recording:  NewRecordingHandler(clientapp.NewRecordingService(clients, store, storage)),
		Analytics:  NewAnalyticsHandler(analytics),
		Timeline:   NewTimelineHandler(clientapp.NewTimelineService(clients, store)),
		Support:    NewSupportHandler(),
		Realtime:   NewRealtimeHandler(nil),
		System:     NewSystemHandler("onboardd", "test", "local", WithReadiness(clients.Loaded)),
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	hs.Register(r)
	r.Setup()
	hs.RegisterRoot(engine, func(c *gin.Context) { c.String(http.StatusOK, "# metrics") })

	return &testAPI{engine: engine, clients: clients, store: store, assets: assets, router: r}
}

func (a *testAPI) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.RequestIDHeader, "req-test")
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testAPI) createClient(t *testing.T, company, email string) *client.Client {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/clients", map[string]any{
		"company_name":  company,
		"contact_email": email,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode[*client.Client](t, w)
	return resp.Data
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) APIResponse[T] {
	t.Helper()
	var resp APIResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}
