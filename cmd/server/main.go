package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/infrastructure/bootstrap"
	"github.com/attractify/onboarding/internal/infrastructure/cache"
	"github.com/attractify/onboarding/internal/infrastructure/config"
	"github.com/attractify/onboarding/internal/infrastructure/event"
	"github.com/attractify/onboarding/internal/infrastructure/logger"
	"github.com/attractify/onboarding/internal/infrastructure/metrics"
	"github.com/attractify/onboarding/internal/infrastructure/realtime"
	"github.com/attractify/onboarding/internal/infrastructure/scheduler"
	"github.com/attractify/onboarding/internal/infrastructure/storage"
	"github.com/attractify/onboarding/internal/infrastructure/telemetry"
	"github.com/attractify/onboarding/internal/interfaces/http/handler"
	"github.com/attractify/onboarding/internal/interfaces/http/middleware"
	"github.com/attractify/onboarding/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.NewForEnvironment(cfg.App.Env,
		logger.Settings(cfg.App.Name, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	zap.ReplaceGlobals(log)
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting onboarding dashboard API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("store", cfg.Store.Driver),
		zap.String("version", version),
	)

	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.ConfigFrom(cfg, version), log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	collector := metrics.New(metrics.Config{RuntimeCollectors: true})

	// Persistence
	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing store", zap.Error(err))
		}
	}()

	// Event bus: activity feed and websocket fan-out
	bus := event.NewInMemoryEventBus(log, event.WithDeliveryObserver(collector.ObserveDelivery))
	bus.Subscribe(clientapp.NewActivityRecorder(store, log))

	var hub *realtime.Hub
	if cfg.Realtime.Enabled {
		hub = realtime.NewHub(
			realtime.WithHeartbeat(cfg.Realtime.Heartbeat),
			realtime.WithMaxClients(cfg.Realtime.MaxClients),
			realtime.WithAllowedOrigins(cfg.Realtime.AllowedOrigins),
			realtime.WithLogger(log),
		)
		bus.Subscribe(hub)
		if err := collector.RegisterGaugeFunc("realtime", "subscribers", "Open websocket subscriptions",
			func() float64 { return float64(hub.Count()) }); err != nil {
			log.Warn("Failed to register subscriber gauge", zap.Error(err))
		}
	}

	cacheOpts := []cache.StatsCacheFactoryOption{cache.WithLogger(log), cache.WithInMemoryFallback(true)}
	if store.Redis != nil {
		cacheOpts = append(cacheOpts, cache.WithRedisClient(store.Redis))
	}
	statsCache, err := cache.NewStatsCacheFactory(cfg.Redis, cfg.Cache, cacheOpts...).Create(ctx)
	if err != nil {
		log.Fatal("Failed to create stats cache", zap.Error(err))
	}

	// Application services
	clients := clientapp.NewClientService(store, bus, log).WithStatsCache(statsCache)
	if err := clients.Load(ctx); err != nil {
		log.Fatal("Failed to load clients", zap.Error(err))
	}
	log.Info("Clients loaded", zap.Int("count", clients.Count()))
	if err := collector.RegisterGaugeFunc("clients", "total", "Clients in the roster",
		func() float64 { return float64(clients.Count()) }); err != nil {
		log.Warn("Failed to register clients gauge", zap.Error(err))
	}

	// The interface stays nil when storage is off; asset-url then reports
	// ERR_UNAVAILABLE.
	var assets clientapp.AssetStorage
	if cfg.Storage.Enabled {
		s3Storage, err := storage.NewS3AssetStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to configure recording storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Recording bucket unavailable", zap.String("bucket", s3Storage.Bucket()), zap.Error(err))
		}
		assets = s3Storage
	}

	analytics := clientapp.NewAnalyticsService(clients, store)

	if cfg.Scheduler.Enabled {
		refresh, err := scheduler.NewRefreshScheduler(cfg.Scheduler, collector.InstrumentRefresher(clients), log)
		if err != nil {
			log.Fatal("Invalid scheduler configuration", zap.Error(err))
		}
		if err := refresh.Start(); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Scheduler.JobTimeout)
			defer cancel()
			_ = refresh.Stop(stopCtx)
		}()
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Invalid trusted proxies", zap.Error(err))
	}

	// RequestID runs first so the request logger and spans can carry it
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(collector.GinMiddleware())

	var apiMiddleware []gin.HandlerFunc
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Stop()
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter))
	}

	hs := handler.Handlers{
		Dashboard:  handler.NewDashboardHandler(clientapp.NewDashboardService(clients, store, log)),
		Clients:    handler.NewClientHandler(clients, analytics),
		Onboarding: handler.NewOnboardingHandler(clientapp.NewOnboardingService(clients, store)),
		Recording:  handler.NewRecordingHandler(clientapp.NewRecordingService(clients, store, assets)),
		Analytics:  handler.NewAnalyticsHandler(analytics),
		Timeline:   handler.NewTimelineHandler(clientapp.NewTimelineService(clients, store)),
		Support:    handler.NewSupportHandler(),
		Realtime:   handler.NewRealtimeHandler(hub),
		System: handler.NewSystemHandler(cfg.App.Name, version, store.Driver,
			handler.WithReadiness(clients.Loaded),
			handler.WithHealthCheck("store", store.Ping),
		),
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1"), router.WithMiddleware(apiMiddleware...))
	hs.Register(r)
	r.Setup()
	hs.RegisterRoot(engine, collector.GinHandler())

	for _, route := range r.Routes() {
		log.Debug("Route registered",
			zap.String("method", route.Method),
			zap.String("path", route.Path),
			zap.String("description", route.Description),
		)
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if hub != nil {
		hub.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Warn("Event bus stop failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
