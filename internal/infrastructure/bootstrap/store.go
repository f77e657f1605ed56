// Package bootstrap opens the Store adapter selected by store.driver.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/infrastructure/cache"
	"github.com/attractify/onboarding/internal/infrastructure/config"
	"github.com/attractify/onboarding/internal/infrastructure/localstore"
	"github.com/attractify/onboarding/internal/infrastructure/logger"
	"github.com/attractify/onboarding/internal/infrastructure/persistence"
	"github.com/attractify/onboarding/internal/infrastructure/telemetry"
)

// Store is an opened persistence adapter and the connections behind it.
type Store struct {
	client.Store

	// Driver is config.DriverLocal or config.DriverHosted.
	Driver string
	// Redis is the shared connection when the local store keeps its slots
	// in redis. Nil otherwise.
	Redis *redis.Client

	ping    func(ctx context.Context) error
	closers []func() error
}

// Ping checks the backing connection. The file backend has nothing to
// check and always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// Close releases every connection in reverse opening order.
func (s *Store) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// OpenStore builds the adapter configured in cfg.Store.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	switch cfg.Store.Driver {
	case config.DriverLocal:
		return openLocal(ctx, cfg, log)
	case config.DriverHosted:
		return openHosted(cfg, log)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openLocal(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	local := cfg.Store.Local
	out := &Store{Driver: config.DriverLocal}

	var clientsSlot, activitySlot localstore.Slot
	switch local.Backend {
	case config.BackendRedis:
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		out.Redis = rdb
		out.ping = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		out.closers = append(out.closers, rdb.Close)
		clientsSlot = localstore.NewRedisSlot(rdb, local.Slot)
		activitySlot = localstore.NewRedisSlot(rdb, local.ActivitySlot)
	default:
		fileSlot, err := localstore.NewFileSlot(local.DataDir, local.Slot)
		if err != nil {
			return nil, err
		}
		feedSlot, err := localstore.NewFileSlot(local.DataDir, local.ActivitySlot)
		if err != nil {
			return nil, err
		}
		clientsSlot, activitySlot = fileSlot, feedSlot
	}

	out.Store = localstore.New(clientsSlot,
		localstore.WithActivitySlot(activitySlot),
		localstore.WithLogger(log.Named("localstore")),
	)
	log.Info("Local store ready",
		zap.String("backend", local.Backend),
		zap.String("slot", local.Slot),
	)
	return out, nil
}

func openHosted(cfg *config.Config, log *zap.Logger) (*Store, error) {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Store.Hosted, persistence.WithGormLogger(gormLog))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to hosted store: %w", err)
	}

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfigFrom(cfg.Telemetry), log)
	if err := plugin.Register(db.DB); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	log.Info("Hosted store connected")
	return &Store{
		Store:   persistence.NewGormClientStore(db.DB),
		Driver:  config.DriverHosted,
		ping:    db.Ping,
		closers: []func() error{db.Close},
	}, nil
}
