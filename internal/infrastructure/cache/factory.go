// Package cache caches dashboard aggregates in redis or process memory.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/infrastructure/config"
)

// StatsCache caches the dashboard aggregates between mutations
type StatsCache interface {
	Get(ctx context.Context) (*client.DashboardStats, bool)
	Set(ctx context.Context, stats client.DashboardStats)
	Invalidate(ctx context.Context)
}

// pingTimeout bounds the startup connectivity check
const pingTimeout = 5 * time.Second

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return rdb, nil
}

// StatsCacheFactory picks the stats cache backend from configuration
type StatsCacheFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
}

// StatsCacheFactoryOption is a functional option for configuring the factory
type StatsCacheFactoryOption func(*StatsCacheFactory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) StatsCacheFactoryOption {
	return func(f *StatsCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// cache when redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) StatsCacheFactoryOption {
	return func(f *StatsCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithRedisClient reuses an already connected client instead of dialing
func WithRedisClient(rdb *redis.Client) StatsCacheFactoryOption {
	return func(f *StatsCacheFactory) {
		f.client = rdb
	}
}

// NewStatsCacheFactory creates a new factory
func NewStatsCacheFactory(redisCfg config.RedisConfig, cacheCfg config.CacheConfig, opts ...StatsCacheFactoryOption) *StatsCacheFactory {
	f := &StatsCacheFactory{
		redisConfig:           redisCfg,
		ttl:                   cacheCfg.StatsTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a redis cache when redis is enabled and reachable.
// Otherwise it returns an in-memory cache, unless fallback is disabled.
func (f *StatsCacheFactory) Create(ctx context.Context) (StatsCache, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("using in-memory dashboard stats cache")
		return NewInMemoryStatsCache(f.ttl), nil
	}

	rdb := f.client
	if rdb == nil {
		var err error
		rdb, err = NewRedisClient(ctx, f.redisConfig)
		if err != nil {
			if !f.allowInMemoryFallback {
				return nil, fmt.Errorf("redis required for stats cache but unavailable: %w", err)
			}
			f.logger.Warn("Redis unavailable, falling back to in-memory stats cache. "+
				"Instances will not share cached dashboard stats.",
				zap.Error(err),
			)
			return NewInMemoryStatsCache(f.ttl), nil
		}
	}

	f.logger.Info("using Redis dashboard stats cache", zap.String("addr", f.redisConfig.Addr()))
	return NewRedisStatsCache(rdb, DefaultStatsKey, f.ttl, f.logger), nil
}
