package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/attractify/onboarding/internal/domain/client"
)

// DefaultStatsKey is the redis key of the cached dashboard stats.
const DefaultStatsKey = "onboarding:dashboard:stats"

// RedisStatsCache shares dashboard stats between server instances. Redis
// failures degrade to cache misses and are logged.
type RedisStatsCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStatsCache creates a stats cache over an existing client. An
// empty key uses DefaultStatsKey.
func NewRedisStatsCache(rdb *redis.Client, key string, ttl time.Duration, logger *zap.Logger) *RedisStatsCache {
	if key == "" {
		key = DefaultStatsKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStatsCache{client: rdb, key: key, ttl: ttl, logger: logger}
}

// Get reads the stats. A missing key, a redis error and an undecodable
// value all count as a miss.
func (c *RedisStatsCache) Get(ctx context.Context) (*client.DashboardStats, bool) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("stats cache read failed", zap.String("key", c.key), zap.Error(err))
		}
		return nil, false
	}
	var stats client.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		c.logger.Warn("stats cache holds invalid JSON", zap.String("key", c.key), zap.Error(err))
		return nil, false
	}
	return &stats, true
}

// Set writes stats with the configured TTL
func (c *RedisStatsCache) Set(ctx context.Context, stats client.DashboardStats) {
	raw, err := json.Marshal(stats)
	if err != nil {
		c.logger.Warn("failed to encode dashboard stats", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("stats cache write failed", zap.String("key", c.key), zap.Error(err))
	}
}

// Invalidate deletes the cached stats
func (c *RedisStatsCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		c.logger.Warn("stats cache invalidation failed", zap.String("key", c.key), zap.Error(err))
	}
}

var _ StatsCache = (*RedisStatsCache)(nil)
