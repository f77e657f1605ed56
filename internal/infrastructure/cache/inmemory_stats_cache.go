package cache

import (
	"context"
	"sync"
	"time"

	"github.com/attractify/onboarding/internal/domain/client"
)

// InMemoryStatsCache holds the last computed dashboard stats in process
// memory until the TTL passes or a mutation invalidates them.
type InMemoryStatsCache struct {
	mu        sync.RWMutex
	value     *client.DashboardStats
	expiresAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewInMemoryStatsCache creates an in-memory stats cache. A ttl of zero or
// less keeps values until Invalidate.
func NewInMemoryStatsCache(ttl time.Duration) *InMemoryStatsCache {
	return &InMemoryStatsCache{ttl: ttl, now: time.Now}
}

// Get returns the cached stats if present and not expired
func (c *InMemoryStatsCache) Get(_ context.Context) (*client.DashboardStats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.value == nil {
		return nil, false
	}
	if c.ttl > 0 && !c.now().Before(c.expiresAt) {
		return nil, false
	}
	stats := *c.value
	return &stats, true
}

// Set stores stats
func (c *InMemoryStatsCache) Set(_ context.Context, stats client.DashboardStats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = &stats
	c.expiresAt = c.now().Add(c.ttl)
}

// Invalidate drops the cached value
func (c *InMemoryStatsCache) Invalidate(_ context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
}

var _ StatsCache = (*InMemoryStatsCache)(nil)
