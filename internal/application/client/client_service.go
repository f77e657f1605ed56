// Package client holds the application services of the onboarding
// dashboard. ClientService owns the in-memory client collection; the
// sibling services mutate it only through the Store and then patch the
// returned record back into the container.
package client

import (
	"context"
	"sync"
	"time"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/domain/shared"
	"go.uber.org/zap"
)

// StatsCache caches the dashboard aggregates between mutations.
type StatsCache interface {
	Get(ctx context.Context) (*client.DashboardStats, bool)
	Set(ctx context.Context, stats client.DashboardStats)
	Invalidate(ctx context.Context)
}

// ClientService is the single owner of the client collection. Every
// mutation goes to the Store first; only the returned record is applied to
// memory.
type ClientService struct {
	store     client.Store
	publisher shared.EventPublisher
	stats     StatsCache
	logger    *zap.Logger
	now       func() time.Time

	// cmd serialises commands so memory is patched in Store order.
	cmd     sync.Mutex
	mu      sync.RWMutex
	clients []client.Client
	loaded  bool
}

// NewClientService creates a new ClientService
func NewClientService(store client.Store, publisher shared.EventPublisher, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithStatsCache sets the cache used by Stats
func (s *ClientService) WithStatsCache(cache StatsCache) *ClientService {
	s.stats = cache
	return s
}

// WithClock overrides the time source
func (s *ClientService) WithClock(now func() time.Time) *ClientService {
	s.now = now
	return s
}

// Load replaces the in-memory collection with the Store contents.
func (s *ClientService) Load(ctx context.Context) error {
	s.cmd.Lock()
	defer s.cmd.Unlock()
	return s.load(ctx)
}

func (s *ClientService) load(ctx context.Context) error {
	clients, err := s.store.GetClients(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.clients = clients
	s.loaded = true
	s.mu.Unlock()
	s.invalidateStats(ctx)
	return nil
}

// Refresh reloads the collection so edits made through other sessions of a
// hosted store become visible.
func (s *ClientService) Refresh(ctx context.Context) error {
	s.cmd.Lock()
	defer s.cmd.Unlock()

	start := time.Now()
	if err := s.load(ctx); err != nil {
		s.logger.Warn("client refresh failed", zap.Error(err))
		return err
	}
	s.logger.Debug("client collection refreshed",
		zap.Int("clients", s.Count()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

// Loaded reports whether Load has succeeded at least once.
func (s *ClientService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Count returns the collection size.
func (s *ClientService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// List filters and paginates the in-memory collection, newest first.
func (s *ClientService) List(ctx context.Context, filter ClientListFilter) shared.Paginated[client.Client] {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	s.mu.RLock()
	matched := make([]client.Client, 0, len(s.clients))
	for i := range s.clients {
		c := &s.clients[i]
		if filter.Status != "" && string(c.Status) != filter.Status {
			continue
		}
		if !c.Matches(filter.Search) {
			continue
		}
		matched = append(matched, *c.Clone())
	}
	s.mu.RUnlock()

	total := len(matched)
	start := f.Offset()
	if start > total {
		start = total
	}
	end := start + f.PageSize
	if end > total {
		end = total
	}
	return shared.NewPaginated(matched[start:end], int64(total), f.Page, f.PageSize)
}

// Snapshot returns a deep copy of the whole collection.
func (s *ClientService) Snapshot() []client.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]client.Client, len(s.clients))
	for i := range s.clients {
		out[i] = *s.clients[i].Clone()
	}
	return out
}

// Recent returns up to n clients, newest first.
func (s *ClientService) Recent(n int) []client.Client {
	all := s.Snapshot()
	if n >= 0 && len(all) > n {
		all = all[:n]
	}
	return all
}

// Get returns a copy of one client.
func (s *ClientService) Get(ctx context.Context, id string) (*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.clients {
		if s.clients[i].ID == id {
			return s.clients[i].Clone(), nil
		}
	}
	return nil, client.ErrClientNotFound
}

// Create validates the required fields, persists the client and prepends
// the stored record to the collection.
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*client.Client, error) {
	fields := req.Fields()
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	s.cmd.Lock()
	defer s.cmd.Unlock()

	created, err := s.store.AddClient(ctx, fields)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.clients = append([]client.Client{*created.Clone()}, s.clients...)
	s.mu.Unlock()

	s.logger.Info("client created", zap.String("client_id", created.ID), zap.String("company", created.CompanyName))
	s.publish(ctx, client.NewClientCreatedEvent(created))
	return created.Clone(), nil
}

// Update applies a partial update and replaces the in-memory record with
// the stored one.
func (s *ClientService) Update(ctx context.Context, id string, req UpdateClientRequest) (*client.Client, error) {
	patch := req.Patch()
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.Get(ctx, id)
	}

	s.cmd.Lock()
	defer s.cmd.Unlock()

	updated, err := s.store.UpdateClient(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.Apply(updated)
	s.publish(ctx, client.NewClientUpdatedEvent(updated))
	return updated.Clone(), nil
}

// Delete removes a client. It refuses to run without explicit confirmation.
func (s *ClientService) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return client.ErrDeleteNotConfirmed
	}

	s.cmd.Lock()
	defer s.cmd.Unlock()

	company := ""
	if existing, err := s.Get(ctx, id); err == nil {
		company = existing.CompanyName
	}
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.clients {
		if s.clients[i].ID == id {
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.logger.Info("client deleted", zap.String("client_id", id))
	s.publish(ctx, client.NewClientDeletedEvent(id, company))
	return nil
}

// Apply replaces the in-memory record with c, or prepends it if unknown.
func (s *ClientService) Apply(c *client.Client) {
	if c == nil {
		return
	}
	cp := *c.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i].ID == cp.ID {
			s.clients[i] = cp
			return
		}
	}
	s.clients = append([]client.Client{cp}, s.clients...)
}

// modify runs fn on the in-memory record with the given id.
func (s *ClientService) modify(id string, fn func(c *client.Client)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i].ID == id {
			fn(&s.clients[i])
			return
		}
	}
}

// Stats returns the dashboard aggregates, from cache when possible.
func (s *ClientService) Stats(ctx context.Context) client.DashboardStats {
	if s.stats != nil {
		if cached, ok := s.stats.Get(ctx); ok {
			return *cached
		}
	}
	s.mu.RLock()
	stats := client.ComputeStats(s.clients, s.now())
	s.mu.RUnlock()
	if s.stats != nil {
		s.stats.Set(ctx, stats)
	}
	return stats
}

func (s *ClientService) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}

// publish invalidates the stats cache and publishes events. Publishing
// failures are logged; the command already succeeded.
func (s *ClientService) publish(ctx context.Context, events ...shared.DomainEvent) {
	s.invalidateStats(ctx)
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish client events", zap.Error(err))
	}
}
