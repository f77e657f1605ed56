package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/attractify/onboarding/internal/domain/client"
	"go.uber.org/zap"
)

// Default slot names, kept from the browser build so exported data can be
// dropped in unchanged.
const (
	DefaultClientsSlot  = "employee_portal_clients"
	DefaultActivitySlot = "employee_portal_activity"
)

// maxActivity caps the activity slot; older entries are dropped.
const maxActivity = 100

// Store is the local client.Store. Every call is one read-modify-write of
// the whole collection under a single mutex.
type Store struct {
	mu       sync.Mutex
	clients  Slot
	activity Slot
	now      func() time.Time
	lastID   int64
	logger   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithActivitySlot keeps the activity feed in its own slot. Without it the
// feed is not persisted and RecentActivity returns nothing.
func WithActivitySlot(slot Slot) Option {
	return func(s *Store) { s.activity = slot }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New returns a Store over the given clients slot.
func New(clients Slot, opts ...Option) *Store {
	s := &Store{
		clients: clients,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) load(ctx context.Context) ([]client.Client, error) {
	data, err := s.clients.Read(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []client.Client{}, nil
	}
	var clients []client.Client
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("decode slot %s: %w", s.clients.Name(), err)
	}
	return clients, nil
}

func (s *Store) save(ctx context.Context, clients []client.Client) error {
	data, err := json.Marshal(clients)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", s.clients.Name(), err)
	}
	return s.clients.Write(ctx, data)
}

// update runs fn against the client with the given id and persists the
// collection when fn succeeds.
func (s *Store) update(ctx context.Context, id string, fn func(c *client.Client) error) (*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(clients, id)
	if idx < 0 {
		return nil, client.ErrClientNotFound
	}
	if err := fn(&clients[idx]); err != nil {
		return nil, err
	}
	if err := s.save(ctx, clients); err != nil {
		return nil, err
	}
	return clients[idx].Clone(), nil
}

// view runs fn against a client without writing.
func (s *Store) view(ctx context.Context, id string, fn func(c *client.Client)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(clients, id)
	if idx < 0 {
		return client.ErrClientNotFound
	}
	fn(&clients[idx])
	return nil
}

func (s *Store) GetClients(ctx context.Context) ([]client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) GetClient(ctx context.Context, id string) (*client.Client, error) {
	var out *client.Client
	err := s.view(ctx, id, func(c *client.Client) { out = c.Clone() })
	return out, err
}

// AddClient prepends the new record so the slot stays newest first.
func (s *Store) AddClient(ctx context.Context, fields client.Fields) (*client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	c := client.NewClient(s.nextID(now, clients), fields, now)

	clients = append([]client.Client{*c}, clients...)
	if err := s.save(ctx, clients); err != nil {
		return nil, err
	}
	s.logger.Debug("client added", zap.String("client_id", c.ID), zap.String("slot", s.clients.Name()))
	return c.Clone(), nil
}

// nextID returns the creation time in Unix milliseconds, bumped past any
// id already issued so two clients created in the same millisecond differ.
func (s *Store) nextID(now time.Time, existing []client.Client) string {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	for _, c := range existing {
		if n, err := strconv.ParseInt(c.ID, 10, 64); err == nil && n >= id {
			id = n + 1
		}
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) UpdateClient(ctx context.Context, id string, patch client.Patch) (*client.Client, error) {
	now := s.now()
	return s.update(ctx, id, func(c *client.Client) error {
		c.Apply(patch, now)
		return nil
	})
}

// DeleteClient is idempotent: deleting an absent id succeeds.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clients, err := s.load(ctx)
	if err != nil {
		return err
	}
	kept := clients[:0]
	for _, c := range clients {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	return s.save(ctx, kept)
}

func (s *Store) UpdateOnboardingStep(ctx context.Context, clientID string, stepID int, status client.StepStatus) (*client.Client, error) {
	now := s.now()
	return s.update(ctx, clientID, func(c *client.Client) error {
		return c.SetStepStatus(stepID, status, now)
	})
}

func (s *Store) InitializeOnboardingSteps(ctx context.Context, clientID string) (*client.Client, error) {
	now := s.now()
	return s.update(ctx, clientID, func(c *client.Client) error {
		if c.EnsureOnboardingSteps() {
			c.Touch(now)
		}
		return nil
	})
}

func (s *Store) InitializeTimeline(ctx context.Context, clientID string) (*client.Client, error) {
	now := s.now()
	return s.update(ctx, clientID, func(c *client.Client) error {
		if c.EnsureTimeline() {
			c.Touch(now)
		}
		return nil
	})
}

func (s *Store) SaveTimeline(ctx context.Context, clientID string, months []client.TimelineMonth) (*client.Client, error) {
	now := s.now()
	return s.update(ctx, clientID, func(c *client.Client) error {
		holder := client.Client{Timeline: months}
		c.Timeline = holder.Clone().Timeline
		c.Touch(now)
		return nil
	})
}

// Recording sessions and analytics live inside the client record. Writing
// them does not refresh the client's updated_at, matching the hosted tables.

func (s *Store) AddRecordingSession(ctx context.Context, session client.RecordingSession) (*client.RecordingSession, error) {
	var saved client.RecordingSession
	_, err := s.update(ctx, session.ClientID, func(c *client.Client) error {
		c.RecordingSessions = append(c.RecordingSessions, session)
		client.SortSessions(c.RecordingSessions)
		saved = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cloneSession(saved), nil
}

func (s *Store) UpdateRecordingSession(ctx context.Context, session client.RecordingSession) (*client.RecordingSession, error) {
	now := s.now()
	var saved client.RecordingSession
	_, err := s.update(ctx, session.ClientID, func(c *client.Client) error {
		for i := range c.RecordingSessions {
			if c.RecordingSessions[i].ID != session.ID {
				continue
			}
			session.CreatedAt = c.RecordingSessions[i].CreatedAt
			session.Touch(now)
			c.RecordingSessions[i] = session
			client.SortSessions(c.RecordingSessions)
			saved = session
			return nil
		}
		return client.ErrSessionNotFound
	})
	if err != nil {
		return nil, err
	}
	return cloneSession(saved), nil
}

func (s *Store) ListRecordingSessions(ctx context.Context, clientID string) ([]client.RecordingSession, error) {
	var out []client.RecordingSession
	err := s.view(ctx, clientID, func(c *client.Client) {
		out = c.Clone().RecordingSessions
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []client.RecordingSession{}
	}
	client.SortSessions(out)
	return out, nil
}

func (s *Store) GetAnalyticsSetup(ctx context.Context, clientID string) (*client.AnalyticsSetup, error) {
	var out *client.AnalyticsSetup
	err := s.view(ctx, clientID, func(c *client.Client) {
		if c.Analytics != nil {
			out = c.Analytics.Clone()
		}
	})
	return out, err
}

func (s *Store) UpsertAnalyticsSetup(ctx context.Context, setup client.AnalyticsSetup) (*client.AnalyticsSetup, error) {
	setup.UpdatedAt = s.now().UTC()
	var out *client.AnalyticsSetup
	_, err := s.update(ctx, setup.ClientID, func(c *client.Client) error {
		c.Analytics = setup.Clone()
		out = setup.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AppendActivity prepends to the activity slot. It is a no-op when no
// activity slot is configured.
func (s *Store) AppendActivity(ctx context.Context, entry client.ActivityEntry) error {
	if s.activity == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadActivity(ctx)
	if err != nil {
		return err
	}
	entries = append([]client.ActivityEntry{entry}, entries...)
	if len(entries) > maxActivity {
		entries = entries[:maxActivity]
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode slot %s: %w", s.activity.Name(), err)
	}
	return s.activity.Write(ctx, data)
}

func (s *Store) RecentActivity(ctx context.Context, limit int) ([]client.ActivityEntry, error) {
	if s.activity == nil {
		return []client.ActivityEntry{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadActivity(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (s *Store) loadActivity(ctx context.Context) ([]client.ActivityEntry, error) {
	data, err := s.activity.Read(ctx)
	if err != nil {
		return nil, err
	}
	entries := []client.ActivityEntry{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode slot %s: %w", s.activity.Name(), err)
	}
	return entries, nil
}

func indexOf(clients []client.Client, id string) int {
	for i := range clients {
		if clients[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneSession(s client.RecordingSession) *client.RecordingSession {
	holder := client.Client{RecordingSessions: []client.RecordingSession{s}}
	return &holder.Clone().RecordingSessions[0]
}

var _ client.Store = (*Store)(nil)
