package client

import (
	"context"
	"time"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of client.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetClients(ctx context.Context) ([]client.Client, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockStore) GetClient(ctx context.Context, id string) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockStore) AddClient(ctx context.Context, fields client.Fields) (*client.Client, error) {
	args := m.Called(ctx, fields)
	if fn, ok := args.Get(0).(func(context.Context, client.Fields) *client.Client); ok {
		return fn(ctx, fields), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockStore) UpdateClient(ctx context.Context, id string, patch client.Patch) (*client.Client, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockStore) DeleteClient(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) UpdateOnboardingStep(ctx context.Context, clientID string, stepID int, status client.StepStatus) (*client.Client, error) {
	args := m.Called(ctx, clientID, stepID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockStore) InitializeOnboardingSteps(ctx context.Context, clientID string) (*client.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockStore) InitializeTimeline(ctx context.Context, clientID string) (*client.Client, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockStore) SaveTimeline(ctx context.Context, clientID string, months []client.TimelineMonth) (*client.Client, error) {
	args := m.Called(ctx, clientID, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockStore) AddRecordingSession(ctx context.Context, session client.RecordingSession) (*client.RecordingSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.RecordingSession), args.Error(1)
}

func (m *MockStore) UpdateRecordingSession(ctx context.Context, session client.RecordingSession) (*client.RecordingSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.RecordingSession), args.Error(1)
}

func (m *MockStore) ListRecordingSessions(ctx context.Context, clientID string) ([]client.RecordingSession, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.RecordingSession), args.Error(1)
}

func (m *MockStore) GetAnalyticsSetup(ctx context.Context, clientID string) (*client.AnalyticsSetup, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AnalyticsSetup), args.Error(1)
}

func (m *MockStore) UpsertAnalyticsSetup(ctx context.Context, setup client.AnalyticsSetup) (*client.AnalyticsSetup, error) {
	args := m.Called(ctx, setup)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.AnalyticsSetup), args.Error(1)
}

func (m *MockStore) AppendActivity(ctx context.Context, entry client.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockStore) RecentActivity(ctx context.Context, limit int) ([]client.ActivityEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.ActivityEntry), args.Error(1)
}

// MockPublisher is a mock implementation of shared.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestClient(id, company string) client.Client {
	return *client.NewClient(id, client.Fields{
		CompanyName:  company,
		ContactEmail: "hello@" + id + ".test",
		Status:       client.StatusActive,
	}, fixedNow.Add(-time.Hour))
}

// newLoadedService returns a ClientService preloaded with clients.
func newLoadedService(store *MockStore, pub shared.EventPublisher, clients ...client.Client) *ClientService {
	svc := NewClientService(store, pub, nil).WithClock(func() time.Time { return fixedNow })
	svc.clients = clients
	svc.loaded = true
	return svc
}

func strPtr(s string) *string { return &s }
