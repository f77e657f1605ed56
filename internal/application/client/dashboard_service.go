package client

import (
	"context"

	"github.com/attractify/onboarding/internal/domain/client"
	"go.uber.org/zap"
)

// recentClientLimit is the size of the dashboard's recent clients list.
const recentClientLimit = 3

// DashboardService assembles the dashboard landing view.
type DashboardService struct {
	clients *ClientService
	store   client.Store
	logger  *zap.Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(clients *ClientService, store client.Store, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{clients: clients, store: store, logger: logger}
}

// Overview returns stats, the newest clients, recent activity and upcoming
// sessions. An unavailable activity feed yields an empty list.
func (s *DashboardService) Overview(ctx context.Context) (*OverviewResponse, error) {
	activity, err := s.RecentActivity(ctx, client.DefaultActivityLimit)
	if err != nil {
		s.logger.Warn("recent activity unavailable", zap.Error(err))
		activity = []client.ActivityEntry{}
	}
	snapshot := s.clients.Snapshot()
	return &OverviewResponse{
		Stats:            s.clients.Stats(ctx),
		RecentClients:    s.clients.Recent(recentClientLimit),
		RecentActivity:   activity,
		UpcomingSessions: client.UpcomingSessions(snapshot, s.clients.now(), upcomingLimit),
	}, nil
}

// RecentActivity returns the newest activity entries.
func (s *DashboardService) RecentActivity(ctx context.Context, limit int) ([]client.ActivityEntry, error) {
	if limit <= 0 {
		limit = client.DefaultActivityLimit
	}
	entries, err := s.store.RecentActivity(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []client.ActivityEntry{}
	}
	return entries, nil
}
