package client

import (
	"context"

	"github.com/attractify/onboarding/internal/domain/client"
)

// TimelineService manages the 3-month timeline of each client. Month
// progress is whatever was last stored; task statuses never change it.
type TimelineService struct {
	clients *ClientService
	store   client.Store
}

// NewTimelineService creates a new TimelineService
func NewTimelineService(clients *ClientService, store client.Store) *TimelineService {
	return &TimelineService{clients: clients, store: store}
}

// Get returns the client's timeline, instantiating the template first if
// the client has none.
func (s *TimelineService) Get(ctx context.Context, clientID string) (*TimelineResponse, error) {
	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	c, err := s.ensure(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toTimeline(c), nil
}

// OverallProgress returns the rounded mean of the month progress values.
func (s *TimelineService) OverallProgress(ctx context.Context, clientID string) (int, error) {
	resp, err := s.Get(ctx, clientID)
	if err != nil {
		return 0, err
	}
	return resp.OverallProgress, nil
}

// SetMonthProgress stores the progress percentage of one month.
func (s *TimelineService) SetMonthProgress(ctx context.Context, clientID string, month, progress int) (*TimelineResponse, error) {
	return s.UpdateMonth(ctx, clientID, month, UpdateMonthRequest{Progress: &progress})
}

// SetMonthStatus stores the status of one month.
func (s *TimelineService) SetMonthStatus(ctx context.Context, clientID string, month int, status client.StepStatus) (*TimelineResponse, error) {
	raw := string(status)
	return s.UpdateMonth(ctx, clientID, month, UpdateMonthRequest{Status: &raw})
}

// UpdateMonth applies a status and/or progress change to one month.
func (s *TimelineService) UpdateMonth(ctx context.Context, clientID string, month int, req UpdateMonthRequest) (*TimelineResponse, error) {
	return s.mutate(ctx, clientID, month, func(c *client.Client) error {
		now := s.clients.now()
		if req.Status != nil {
			status, err := client.ParseStepStatus(*req.Status)
			if err != nil {
				return err
			}
			if err := c.SetMonthStatus(month, status, now); err != nil {
				return err
			}
		}
		if req.Progress != nil {
			if err := c.SetMonthProgress(month, *req.Progress, now); err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateTaskStatus sets the status of one task. Week and task are 1-based.
func (s *TimelineService) UpdateTaskStatus(ctx context.Context, clientID string, month, week, task int, status client.StepStatus) (*TimelineResponse, error) {
	return s.mutate(ctx, clientID, month, func(c *client.Client) error {
		return c.SetTaskStatus(month, week, task, status, s.clients.now())
	})
}

func (s *TimelineService) ensure(ctx context.Context, clientID string) (*client.Client, error) {
	c, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(c.Timeline) > 0 {
		return c, nil
	}
	initialized, err := s.store.InitializeTimeline(ctx, clientID)
	if err != nil {
		return nil, err
	}
	s.clients.Apply(initialized)
	return initialized, nil
}

// mutate edits a copy of the timeline, stores the whole timeline and
// applies the stored client.
func (s *TimelineService) mutate(ctx context.Context, clientID string, month int, fn func(c *client.Client) error) (*TimelineResponse, error) {
	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	c, err := s.ensure(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	saved, err := s.store.SaveTimeline(ctx, clientID, c.Timeline)
	if err != nil {
		return nil, err
	}
	s.clients.Apply(saved)
	for _, m := range saved.Timeline {
		if m.Month == month {
			s.clients.publish(ctx, client.NewTimelineUpdatedEvent(saved, m))
			break
		}
	}
	return toTimeline(saved), nil
}

func toTimeline(c *client.Client) *TimelineResponse {
	return &TimelineResponse{
		ClientID:        c.ID,
		Months:          c.Timeline,
		OverallProgress: client.OverallProgress(c.Timeline),
	}
}
