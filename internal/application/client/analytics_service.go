package client

import (
	"context"
	"strings"

	"github.com/attractify/onboarding/internal/domain/client"
	"go.uber.org/zap"
)

// AnalyticsService tracks GA4 and GTM setup for each client.
type AnalyticsService struct {
	clients *ClientService
	store   client.Store
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(clients *ClientService, store client.Store) *AnalyticsService {
	return &AnalyticsService{clients: clients, store: store}
}

// Get returns the stored setup, or defaults derived from the client.
func (s *AnalyticsService) Get(ctx context.Context, clientID string) (*AnalyticsResponse, error) {
	_, setup, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return ToAnalyticsResponse(setup), nil
}

// Configure updates the property settings. A new measurement id is copied
// onto the client record together with analytics_setup_complete.
func (s *AnalyticsService) Configure(ctx context.Context, clientID string, req ConfigureAnalyticsRequest) (*AnalyticsResponse, error) {
	var measurementID string
	if req.MeasurementID != nil {
		measurementID = strings.TrimSpace(*req.MeasurementID)
		if err := client.ValidateMeasurementID(measurementID); err != nil {
			return nil, err
		}
	}

	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	c, setup, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if req.MeasurementID != nil {
		setup.MeasurementID = measurementID
	}
	if req.WebsiteURL != nil {
		website := strings.TrimSpace(*req.WebsiteURL)
		setup.WebsiteURL = nil
		if website != "" {
			setup.WebsiteURL = &website
		}
	}
	if req.EnhancedMeasurement != nil {
		setup.EnhancedMeasurement = *req.EnhancedMeasurement
	}
	if req.CrossDomainTracking != nil {
		setup.CrossDomainTracking = *req.CrossDomainTracking
	}
	setup.UpdatedAt = s.clients.now().UTC()

	// The client record is synced first so a failed setup write can be
	// undone; either both records change or neither does.
	var updated *client.Client
	if req.MeasurementID != nil && (c.GoogleAnalyticsID == nil || *c.GoogleAnalyticsID != measurementID || !c.AnalyticsSetupComplete) {
		complete := true
		updated, err = s.store.UpdateClient(ctx, clientID, client.Patch{
			GoogleAnalyticsID:      &measurementID,
			AnalyticsSetupComplete: &complete,
		})
		if err != nil {
			return nil, err
		}
	}

	saved, err := s.store.UpsertAnalyticsSetup(ctx, *setup)
	if err != nil {
		if updated != nil {
			s.revertClient(ctx, c, err)
		}
		return nil, err
	}

	if updated != nil {
		updated.Analytics = saved.Clone()
		s.clients.Apply(updated)
	} else {
		s.clients.modify(c.ID, func(c *client.Client) {
			c.Analytics = saved.Clone()
		})
	}
	s.clients.publish(ctx, client.NewAnalyticsSetupUpdatedEvent(c, saved))
	if updated != nil {
		s.clients.publish(ctx, client.NewClientUpdatedEvent(updated))
	}
	return ToAnalyticsResponse(saved), nil
}

// revertClient restores the GA fields of c after the setup write failed.
func (s *AnalyticsService) revertClient(ctx context.Context, c *client.Client, cause error) {
	previous := ""
	if c.GoogleAnalyticsID != nil {
		previous = *c.GoogleAnalyticsID
	}
	complete := c.AnalyticsSetupComplete
	if _, err := s.store.UpdateClient(ctx, c.ID, client.Patch{
		GoogleAnalyticsID:      &previous,
		AnalyticsSetupComplete: &complete,
	}); err != nil {
		s.clients.logger.Error("failed to revert client analytics fields",
			zap.String("client_id", c.ID),
			zap.NamedError("cause", cause),
			zap.Error(err),
		)
	}
}

// UpdateGA4Step sets the status of one GA4 setup step.
func (s *AnalyticsService) UpdateGA4Step(ctx context.Context, clientID string, stepID int, status client.StepStatus) (*AnalyticsResponse, error) {
	return s.updateStep(ctx, clientID, func(a *client.AnalyticsSetup) error {
		return a.SetGA4Step(stepID, status, s.clients.now())
	})
}

// UpdateGTMStep sets the status of one GTM step. GTM stays locked until
// every GA4 step is completed.
func (s *AnalyticsService) UpdateGTMStep(ctx context.Context, clientID string, stepID int, status client.StepStatus) (*AnalyticsResponse, error) {
	return s.updateStep(ctx, clientID, func(a *client.AnalyticsSetup) error {
		return a.SetGTMStep(stepID, status, s.clients.now())
	})
}

// TrackingCode renders the gtag.js snippet for the configured property.
func (s *AnalyticsService) TrackingCode(ctx context.Context, clientID string) (*TrackingCodeResponse, error) {
	_, setup, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return &TrackingCodeResponse{
		MeasurementID: setup.MeasurementID,
		Configured:    setup.HasMeasurementID(),
		Snippet:       client.TrackingSnippet(setup.MeasurementID),
	}, nil
}

func (s *AnalyticsService) updateStep(ctx context.Context, clientID string, fn func(a *client.AnalyticsSetup) error) (*AnalyticsResponse, error) {
	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	c, setup, err := s.load(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if err := fn(setup); err != nil {
		return nil, err
	}
	saved, err := s.save(ctx, c, setup)
	if err != nil {
		return nil, err
	}
	return ToAnalyticsResponse(saved), nil
}

func (s *AnalyticsService) load(ctx context.Context, clientID string) (*client.Client, *client.AnalyticsSetup, error) {
	c, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	setup, err := s.store.GetAnalyticsSetup(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	if setup == nil {
		setup = client.NewAnalyticsSetup(c, s.clients.now())
	}
	return c, setup, nil
}

func (s *AnalyticsService) save(ctx context.Context, c *client.Client, setup *client.AnalyticsSetup) (*client.AnalyticsSetup, error) {
	saved, err := s.store.UpsertAnalyticsSetup(ctx, *setup)
	if err != nil {
		return nil, err
	}
	s.clients.modify(c.ID, func(c *client.Client) {
		c.Analytics = saved.Clone()
	})
	s.clients.publish(ctx, client.NewAnalyticsSetupUpdatedEvent(c, saved))
	return saved, nil
}
