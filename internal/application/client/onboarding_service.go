package client

import (
	"context"

	"github.com/attractify/onboarding/internal/domain/client"
)

// nextStepLimit is how many pending steps the checklist suggests.
const nextStepLimit = 3

// OnboardingService drives the 7-step checklist of each client.
type OnboardingService struct {
	clients *ClientService
	store   client.Store
}

// NewOnboardingService creates a new OnboardingService
func NewOnboardingService(clients *ClientService, store client.Store) *OnboardingService {
	return &OnboardingService{clients: clients, store: store}
}

// Checklist returns the client's steps, initializing them on first access.
func (s *OnboardingService) Checklist(ctx context.Context, clientID string) (*ChecklistResponse, error) {
	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	c, err := s.ensure(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toChecklist(c), nil
}

// Initialize populates the catalog if the client has none. Calling it again
// changes nothing.
func (s *OnboardingService) Initialize(ctx context.Context, clientID string) (*ChecklistResponse, error) {
	return s.Checklist(ctx, clientID)
}

// UpdateStep moves a step to status if the transition is allowed.
func (s *OnboardingService) UpdateStep(ctx context.Context, clientID string, stepID int, status client.StepStatus) (*ChecklistResponse, error) {
	if !status.Valid() {
		return nil, client.ErrInvalidStepStatus
	}

	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	c, err := s.updateStep(ctx, clientID, stepID, status, nil)
	if err != nil {
		return nil, err
	}
	return toChecklist(c), nil
}

// Start moves a pending step to in-progress.
func (s *OnboardingService) Start(ctx context.Context, clientID string, stepID int) (*ChecklistResponse, error) {
	return s.UpdateStep(ctx, clientID, stepID, client.StepInProgress)
}

// Complete moves an in-progress step to completed.
func (s *OnboardingService) Complete(ctx context.Context, clientID string, stepID int) (*ChecklistResponse, error) {
	return s.UpdateStep(ctx, clientID, stepID, client.StepCompleted)
}

// Reopen moves a completed step back to in-progress.
func (s *OnboardingService) Reopen(ctx context.Context, clientID string, stepID int) (*ChecklistResponse, error) {
	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	from := client.StepCompleted
	c, err := s.updateStep(ctx, clientID, stepID, client.StepInProgress, &from)
	if err != nil {
		return nil, err
	}
	return toChecklist(c), nil
}

// ContinueToNextStep starts the first pending step.
func (s *OnboardingService) ContinueToNextStep(ctx context.Context, clientID string) (*ChecklistResponse, error) {
	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	c, err := s.ensure(ctx, clientID)
	if err != nil {
		return nil, err
	}
	pending := client.PendingSteps(c.OnboardingSteps, 1)
	if len(pending) == 0 {
		return nil, client.ErrNoPendingStep
	}
	c, err = s.updateStep(ctx, clientID, pending[0].ID, client.StepInProgress, nil)
	if err != nil {
		return nil, err
	}
	return toChecklist(c), nil
}

func (s *OnboardingService) ensure(ctx context.Context, clientID string) (*client.Client, error) {
	c, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if len(c.OnboardingSteps) > 0 {
		return c, nil
	}
	initialized, err := s.store.InitializeOnboardingSteps(ctx, clientID)
	if err != nil {
		return nil, err
	}
	s.clients.Apply(initialized)
	s.clients.publish(ctx, client.NewOnboardingInitializedEvent(initialized))
	return initialized, nil
}

// updateStep checks the transition against the current record before any
// Store call. When require is set the step must currently be in that status.
func (s *OnboardingService) updateStep(ctx context.Context, clientID string, stepID int, status client.StepStatus, require *client.StepStatus) (*client.Client, error) {
	c, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	from := client.StepPending
	if len(c.OnboardingSteps) > 0 {
		step, ok := c.Step(stepID)
		if !ok {
			return nil, client.ErrStepNotFound
		}
		from = step.Status
	} else if stepID < 1 || stepID > client.OnboardingStepCount {
		return nil, client.ErrStepNotFound
	}

	if require != nil && from != *require {
		return nil, client.ErrInvalidTransition
	}
	if !client.CanTransition(from, status) {
		return nil, client.ErrInvalidTransition
	}
	if from == status && len(c.OnboardingSteps) > 0 {
		return c, nil
	}

	updated, err := s.store.UpdateOnboardingStep(ctx, clientID, stepID, status)
	if err != nil {
		return nil, err
	}
	s.clients.Apply(updated)
	if step, ok := updated.Step(stepID); ok {
		s.clients.publish(ctx, client.NewOnboardingStepUpdatedEvent(updated, step))
	}
	return updated, nil
}

func toChecklist(c *client.Client) *ChecklistResponse {
	return &ChecklistResponse{
		ClientID:  c.ID,
		Steps:     c.OnboardingSteps,
		Completed: client.CountCompleted(c.OnboardingSteps),
		Total:     len(c.OnboardingSteps),
		Progress:  client.OnboardingProgress(c.OnboardingSteps),
		NextSteps: client.PendingSteps(c.OnboardingSteps, nextStepLimit),
	}
}
