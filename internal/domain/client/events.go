package client

import (
	"fmt"

	"github.com/attractify/onboarding/internal/domain/shared"
)

// AggregateTypeClient is the aggregate type of every client event.
const AggregateTypeClient = "Client"

// Event type constants
const (
	EventTypeClientCreated             = "ClientCreated"
	EventTypeClientUpdated             = "ClientUpdated"
	EventTypeClientDeleted             = "ClientDeleted"
	EventTypeOnboardingInitialized     = "OnboardingInitialized"
	EventTypeOnboardingStepUpdated     = "OnboardingStepUpdated"
	EventTypeTimelineUpdated           = "TimelineUpdated"
	EventTypeRecordingSessionScheduled = "RecordingSessionScheduled"
	EventTypeRecordingSessionUpdated   = "RecordingSessionUpdated"
	EventTypeAnalyticsSetupUpdated     = "AnalyticsSetupUpdated"
)

// Table names used for change notifications. They match the hosted schema.
const (
	TableClients           = "clients"
	TableOnboardingSteps   = "onboarding_steps"
	TableTimelineItems     = "timeline_items"
	TableRecordingSessions = "recording_sessions"
	TableAnalyticsSetup    = "analytics_setup"
)

// ChangeKind mirrors the row-level change that the event describes.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "INSERT"
	ChangeUpdate ChangeKind = "UPDATE"
	ChangeDelete ChangeKind = "DELETE"
)

// ChangeEvent is published after every successful client mutation.
type ChangeEvent struct {
	shared.BaseDomainEvent
	Table       string     `json:"table"`
	Change      ChangeKind `json:"change"`
	ClientID    string     `json:"client_id"`
	CompanyName string     `json:"company_name"`
	Summary     string     `json:"summary"`
	Payload     any        `json:"payload,omitempty"`
}

func newChangeEvent(eventType, table string, change ChangeKind, clientID, company, summary string, payload any) *ChangeEvent {
	return &ChangeEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeClient, clientID),
		Table:           table,
		Change:          change,
		ClientID:        clientID,
		CompanyName:     company,
		Summary:         summary,
		Payload:         payload,
	}
}

// NewClientCreatedEvent creates a ClientCreated event
func NewClientCreatedEvent(c *Client) *ChangeEvent {
	return newChangeEvent(EventTypeClientCreated, TableClients, ChangeInsert, c.ID, c.CompanyName,
		fmt.Sprintf("New client %s added", c.CompanyName), c.Clone())
}

// NewClientUpdatedEvent creates a ClientUpdated event
func NewClientUpdatedEvent(c *Client) *ChangeEvent {
	return newChangeEvent(EventTypeClientUpdated, TableClients, ChangeUpdate, c.ID, c.CompanyName,
		fmt.Sprintf("Client %s updated", c.CompanyName), c.Clone())
}

// NewClientDeletedEvent creates a ClientDeleted event
func NewClientDeletedEvent(id, company string) *ChangeEvent {
	return newChangeEvent(EventTypeClientDeleted, TableClients, ChangeDelete, id, company,
		fmt.Sprintf("Client %s removed", company), map[string]string{"id": id})
}

// NewOnboardingInitializedEvent creates an OnboardingInitialized event
func NewOnboardingInitializedEvent(c *Client) *ChangeEvent {
	return newChangeEvent(EventTypeOnboardingInitialized, TableOnboardingSteps, ChangeInsert, c.ID, c.CompanyName,
		fmt.Sprintf("Onboarding checklist started for %s", c.CompanyName), c.OnboardingSteps)
}

// NewOnboardingStepUpdatedEvent creates an OnboardingStepUpdated event
func NewOnboardingStepUpdatedEvent(c *Client, step OnboardingStep) *ChangeEvent {
	return newChangeEvent(EventTypeOnboardingStepUpdated, TableOnboardingSteps, ChangeUpdate, c.ID, c.CompanyName,
		fmt.Sprintf("%s: %s is %s", c.CompanyName, step.Title, step.Status), step.clone())
}

// NewTimelineUpdatedEvent creates a TimelineUpdated event
func NewTimelineUpdatedEvent(c *Client, month TimelineMonth) *ChangeEvent {
	return newChangeEvent(EventTypeTimelineUpdated, TableTimelineItems, ChangeUpdate, c.ID, c.CompanyName,
		fmt.Sprintf("%s: month %d (%s) at %d%%", c.CompanyName, month.Month, month.Title, month.Progress), month)
}

// NewRecordingSessionScheduledEvent creates a RecordingSessionScheduled event
func NewRecordingSessionScheduledEvent(c *Client, s RecordingSession) *ChangeEvent {
	return newChangeEvent(EventTypeRecordingSessionScheduled, TableRecordingSessions, ChangeInsert, c.ID, c.CompanyName,
		fmt.Sprintf("Recording session scheduled for %s on %s", c.CompanyName, s.ScheduledDate.Format("2006-01-02")), s.clone())
}

// NewRecordingSessionUpdatedEvent creates a RecordingSessionUpdated event
func NewRecordingSessionUpdatedEvent(c *Client, s RecordingSession) *ChangeEvent {
	return newChangeEvent(EventTypeRecordingSessionUpdated, TableRecordingSessions, ChangeUpdate, c.ID, c.CompanyName,
		fmt.Sprintf("Recording session for %s is %s", c.CompanyName, s.Status), s.clone())
}

// NewAnalyticsSetupUpdatedEvent creates an AnalyticsSetupUpdated event
func NewAnalyticsSetupUpdatedEvent(c *Client, a *AnalyticsSetup) *ChangeEvent {
	return newChangeEvent(EventTypeAnalyticsSetupUpdated, TableAnalyticsSetup, ChangeUpdate, c.ID, c.CompanyName,
		fmt.Sprintf("Analytics setup for %s: GA4 %d%%, GTM %d%%", c.CompanyName, a.GA4Progress(), a.GTMProgress()), a.Clone())
}

// AllEventTypes lists every client event type.
func AllEventTypes() []string {
	return []string{
		EventTypeClientCreated,
		EventTypeClientUpdated,
		EventTypeClientDeleted,
		EventTypeOnboardingInitialized,
		EventTypeOnboardingStepUpdated,
		EventTypeTimelineUpdated,
		EventTypeRecordingSessionScheduled,
		EventTypeRecordingSessionUpdated,
		EventTypeAnalyticsSetupUpdated,
	}
}
