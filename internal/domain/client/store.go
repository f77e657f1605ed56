package client

import "context"

// Store is the persistence contract the local and hosted adapters satisfy.
// Stores never validate; callers check required fields first.
type Store interface {
	// GetClients returns every client, newest first.
	GetClients(ctx context.Context) ([]Client, error)

	// GetClient returns one client with its owned records.
	GetClient(ctx context.Context, id string) (*Client, error)

	// AddClient assigns an id and both timestamps and persists the record.
	AddClient(ctx context.Context, fields Fields) (*Client, error)

	// UpdateClient merges the set fields of patch and refreshes updated_at.
	// An absent id returns ErrClientNotFound.
	UpdateClient(ctx context.Context, id string, patch Patch) (*Client, error)

	// DeleteClient removes the client and everything it owns.
	DeleteClient(ctx context.Context, id string) error

	// UpdateOnboardingStep seeds the catalog if needed and sets one step.
	UpdateOnboardingStep(ctx context.Context, clientID string, stepID int, status StepStatus) (*Client, error)

	// InitializeOnboardingSteps populates the catalog iff absent.
	InitializeOnboardingSteps(ctx context.Context, clientID string) (*Client, error)

	// InitializeTimeline populates the timeline template iff absent.
	InitializeTimeline(ctx context.Context, clientID string) (*Client, error)

	// SaveTimeline replaces the client's timeline.
	SaveTimeline(ctx context.Context, clientID string, months []TimelineMonth) (*Client, error)

	AddRecordingSession(ctx context.Context, session RecordingSession) (*RecordingSession, error)
	UpdateRecordingSession(ctx context.Context, session RecordingSession) (*RecordingSession, error)

	// ListRecordingSessions returns a client's sessions, earliest first.
	ListRecordingSessions(ctx context.Context, clientID string) ([]RecordingSession, error)

	// GetAnalyticsSetup returns (nil, nil) when the client has no setup yet.
	GetAnalyticsSetup(ctx context.Context, clientID string) (*AnalyticsSetup, error)
	UpsertAnalyticsSetup(ctx context.Context, setup AnalyticsSetup) (*AnalyticsSetup, error)

	AppendActivity(ctx context.Context, entry ActivityEntry) error

	// RecentActivity returns up to limit entries, newest first.
	RecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error)
}
