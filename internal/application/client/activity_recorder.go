package client

import (
	"context"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/domain/shared"
	"go.uber.org/zap"
)

// ActivityRecorder turns client change events into activity feed entries.
type ActivityRecorder struct {
	store  client.Store
	logger *zap.Logger
}

// NewActivityRecorder creates a new ActivityRecorder
func NewActivityRecorder(store client.Store, logger *zap.Logger) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRecorder{store: store, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (r *ActivityRecorder) EventTypes() []string {
	return client.AllEventTypes()
}

// Handle appends one activity entry per event. Store failures are logged
// and swallowed.
func (r *ActivityRecorder) Handle(ctx context.Context, event shared.DomainEvent) error {
	change, ok := event.(*client.ChangeEvent)
	if !ok {
		r.logger.Debug("ignoring non-client event", zap.String("event_type", event.EventType()))
		return nil
	}

	entry := client.NewActivityEntry(change.ClientID, change.CompanyName, change.EventType(), change.Summary, change.OccurredAt())
	if err := r.store.AppendActivity(ctx, entry); err != nil {
		r.logger.Warn("failed to record activity",
			zap.String("event_type", change.EventType()),
			zap.String("client_id", change.ClientID),
			zap.Error(err),
		)
	}
	return nil
}
