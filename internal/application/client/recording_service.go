package client

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/attractify/onboarding/internal/domain/client"
)

// upcomingLimit caps the dashboard's upcoming sessions widget.
const upcomingLimit = 5

// AssetStorage issues presigned upload URLs for recording assets.
type AssetStorage interface {
	PresignPut(ctx context.Context, key, contentType string) (url string, expiresAt time.Time, err error)
}

// RecordingService schedules and tracks content recording sessions.
type RecordingService struct {
	clients *ClientService
	store   client.Store
	assets  AssetStorage
}

// NewRecordingService creates a new RecordingService. assets may be nil, in
// which case upload URLs are unavailable.
func NewRecordingService(clients *ClientService, store client.Store, assets AssetStorage) *RecordingService {
	return &RecordingService{clients: clients, store: store, assets: assets}
}

// CadenceOptions returns the recording schedule choices.
func (s *RecordingService) CadenceOptions() []client.CadenceOption {
	return client.CadenceOptions()
}

// EvaluateQuality rates the recording setup checklist.
func (s *RecordingService) EvaluateQuality(ratings map[string]client.QualityLevel) client.QualityReport {
	return client.EvaluateQuality(ratings)
}

// Schedule books a new session for a client.
func (s *RecordingService) Schedule(ctx context.Context, clientID string, req ScheduleSessionRequest) (*client.RecordingSession, error) {
	spec, err := req.Spec()
	if err != nil {
		return nil, err
	}

	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	c, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	session, err := client.NewRecordingSession(clientID, spec, s.clients.now())
	if err != nil {
		return nil, err
	}
	saved, err := s.store.AddRecordingSession(ctx, *session)
	if err != nil {
		return nil, err
	}

	s.clients.modify(clientID, func(c *client.Client) {
		c.RecordingSessions = append(c.RecordingSessions, *saved)
		client.SortSessions(c.RecordingSessions)
	})
	s.clients.publish(ctx, client.NewRecordingSessionScheduledEvent(c, *saved))
	return saved, nil
}

// List returns the client's sessions, earliest first.
func (s *RecordingService) List(ctx context.Context, clientID string) ([]client.RecordingSession, error) {
	if _, err := s.clients.Get(ctx, clientID); err != nil {
		return nil, err
	}
	sessions, err := s.store.ListRecordingSessions(ctx, clientID)
	if err != nil {
		return nil, err
	}
	s.clients.modify(clientID, func(c *client.Client) {
		c.RecordingSessions = append([]client.RecordingSession(nil), sessions...)
	})
	return sessions, nil
}

// Upcoming returns open sessions from today on across all clients.
func (s *RecordingService) Upcoming(ctx context.Context, limit int) []client.RecordingSession {
	if limit <= 0 {
		limit = upcomingLimit
	}
	return client.UpcomingSessions(s.clients.Snapshot(), s.clients.now(), limit)
}

// UpdateStatus changes the status of a session.
func (s *RecordingService) UpdateStatus(ctx context.Context, clientID, sessionID string, status client.SessionStatus) (*client.RecordingSession, error) {
	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	return s.change(ctx, clientID, sessionID, func(session *client.RecordingSession) error {
		return session.SetStatus(status, s.clients.now())
	})
}

// Cancel cancels a session. Cancelled sessions cannot be revived.
func (s *RecordingService) Cancel(ctx context.Context, clientID, sessionID string) (*client.RecordingSession, error) {
	return s.UpdateStatus(ctx, clientID, sessionID, client.SessionCancelled)
}

// AssetUploadURL presigns an upload for the session recording and records
// the object key on the session.
func (s *RecordingService) AssetUploadURL(ctx context.Context, clientID, sessionID string, req AssetUploadRequest) (*AssetUploadResponse, error) {
	if s.assets == nil {
		return nil, client.ErrStorageNotConfigured
	}

	s.clients.cmd.Lock()
	defer s.clients.cmd.Unlock()

	key := AssetKey(clientID, sessionID, req.Filename)
	contentType := req.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var resp AssetUploadResponse
	_, err := s.change(ctx, clientID, sessionID, func(session *client.RecordingSession) error {
		url, expiresAt, err := s.assets.PresignPut(ctx, key, contentType)
		if err != nil {
			return err
		}
		resp = AssetUploadResponse{URL: url, Key: key, Method: "PUT", ExpiresAt: expiresAt}
		session.AttachAsset(key, s.clients.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AssetKey is the object key of a session recording.
func AssetKey(clientID, sessionID, filename string) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "recording"
	}
	return fmt.Sprintf("recordings/%s/%s/%s", clientID, sessionID, name)
}

func (s *RecordingService) change(ctx context.Context, clientID, sessionID string, fn func(session *client.RecordingSession) error) (*client.RecordingSession, error) {
	c, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}
	var session *client.RecordingSession
	for i := range c.RecordingSessions {
		if c.RecordingSessions[i].ID == sessionID {
			session = &c.RecordingSessions[i]
			break
		}
	}
	if session == nil {
		return nil, client.ErrSessionNotFound
	}
	if err := fn(session); err != nil {
		return nil, err
	}

	saved, err := s.store.UpdateRecordingSession(ctx, *session)
	if err != nil {
		return nil, err
	}
	s.clients.modify(clientID, func(c *client.Client) {
		for i := range c.RecordingSessions {
			if c.RecordingSessions[i].ID == saved.ID {
				c.RecordingSessions[i] = *saved
			}
		}
	})
	s.clients.publish(ctx, client.NewRecordingSessionUpdatedEvent(c, *saved))
	return saved, nil
}
