package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAssetStorage struct {
	mock.Mock
}

func (m *MockAssetStorage) PresignPut(ctx context.Context, key, contentType string) (string, time.Time, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func withSession(c client.Client, id string, status client.SessionStatus, date time.Time) client.Client {
	c.RecordingSessions = append(c.RecordingSessions, client.RecordingSession{
		ID: id, ClientID: c.ID, ScheduledDate: date, DurationMinutes: 60, Status: status,
	})
	return c
}

func TestRecordingService_Schedule(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and patches memory", func(t *testing.T) {
		store := new(MockStore)
		pub := &recordingPublisher{}
		svc := newLoadedService(store, pub, newTestClient("1", "Acme"))
		store.On("AddRecordingSession", ctx, mock.MatchedBy(func(s client.RecordingSession) bool {
			return s.ClientID == "1" && s.Status == client.SessionScheduled && s.DurationMinutes == 60
		})).Return(func() *client.RecordingSession {
			return &client.RecordingSession{ID: "s1", ClientID: "1", ScheduledDate: fixedNow.AddDate(0, 0, 2), DurationMinutes: 60, Status: client.SessionScheduled}
		}(), nil)

		recording := NewRecordingService(svc, store, nil)
		session, err := recording.Schedule(ctx, "1", ScheduleSessionRequest{ScheduledDate: "2026-06-17", Time: "10:00", DurationMinutes: 60})
		require.NoError(t, err)
		assert.Equal(t, "s1", session.ID)

		c, _ := svc.Get(ctx, "1")
		require.Len(t, c.RecordingSessions, 1)
		assert.Len(t, recording.Upcoming(ctx, 0), 1)
		assert.Equal(t, []string{client.EventTypeRecordingSessionScheduled}, pub.types())
	})

	t.Run("validation", func(t *testing.T) {
		store := new(MockStore)
		recording := NewRecordingService(newLoadedService(store, nil, newTestClient("1", "Acme")), store, nil)

		_, err := recording.Schedule(ctx, "1", ScheduleSessionRequest{ScheduledDate: "not a date", DurationMinutes: 60})
		assert.ErrorIs(t, err, client.ErrSessionDateRequired)
		_, err = recording.Schedule(ctx, "1", ScheduleSessionRequest{ScheduledDate: "2026-06-17"})
		assert.ErrorIs(t, err, client.ErrSessionDuration)
		_, err = recording.Schedule(ctx, "9", ScheduleSessionRequest{ScheduledDate: "2026-06-17", DurationMinutes: 30})
		assert.ErrorIs(t, err, client.ErrClientNotFound)
		store.AssertNotCalled(t, "AddRecordingSession", mock.Anything, mock.Anything)
	})
}

func TestRecordingService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel", func(t *testing.T) {
		store := new(MockStore)
		svc := newLoadedService(store, nil, withSession(newTestClient("1", "Acme"), "s1", client.SessionScheduled, fixedNow))
		store.On("UpdateRecordingSession", ctx, mock.MatchedBy(func(s client.RecordingSession) bool {
			return s.ID == "s1" && s.Status == client.SessionCancelled
		})).Return(&client.RecordingSession{ID: "s1", ClientID: "1", ScheduledDate: fixedNow, Status: client.SessionCancelled}, nil)

		recording := NewRecordingService(svc, store, nil)
		got, err := recording.Cancel(ctx, "1", "s1")
		require.NoError(t, err)
		assert.Equal(t, client.SessionCancelled, got.Status)
		assert.Empty(t, recording.Upcoming(ctx, 5))

		_, err = recording.UpdateStatus(ctx, "1", "s1", client.SessionReady)
		assert.ErrorIs(t, err, client.ErrSessionCancelled)
	})

	t.Run("unknown session", func(t *testing.T) {
		store := new(MockStore)
		svc := newLoadedService(store, nil, newTestClient("1", "Acme"))
		_, err := NewRecordingService(svc, store, nil).UpdateStatus(ctx, "1", "nope", client.SessionReady)
		assert.ErrorIs(t, err, client.ErrSessionNotFound)
	})
}

func TestRecordingService_List(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	svc := newLoadedService(store, nil, newTestClient("1", "Acme"))
	sessions := []client.RecordingSession{{ID: "a", ClientID: "1", ScheduledDate: fixedNow}}
	store.On("ListRecordingSessions", ctx, "1").Return(sessions, nil)

	got, err := NewRecordingService(svc, store, nil).List(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, sessions, got)
}

func TestRecordingService_AssetUploadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("without storage", func(t *testing.T) {
		store := new(MockStore)
		svc := newLoadedService(store, nil, withSession(newTestClient("1", "Acme"), "s1", client.SessionScheduled, fixedNow))
		_, err := NewRecordingService(svc, store, nil).AssetUploadURL(ctx, "1", "s1", AssetUploadRequest{Filename: "take1.mp4"})
		assert.ErrorIs(t, err, client.ErrStorageNotConfigured)
	})

	t.Run("presigns and records key", func(t *testing.T) {
		store := new(MockStore)
		assets := new(MockAssetStorage)
		svc := newLoadedService(store, nil, withSession(newTestClient("1", "Acme"), "s1", client.SessionScheduled, fixedNow))
		expires := fixedNow.Add(15 * time.Minute)

		assets.On("PresignPut", ctx, "recordings/1/s1/take1.mp4", "video/mp4").Return("https://s3.test/upload", expires, nil)
		store.On("UpdateRecordingSession", ctx, mock.MatchedBy(func(s client.RecordingSession) bool {
			return s.AssetKey != nil && *s.AssetKey == "recordings/1/s1/take1.mp4"
		})).Return(&client.RecordingSession{ID: "s1", ClientID: "1", AssetKey: strPtr("recordings/1/s1/take1.mp4")}, nil)

		resp, err := NewRecordingService(svc, store, assets).AssetUploadURL(ctx, "1", "s1", AssetUploadRequest{Filename: "../../take1.mp4", ContentType: "video/mp4"})
		require.NoError(t, err)
		assert.Equal(t, "https://s3.test/upload", resp.URL)
		assert.Equal(t, "PUT", resp.Method)
		assert.Equal(t, expires, resp.ExpiresAt)
	})

	t.Run("presign failure", func(t *testing.T) {
		store := new(MockStore)
		assets := new(MockAssetStorage)
		svc := newLoadedService(store, nil, withSession(newTestClient("1", "Acme"), "s1", client.SessionScheduled, fixedNow))
		assets.On("PresignPut", ctx, mock.Anything, mock.Anything).Return("", time.Time{}, errors.New("denied"))

		_, err := NewRecordingService(svc, store, assets).AssetUploadURL(ctx, "1", "s1", AssetUploadRequest{Filename: "a.mp4"})
		assert.Error(t, err)
		store.AssertNotCalled(t, "UpdateRecordingSession", mock.Anything, mock.Anything)
	})
}

func TestAssetKey(t *testing.T) {
	assert.Equal(t, "recordings/c/s/file.wav", AssetKey("c", "s", "dir/file.wav"))
	assert.Equal(t, "recordings/c/s/file.wav", AssetKey("c", "s", `C:\tmp\file.wav`))
	assert.Equal(t, "recordings/c/s/recording", AssetKey("c", "s", " "))
}
