package client

import (
	"context"
	"errors"
	"testing"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService_Get(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	svc := newLoadedService(store, nil, newTestClient("1", "Acme"))
	store.On("GetAnalyticsSetup", ctx, "1").Return(nil, nil)

	resp, err := NewAnalyticsService(svc, store).Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, client.PlaceholderMeasurementID, resp.MeasurementID)
	assert.False(t, resp.GTMUnlocked)
	assert.Equal(t, GTMLockedNotice, resp.Notice)
}

func TestAnalyticsService_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("syncs the client GA fields", func(t *testing.T) {
		store := new(MockStore)
		pub := &recordingPublisher{}
		svc := newLoadedService(store, pub, newTestClient("1", "Acme"))
		store.On("GetAnalyticsSetup", ctx, "1").Return(nil, nil)

		var saved client.AnalyticsSetup
		store.On("UpsertAnalyticsSetup", ctx, mock.MatchedBy(func(a client.AnalyticsSetup) bool {
			saved = a
			return a.MeasurementID == "G-ABCD1234" && a.EnhancedMeasurement
		})).Return(&saved, nil)

		updated := newTestClient("1", "Acme")
		updated.GoogleAnalyticsID = strPtr("G-ABCD1234")
		updated.AnalyticsSetupComplete = true
		store.On("UpdateClient", ctx, "1", mock.MatchedBy(func(p client.Patch) bool {
			return *p.GoogleAnalyticsID == "G-ABCD1234" && *p.AnalyticsSetupComplete
		})).Return(&updated, nil)

		enhanced := true
		resp, err := NewAnalyticsService(svc, store).Configure(ctx, "1", ConfigureAnalyticsRequest{
			MeasurementID:       strPtr(" G-ABCD1234 "),
			EnhancedMeasurement: &enhanced,
		})
		require.NoError(t, err)
		assert.Equal(t, "G-ABCD1234", resp.MeasurementID)

		c, _ := svc.Get(ctx, "1")
		assert.True(t, c.AnalyticsSetupComplete)
		assert.Equal(t, "G-ABCD1234", *c.GoogleAnalyticsID)
		require.NotNil(t, c.Analytics)
		assert.Equal(t, []string{client.EventTypeAnalyticsSetupUpdated, client.EventTypeClientUpdated}, pub.types())
	})

	t.Run("client sync failure writes nothing", func(t *testing.T) {
		store := new(MockStore)
		pub := &recordingPublisher{}
		svc := newLoadedService(store, pub, newTestClient("1", "Acme"))
		store.On("GetAnalyticsSetup", ctx, "1").Return(nil, nil)
		store.On("UpdateClient", ctx, "1", mock.Anything).Return(nil, errors.New("store down"))

		_, err := NewAnalyticsService(svc, store).Configure(ctx, "1", ConfigureAnalyticsRequest{MeasurementID: strPtr("G-ABCD1234")})
		assert.EqualError(t, err, "store down")
		store.AssertNotCalled(t, "UpsertAnalyticsSetup", mock.Anything, mock.Anything)
		assert.Empty(t, pub.types())

		c, _ := svc.Get(ctx, "1")
		assert.Nil(t, c.GoogleAnalyticsID)
		assert.False(t, c.AnalyticsSetupComplete)
	})

	t.Run("setup failure reverts the client", func(t *testing.T) {
		store := new(MockStore)
		pub := &recordingPublisher{}
		svc := newLoadedService(store, pub, newTestClient("1", "Acme"))
		store.On("GetAnalyticsSetup", ctx, "1").Return(nil, nil)

		synced := newTestClient("1", "Acme")
		synced.GoogleAnalyticsID = strPtr("G-ABCD1234")
		synced.AnalyticsSetupComplete = true
		store.On("UpdateClient", ctx, "1", mock.MatchedBy(func(p client.Patch) bool {
			return *p.GoogleAnalyticsID == "G-ABCD1234"
		})).Return(&synced, nil).Once()
		store.On("UpsertAnalyticsSetup", ctx, mock.Anything).Return(nil, errors.New("disk full"))
		reverted := newTestClient("1", "Acme")
		store.On("UpdateClient", ctx, "1", mock.MatchedBy(func(p client.Patch) bool {
			return *p.GoogleAnalyticsID == "" && !*p.AnalyticsSetupComplete
		})).Return(&reverted, nil).Once()

		_, err := NewAnalyticsService(svc, store).Configure(ctx, "1", ConfigureAnalyticsRequest{MeasurementID: strPtr("G-ABCD1234")})
		assert.EqualError(t, err, "disk full")
		store.AssertNumberOfCalls(t, "UpdateClient", 2)
		assert.Empty(t, pub.types())

		c, _ := svc.Get(ctx, "1")
		assert.Nil(t, c.GoogleAnalyticsID)
		assert.Nil(t, c.Analytics)
	})

	t.Run("rejects malformed ids", func(t *testing.T) {
		store := new(MockStore)
		svc := newLoadedService(store, nil, newTestClient("1", "Acme"))

		_, err := NewAnalyticsService(svc, store).Configure(ctx, "1", ConfigureAnalyticsRequest{MeasurementID: strPtr("UA-1")})
		assert.ErrorIs(t, err, client.ErrInvalidMeasurementID)
		store.AssertNotCalled(t, "UpsertAnalyticsSetup", mock.Anything, mock.Anything)
	})
}

func TestAnalyticsService_Steps(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	c := newTestClient("1", "Acme")
	svc := newLoadedService(store, nil, c)
	setup := client.NewAnalyticsSetup(&c, fixedNow)
	store.On("GetAnalyticsSetup", ctx, "1").Return(setup, nil)

	analytics := NewAnalyticsService(svc, store)

	_, err := analytics.UpdateGTMStep(ctx, "1", 1, client.StepCompleted)
	assert.ErrorIs(t, err, client.ErrGTMLocked)

	store.On("UpsertAnalyticsSetup", ctx, mock.MatchedBy(func(a client.AnalyticsSetup) bool {
		return a.GA4Steps[0].Status == client.StepCompleted
	})).Return(func() *client.AnalyticsSetup {
		cp := setup.Clone()
		cp.GA4Steps[0].Status = client.StepCompleted
		return cp
	}(), nil)

	resp, err := analytics.UpdateGA4Step(ctx, "1", 1, client.StepCompleted)
	require.NoError(t, err)
	assert.Equal(t, 20, resp.GA4Progress)
}

func TestAnalyticsService_TrackingCode(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	svc := newLoadedService(store, nil, newTestClient("1", "Acme"))
	store.On("GetAnalyticsSetup", ctx, "1").Return(&client.AnalyticsSetup{ClientID: "1", MeasurementID: "G-LIVE9999"}, nil)

	code, err := NewAnalyticsService(svc, store).TrackingCode(ctx, "1")
	require.NoError(t, err)
	assert.True(t, code.Configured)
	assert.Contains(t, code.Snippet, "G-LIVE9999")
}
