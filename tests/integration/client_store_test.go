//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/infrastructure/bootstrap"
	"github.com/attractify/onboarding/internal/infrastructure/config"
	"github.com/attractify/onboarding/internal/infrastructure/event"
	"github.com/attractify/onboarding/internal/infrastructure/persistence"
)

var now = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func acme() client.Fields {
	return client.Fields{CompanyName: "Acme", ContactEmail: "ops@acme.com", Status: client.StatusActive}
}

func TestHostedStore_ClientLifecycle(t *testing.T) {
	tdb := NewTestDB(t)
	store := persistence.NewGormClientStore(tdb.DB)
	ctx := context.Background()

	c, err := store.AddClient(ctx, acme())
	require.NoError(t, err)

	_, err = store.InitializeOnboardingSteps(ctx, c.ID)
	require.NoError(t, err)
	_, err = store.UpdateOnboardingStep(ctx, c.ID, 1, client.StepInProgress)
	require.NoError(t, err)
	done, err := store.UpdateOnboardingStep(ctx, c.ID, 1, client.StepCompleted)
	require.NoError(t, err)
	step, ok := done.Step(1)
	require.True(t, ok)
	require.NotNil(t, step.CompletedAt)

	initialized, err := store.InitializeTimeline(ctx, c.ID)
	require.NoError(t, err)
	months := initialized.Timeline
	months[1].Progress = 40
	months[1].Weeks[2].Tasks[0].Status = client.StepCompleted
	_, err = store.SaveTimeline(ctx, c.ID, months)
	require.NoError(t, err)

	session, err := client.NewRecordingSession(c.ID, client.SessionSpec{
		ScheduledDate:   now.AddDate(0, 0, 3),
		DurationMinutes: 90,
		Participants:    []string{"Dana"},
	}, now)
	require.NoError(t, err)
	_, err = store.AddRecordingSession(ctx, *session)
	require.NoError(t, err)

	setup := client.NewAnalyticsSetup(c, now)
	setup.MeasurementID = "G-INTEG12345"
	_, err = store.UpsertAnalyticsSetup(ctx, *setup)
	require.NoError(t, err)

	got, err := store.GetClient(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, got.OnboardingSteps, client.OnboardingStepCount)
	require.Len(t, got.Timeline, 3)
	assert.Equal(t, 40, got.Timeline[1].Progress)
	assert.Equal(t, client.StepCompleted, got.Timeline[1].Weeks[2].Tasks[0].Status)
	require.Len(t, got.RecordingSessions, 1)
	assert.Equal(t, []string{"Dana"}, got.RecordingSessions[0].Participants)
	require.NotNil(t, got.Analytics)
	assert.Equal(t, "G-INTEG12345", got.Analytics.MeasurementID)

	require.NoError(t, store.DeleteClient(ctx, c.ID))
	_, err = store.GetClient(ctx, c.ID)
	assert.ErrorIs(t, err, client.ErrClientNotFound)
	assert.ErrorIs(t, store.DeleteClient(ctx, uuid.NewString()), client.ErrClientNotFound)
}

func TestHostedStore_ListOrderAndActivity(t *testing.T) {
	tdb := NewTestDB(t)
	clock := now
	store := persistence.NewGormClientStore(tdb.DB).WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})
	ctx := context.Background()

	first, err := store.AddClient(ctx, acme())
	require.NoError(t, err)
	second, err := store.AddClient(ctx, client.Fields{CompanyName: "Globex", ContactEmail: "hi@globex.io"})
	require.NoError(t, err)

	all, err := store.GetClients(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	for i := 0; i < 3; i++ {
		entry := client.NewActivityEntry(first.ID, "Acme", client.EventTypeClientUpdated, "Client updated", now.Add(time.Duration(i)*time.Hour))
		require.NoError(t, store.AppendActivity(ctx, entry))
	}
	recent, err := store.RecentActivity(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].CreatedAt.After(recent[1].CreatedAt))

	tdb.CleanTables()
	all, err = store.GetClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

// The full hosted wiring: config, bootstrap, service and activity recorder.
func TestHostedStore_ThroughBootstrap(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.Store.Driver = config.DriverHosted
	cfg.Store.Hosted = config.HostedStoreConfig{
		URL:          tdb.DSN,
		APIKey:       "onboarding",
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}
	cfg.Log.Level = "warn"

	store, err := bootstrap.OpenStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Ping(ctx))

	bus := event.NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(clientapp.NewActivityRecorder(store, nil))
	svc := clientapp.NewClientService(store, bus, zap.NewNop())
	require.NoError(t, svc.Load(ctx))

	created, err := svc.Create(ctx, clientapp.CreateClientRequest{CompanyName: "Initech", ContactEmail: "bill@initech.com"})
	require.NoError(t, err)
	assert.Equal(t, client.StatusActive, created.Status)

	reloaded := clientapp.NewClientService(store, bus, zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, 1, reloaded.Count())

	activity, err := store.RecentActivity(ctx, 10)
	require.NoError(t, err)
	require.NotEmpty(t, activity)
	assert.Equal(t, client.EventTypeClientCreated, activity[0].Action)
}
