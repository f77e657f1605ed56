package client

import (
	"context"
	"errors"
	"testing"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_Overview(t *testing.T) {
	ctx := context.Background()

	t.Run("assembles the landing view", func(t *testing.T) {
		store := new(MockStore)
		clients := []client.Client{
			withSession(newTestClient("4", "Delta"), "s1", client.SessionScheduled, fixedNow.AddDate(0, 0, 1)),
			newTestClient("3", "Gamma"),
			newTestClient("2", "Beta"),
			newTestClient("1", "Alpha"),
		}
		svc := newLoadedService(store, nil, clients...)
		entries := []client.ActivityEntry{client.NewActivityEntry("4", "Delta", client.EventTypeClientCreated, "New client Delta added", fixedNow)}
		store.On("RecentActivity", ctx, client.DefaultActivityLimit).Return(entries, nil)

		overview, err := NewDashboardService(svc, store, nil).Overview(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, overview.Stats.TotalClients)
		require.Len(t, overview.RecentClients, 3)
		assert.Equal(t, "Delta", overview.RecentClients[0].CompanyName)
		assert.Equal(t, entries, overview.RecentActivity)
		assert.Len(t, overview.UpcomingSessions, 1)
	})

	t.Run("activity failure degrades to empty feed", func(t *testing.T) {
		store := new(MockStore)
		svc := newLoadedService(store, nil)
		store.On("RecentActivity", ctx, client.DefaultActivityLimit).Return(nil, errors.New("table missing"))

		overview, err := NewDashboardService(svc, store, nil).Overview(ctx)
		require.NoError(t, err)
		assert.Empty(t, overview.RecentActivity)
		assert.Equal(t, 75, overview.Stats.AverageHealthScore)
	})
}

func TestDashboardService_RecentActivityDefaultLimit(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	store.On("RecentActivity", ctx, client.DefaultActivityLimit).Return(nil, nil)

	entries, err := NewDashboardService(newLoadedService(store, nil), store, nil).RecentActivity(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}
