package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTimeline(t *testing.T) {
	months := DefaultTimeline()
	require.Len(t, months, 3)

	assert.Equal(t, "Setup & Orientation", months[0].Title)
	assert.Equal(t, "Content & Monitoring", months[1].Title)
	assert.Equal(t, "Analysis & Optimization", months[2].Title)
	for _, m := range months {
		assert.Equal(t, StepPending, m.Status)
		assert.Zero(t, m.Progress)
		require.Len(t, m.Weeks, 4)
		for _, w := range m.Weeks {
			assert.Len(t, w.Tasks, 3)
		}
	}
}

func TestOverallProgress(t *testing.T) {
	assert.Equal(t, 0, OverallProgress(nil))

	months := DefaultTimeline()
	months[0].Progress = 100
	months[1].Progress = 50
	assert.Equal(t, 50, OverallProgress(months))
	months[2].Progress = 1
	assert.Equal(t, 50, OverallProgress(months))
}

func TestClient_TimelineMutations(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	c := NewClient("1", Fields{CompanyName: "Acme", ContactEmail: "a@acme.com"}, now)

	t.Run("progress range", func(t *testing.T) {
		assert.ErrorIs(t, c.SetMonthProgress(1, 101, now), ErrProgressOutOfRange)
		assert.ErrorIs(t, c.SetMonthProgress(1, -1, now), ErrProgressOutOfRange)
		require.NoError(t, c.SetMonthProgress(2, 40, now))
		assert.Equal(t, 40, c.Timeline[1].Progress)
	})

	t.Run("progress is not derived from tasks", func(t *testing.T) {
		require.NoError(t, c.SetTaskStatus(1, 1, 1, StepCompleted, now))
		assert.Equal(t, StepCompleted, c.Timeline[0].Weeks[0].Tasks[0].Status)
		assert.Zero(t, c.Timeline[0].Progress)
	})

	t.Run("month status", func(t *testing.T) {
		require.NoError(t, c.SetMonthStatus(3, StepInProgress, now))
		assert.Equal(t, StepInProgress, c.Timeline[2].Status)
	})

	t.Run("unknown coordinates", func(t *testing.T) {
		assert.ErrorIs(t, c.SetMonthProgress(4, 10, now), ErrTimelineNotFound)
		assert.ErrorIs(t, c.SetTaskStatus(1, 5, 1, StepCompleted, now), ErrTimelineNotFound)
		assert.ErrorIs(t, c.SetTaskStatus(1, 1, 4, StepCompleted, now), ErrTimelineNotFound)
	})
}
