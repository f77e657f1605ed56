package main

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/infrastructure/localstore"
)

func TestSeeder_Seed(t *testing.T) {
	ctx := context.Background()
	store := localstore.New(localstore.NewMemorySlot("clients"))
	clients := clientapp.NewClientService(store, nil, nil)
	require.NoError(t, clients.Load(ctx))

	s := newSeeder(gofakeit.New(42), clients, clientapp.NewOnboardingService(clients, store), nil)
	ids, err := s.seed(ctx, 6)
	require.NoError(t, err)
	require.Len(t, ids, 6)
	assert.Equal(t, 6, clients.Count())

	stored, err := store.GetClients(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 6)

	for _, c := range stored {
		require.Len(t, c.OnboardingSteps, client.OnboardingStepCount, c.CompanyName)
		assert.NotEmpty(t, c.ContactEmail)

		// completed steps form a prefix, followed by at most one in-progress step
		phase := client.StepCompleted
		inProgress := 0
		for _, step := range c.OnboardingSteps {
			switch step.Status {
			case client.StepCompleted:
				assert.Equal(t, client.StepCompleted, phase, "completed step after the prefix in %s", c.CompanyName)
				assert.NotNil(t, step.CompletedAt)
			case client.StepInProgress:
				inProgress++
				phase = client.StepPending
			case client.StepPending:
				phase = client.StepPending
			}
		}
		assert.LessOrEqual(t, inProgress, 1)

		done := client.CountCompleted(c.OnboardingSteps)
		switch {
		case done == client.OnboardingStepCount:
			assert.Equal(t, client.StatusCompleted, c.Status)
		case done > 0:
			assert.Equal(t, client.StatusOnboarding, c.Status)
		default:
			assert.Equal(t, client.StatusActive, c.Status)
		}
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "acmeandsons", slug("Acme & Sons"))
	assert.Equal(t, "example", slug("!!!"))
}
