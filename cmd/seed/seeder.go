package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	clientapp "github.com/attractify/onboarding/internal/application/client"
	"github.com/attractify/onboarding/internal/domain/client"
)

var industries = []string{"Retail", "Healthcare", "Real Estate", "Hospitality", "Legal", "Fitness", "Construction", "Education"}

// seeder creates demo clients through the application services so the
// activity feed and events look like real usage.
type seeder struct {
	faker      *gofakeit.Faker
	clients    *clientapp.ClientService
	onboarding *clientapp.OnboardingService
	logger     *zap.Logger
}

func newSeeder(faker *gofakeit.Faker, clients *clientapp.ClientService, onboarding *clientapp.OnboardingService, logger *zap.Logger) *seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &seeder{faker: faker, clients: clients, onboarding: onboarding, logger: logger}
}

// seed adds n clients, initializes their checklists and completes a random
// prefix of steps for each. It returns the created ids.
func (s *seeder) seed(ctx context.Context, n int) ([]string, error) {
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		c, err := s.clients.Create(ctx, s.fakeClient())
		if err != nil {
			return ids, fmt.Errorf("create client %d: %w", i+1, err)
		}
		ids = append(ids, c.ID)

		if _, err := s.onboarding.Initialize(ctx, c.ID); err != nil {
			return ids, fmt.Errorf("initialize %s: %w", c.ID, err)
		}
		done, err := s.advance(ctx, c.ID)
		if err != nil {
			return ids, err
		}
		s.logger.Info("Seeded client",
			zap.String("client_id", c.ID),
			zap.String("company", c.CompanyName),
			zap.Int("completed_steps", done),
		)
	}
	return ids, nil
}

func (s *seeder) fakeClient() clientapp.CreateClientRequest {
	f := s.faker
	company := f.Company()
	contact := f.Name()
	phone := f.Phone()
	website := "https://www." + slug(company) + ".com"
	industry := industries[f.Number(0, len(industries)-1)]
	notes := f.Sentence(8)
	score := f.Number(40, 100)
	return clientapp.CreateClientRequest{
		CompanyName:  company,
		ContactEmail: strings.ToLower(f.FirstName()) + "@" + slug(company) + ".com",
		ContactName:  &contact,
		ContactPhone: &phone,
		Website:      &website,
		Industry:     &industry,
		Notes:        &notes,
		HealthScore:  &score,
	}
}

// advance completes steps 1..k in order, sometimes starts step k+1, and
// sets the client status to match.
func (s *seeder) advance(ctx context.Context, clientID string) (int, error) {
	k := s.faker.Number(0, client.OnboardingStepCount)
	for step := 1; step <= k; step++ {
		if _, err := s.onboarding.Start(ctx, clientID, step); err != nil {
			return 0, fmt.Errorf("start step %d of %s: %w", step, clientID, err)
		}
		if _, err := s.onboarding.Complete(ctx, clientID, step); err != nil {
			return 0, fmt.Errorf("complete step %d of %s: %w", step, clientID, err)
		}
	}
	if k < client.OnboardingStepCount && s.faker.Bool() {
		if _, err := s.onboarding.ContinueToNextStep(ctx, clientID); err != nil {
			return 0, fmt.Errorf("start next step of %s: %w", clientID, err)
		}
	}

	status := string(client.StatusActive)
	switch {
	case k == client.OnboardingStepCount:
		status = string(client.StatusCompleted)
	case k > 0:
		status = string(client.StatusOnboarding)
	}
	if _, err := s.clients.Update(ctx, clientID, clientapp.UpdateClientRequest{Status: &status}); err != nil {
		return 0, fmt.Errorf("set status of %s: %w", clientID, err)
	}
	return k, nil
}

func slug(company string) string {
	var b strings.Builder
	name := strings.ReplaceAll(strings.ToLower(company), "&", "and")
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "example"
	}
	return b.String()
}
