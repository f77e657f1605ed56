package client

import "time"

// DashboardStats are the aggregates shown on the dashboard.
type DashboardStats struct {
	TotalClients       int `json:"total_clients"`
	ActiveOnboarding   int `json:"active_onboarding"`
	CompletedThisMonth int `json:"completed_this_month"`
	AverageHealthScore int `json:"average_health_score"`
	OnboardingProgress int `json:"onboarding_progress"`
}

// ComputeStats derives dashboard aggregates from the client collection.
// A client counts as completed this month when its status is completed and
// it was last updated in the same calendar year and month as now.
func ComputeStats(clients []Client, now time.Time) DashboardStats {
	stats := DashboardStats{TotalClients: len(clients)}
	scores := make([]int, 0, len(clients))
	completedSteps := 0
	year, month, _ := now.Date()

	for i := range clients {
		c := &clients[i]
		switch c.Status {
		case StatusOnboarding:
			stats.ActiveOnboarding++
		case StatusCompleted:
			y, m, _ := c.UpdatedAt.In(now.Location()).Date()
			if y == year && m == month {
				stats.CompletedThisMonth++
			}
		}
		scores = append(scores, c.HealthScoreOrDefault())
		completedSteps += CountCompleted(c.OnboardingSteps)
	}

	stats.AverageHealthScore = RoundedMean(scores, DefaultHealthScore)
	stats.OnboardingProgress = Percent(completedSteps, OnboardingStepCount*len(clients))
	return stats
}
