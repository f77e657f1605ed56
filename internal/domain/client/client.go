// Package client holds the client onboarding domain: the client record, the
// fixed onboarding catalog, the timeline template, recording sessions,
// analytics setup and the Store contract both persistence adapters satisfy.
package client

import (
	"strings"
	"time"

	"github.com/attractify/onboarding/internal/domain/shared"
)

// Status is the client lifecycle status. Values outside the constants are
// accepted and preserved.
type Status string

const (
	StatusActive     Status = "active"
	StatusOnboarding Status = "onboarding"
	StatusCompleted  Status = "completed"
)

// DefaultHealthScore is used whenever a client has no health score.
const DefaultHealthScore = 75

// Client is a marketing-agency customer being onboarded. It exclusively
// owns its onboarding steps, timeline, recording sessions and analytics.
type Client struct {
	ID                     string  `json:"id"`
	CompanyName            string  `json:"company_name"`
	ContactName            *string `json:"contact_name"`
	ContactEmail           string  `json:"contact_email"`
	ContactPhone           *string `json:"contact_phone"`
	Website                *string `json:"website"`
	Industry               *string `json:"industry"`
	Notes                  *string `json:"notes"`
	GoogleAnalyticsID      *string `json:"google_analytics_id"`
	AnalyticsSetupComplete bool    `json:"analytics_setup_complete"`
	Status                 Status  `json:"status,omitempty"`
	HealthScore            *int    `json:"health_score,omitempty"`
	shared.Timestamps

	OnboardingSteps   []OnboardingStep   `json:"onboarding_steps,omitempty"`
	Timeline          []TimelineMonth    `json:"timeline,omitempty"`
	RecordingSessions []RecordingSession `json:"recording_sessions,omitempty"`
	Analytics         *AnalyticsSetup    `json:"analytics,omitempty"`
}

// Fields are the caller-supplied attributes of a new client.
type Fields struct {
	CompanyName            string
	ContactEmail           string
	ContactName            *string
	ContactPhone           *string
	Website                *string
	Industry               *string
	Notes                  *string
	GoogleAnalyticsID      *string
	AnalyticsSetupComplete bool
	Status                 Status
	HealthScore            *int
}

// Validate checks the required fields. Stores never call it; callers do,
// before any persistence call.
func (f Fields) Validate() error {
	if strings.TrimSpace(f.CompanyName) == "" {
		return ErrCompanyNameRequired
	}
	if strings.TrimSpace(f.ContactEmail) == "" {
		return ErrContactEmailRequired
	}
	return nil
}

// Normalized trims every text field and turns blank optional fields into nil.
func (f Fields) Normalized() Fields {
	f.CompanyName = strings.TrimSpace(f.CompanyName)
	f.ContactEmail = strings.TrimSpace(f.ContactEmail)
	f.ContactName = optional(f.ContactName)
	f.ContactPhone = optional(f.ContactPhone)
	f.Website = optional(f.Website)
	f.Industry = optional(f.Industry)
	f.Notes = optional(f.Notes)
	f.GoogleAnalyticsID = optional(f.GoogleAnalyticsID)
	return f
}

// NewClient builds a client record from fields. Stores call it with the id
// they generated.
func NewClient(id string, f Fields, now time.Time) *Client {
	return &Client{
		ID:                     id,
		CompanyName:            f.CompanyName,
		ContactName:            f.ContactName,
		ContactEmail:           f.ContactEmail,
		ContactPhone:           f.ContactPhone,
		Website:                f.Website,
		Industry:               f.Industry,
		Notes:                  f.Notes,
		GoogleAnalyticsID:      f.GoogleAnalyticsID,
		AnalyticsSetupComplete: f.AnalyticsSetupComplete,
		Status:                 f.Status,
		HealthScore:            f.HealthScore,
		Timestamps:             shared.NewTimestamps(now),
	}
}

// Patch is a partial update. Nil fields are left untouched; an empty string
// clears an optional field.
type Patch struct {
	CompanyName            *string
	ContactEmail           *string
	ContactName            *string
	ContactPhone           *string
	Website                *string
	Industry               *string
	Notes                  *string
	GoogleAnalyticsID      *string
	AnalyticsSetupComplete *bool
	Status                 *Status
	HealthScore            *int
}

// Validate rejects patches that would blank a required field.
func (p Patch) Validate() error {
	if p.CompanyName != nil && strings.TrimSpace(*p.CompanyName) == "" {
		return ErrCompanyNameRequired
	}
	if p.ContactEmail != nil && strings.TrimSpace(*p.ContactEmail) == "" {
		return ErrContactEmailRequired
	}
	return nil
}

// IsEmpty reports whether the patch sets nothing.
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply merges the patch into the client and refreshes UpdatedAt.
func (c *Client) Apply(p Patch, now time.Time) {
	if p.CompanyName != nil {
		c.CompanyName = strings.TrimSpace(*p.CompanyName)
	}
	if p.ContactEmail != nil {
		c.ContactEmail = strings.TrimSpace(*p.ContactEmail)
	}
	if p.ContactName != nil {
		c.ContactName = optional(p.ContactName)
	}
	if p.ContactPhone != nil {
		c.ContactPhone = optional(p.ContactPhone)
	}
	if p.Website != nil {
		c.Website = optional(p.Website)
	}
	if p.Industry != nil {
		c.Industry = optional(p.Industry)
	}
	if p.Notes != nil {
		c.Notes = optional(p.Notes)
	}
	if p.GoogleAnalyticsID != nil {
		c.GoogleAnalyticsID = optional(p.GoogleAnalyticsID)
	}
	if p.AnalyticsSetupComplete != nil {
		c.AnalyticsSetupComplete = *p.AnalyticsSetupComplete
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.HealthScore != nil {
		score := *p.HealthScore
		c.HealthScore = &score
	}
	c.Touch(now)
}

// HealthScoreOrDefault returns the health score, or 75 when unset.
func (c *Client) HealthScoreOrDefault() int {
	if c.HealthScore == nil {
		return DefaultHealthScore
	}
	return *c.HealthScore
}

// Clone returns a deep copy so callers can hold a snapshot while the
// original keeps changing.
func (c *Client) Clone() *Client {
	if c == nil {
		return nil
	}
	out := *c
	out.ContactName = cloneString(c.ContactName)
	out.ContactPhone = cloneString(c.ContactPhone)
	out.Website = cloneString(c.Website)
	out.Industry = cloneString(c.Industry)
	out.Notes = cloneString(c.Notes)
	out.GoogleAnalyticsID = cloneString(c.GoogleAnalyticsID)
	if c.HealthScore != nil {
		score := *c.HealthScore
		out.HealthScore = &score
	}
	if c.OnboardingSteps != nil {
		out.OnboardingSteps = make([]OnboardingStep, len(c.OnboardingSteps))
		for i, s := range c.OnboardingSteps {
			out.OnboardingSteps[i] = s.clone()
		}
	}
	if c.Timeline != nil {
		out.Timeline = cloneTimeline(c.Timeline)
	}
	if c.RecordingSessions != nil {
		out.RecordingSessions = make([]RecordingSession, len(c.RecordingSessions))
		for i, s := range c.RecordingSessions {
			out.RecordingSessions[i] = s.clone()
		}
	}
	if c.Analytics != nil {
		out.Analytics = c.Analytics.Clone()
	}
	return &out
}

// Matches reports whether the client matches a free-text search over its
// company, contact and email.
func (c *Client) Matches(search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}
	fields := []string{c.CompanyName, c.ContactEmail, deref(c.ContactName), deref(c.Industry)}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
