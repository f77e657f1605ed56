package client

import (
	"strings"
	"time"

	"github.com/attractify/onboarding/internal/domain/client"
)

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	CompanyName       string  `json:"company_name" binding:"max=200"`
	ContactEmail      string  `json:"contact_email" binding:"max=200"`
	ContactName       *string `json:"contact_name" binding:"omitempty,max=200"`
	ContactPhone      *string `json:"contact_phone" binding:"omitempty,max=50"`
	Website           *string `json:"website" binding:"omitempty,max=500"`
	Industry          *string `json:"industry" binding:"omitempty,max=100"`
	Notes             *string `json:"notes" binding:"omitempty,max=5000"`
	GoogleAnalyticsID *string `json:"google_analytics_id" binding:"omitempty,max=50"`
	Status            *string `json:"status" binding:"omitempty,max=20"`
	HealthScore       *int    `json:"health_score"`
}

// Fields converts the request into normalized domain fields. Status and
// health score fall back to the creation-form defaults.
func (r CreateClientRequest) Fields() client.Fields {
	f := client.Fields{
		CompanyName:       r.CompanyName,
		ContactEmail:      r.ContactEmail,
		ContactName:       r.ContactName,
		ContactPhone:      r.ContactPhone,
		Website:           r.Website,
		Industry:          r.Industry,
		Notes:             r.Notes,
		GoogleAnalyticsID: r.GoogleAnalyticsID,
		Status:            client.StatusActive,
		HealthScore:       r.HealthScore,
	}.Normalized()
	if r.Status != nil && strings.TrimSpace(*r.Status) != "" {
		f.Status = client.Status(strings.TrimSpace(*r.Status))
	}
	if f.HealthScore == nil {
		score := client.DefaultHealthScore
		f.HealthScore = &score
	}
	f.AnalyticsSetupComplete = f.GoogleAnalyticsID != nil
	return f
}

// UpdateClientRequest represents a partial client update
type UpdateClientRequest struct {
	CompanyName       *string `json:"company_name" binding:"omitempty,max=200"`
	ContactEmail      *string `json:"contact_email" binding:"omitempty,max=200"`
	ContactName       *string `json:"contact_name" binding:"omitempty,max=200"`
	ContactPhone      *string `json:"contact_phone" binding:"omitempty,max=50"`
	Website           *string `json:"website" binding:"omitempty,max=500"`
	Industry          *string `json:"industry" binding:"omitempty,max=100"`
	Notes             *string `json:"notes" binding:"omitempty,max=5000"`
	GoogleAnalyticsID *string `json:"google_analytics_id" binding:"omitempty,max=50"`
	Status            *string `json:"status" binding:"omitempty,max=20"`
	HealthScore       *int    `json:"health_score"`
}

// Patch converts the request into a domain patch. Setting the GA id keeps
// analytics_setup_complete in step with it.
func (r UpdateClientRequest) Patch() client.Patch {
	p := client.Patch{
		CompanyName:       r.CompanyName,
		ContactEmail:      r.ContactEmail,
		ContactName:       r.ContactName,
		ContactPhone:      r.ContactPhone,
		Website:           r.Website,
		Industry:          r.Industry,
		Notes:             r.Notes,
		GoogleAnalyticsID: r.GoogleAnalyticsID,
		HealthScore:       r.HealthScore,
	}
	if r.Status != nil {
		status := client.Status(strings.TrimSpace(*r.Status))
		p.Status = &status
	}
	if r.GoogleAnalyticsID != nil {
		complete := strings.TrimSpace(*r.GoogleAnalyticsID) != ""
		p.AnalyticsSetupComplete = &complete
	}
	return p
}

// ClientListFilter holds list query parameters
type ClientListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ChecklistResponse is the onboarding view of one client
type ChecklistResponse struct {
	ClientID  string                  `json:"client_id"`
	Steps     []client.OnboardingStep `json:"steps"`
	Completed int                     `json:"completed"`
	Total     int                     `json:"total"`
	Progress  int                     `json:"progress"`
	NextSteps []client.OnboardingStep `json:"next_steps"`
}

// UpdateStepRequest sets an onboarding step status
type UpdateStepRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in-progress completed"`
}

// TimelineResponse is the timeline view of one client
type TimelineResponse struct {
	ClientID        string                 `json:"client_id"`
	Months          []client.TimelineMonth `json:"months"`
	OverallProgress int                    `json:"overall_progress"`
}

// UpdateMonthRequest changes a month's status and/or stored progress
type UpdateMonthRequest struct {
	Status   *string `json:"status" binding:"omitempty,oneof=pending in-progress completed"`
	Progress *int    `json:"progress" binding:"omitempty,min=0,max=100"`
}

// UpdateTaskRequest sets a timeline task status
type UpdateTaskRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in-progress completed"`
}

// ScheduleSessionRequest schedules a recording session
type ScheduleSessionRequest struct {
	ScheduledDate   string   `json:"scheduled_date" binding:"required"`
	Time            string   `json:"time" binding:"omitempty,max=5"`
	DurationMinutes int      `json:"duration_minutes"`
	Status          string   `json:"status" binding:"omitempty,oneof=pending scheduled ready cancelled completed"`
	Participants    []string `json:"participants" binding:"omitempty,max=20"`
	Notes           *string  `json:"notes" binding:"omitempty,max=2000"`
}

// Spec parses the request into a session spec. Dates are accepted as
// YYYY-MM-DD or RFC 3339.
func (r ScheduleSessionRequest) Spec() (client.SessionSpec, error) {
	date, err := parseDate(r.ScheduledDate)
	if err != nil {
		return client.SessionSpec{}, err
	}
	return client.SessionSpec{
		ScheduledDate:   date,
		Time:            r.Time,
		DurationMinutes: r.DurationMinutes,
		Status:          client.SessionStatus(r.Status),
		Participants:    r.Participants,
		Notes:           r.Notes,
	}, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, client.ErrSessionDateRequired
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, client.ErrSessionDateRequired
}

// UpdateSessionStatusRequest changes a session status
type UpdateSessionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending scheduled ready cancelled completed"`
}

// QualityCheckRequest carries the equipment ratings
type QualityCheckRequest struct {
	Ratings map[string]client.QualityLevel `json:"ratings" binding:"required"`
}

// AssetUploadRequest asks for an upload URL for a session recording
type AssetUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"omitempty,max=100"`
}

// AssetUploadResponse is a presigned upload target
type AssetUploadResponse struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ConfigureAnalyticsRequest updates the analytics configuration
type ConfigureAnalyticsRequest struct {
	WebsiteURL          *string `json:"website_url" binding:"omitempty,max=500"`
	MeasurementID       *string `json:"measurement_id" binding:"omitempty,max=50"`
	EnhancedMeasurement *bool   `json:"enhanced_measurement"`
	CrossDomainTracking *bool   `json:"cross_domain_tracking"`
}

// AnalyticsResponse is the analytics view of one client
type AnalyticsResponse struct {
	*client.AnalyticsSetup
	GA4Progress int    `json:"ga4_progress"`
	GTMProgress int    `json:"gtm_progress"`
	GTMUnlocked bool   `json:"gtm_unlocked"`
	Notice      string `json:"notice,omitempty"`
}

// GTMLockedNotice is shown while GTM configuration is unavailable.
const GTMLockedNotice = "GTM configuration will be available once GA4 setup is completed"

// ToAnalyticsResponse converts a setup into its view
func ToAnalyticsResponse(a *client.AnalyticsSetup) *AnalyticsResponse {
	resp := &AnalyticsResponse{
		AnalyticsSetup: a,
		GA4Progress:    a.GA4Progress(),
		GTMProgress:    a.GTMProgress(),
		GTMUnlocked:    a.GTMUnlocked(),
	}
	if !resp.GTMUnlocked {
		resp.Notice = GTMLockedNotice
	}
	return resp
}

// UpdateSetupStepRequest sets a GA4 or GTM step status
type UpdateSetupStepRequest struct {
	Status string `json:"status" binding:"required,oneof=pending in-progress completed"`
}

// TrackingCodeResponse carries the gtag.js snippet
type TrackingCodeResponse struct {
	MeasurementID string `json:"measurement_id"`
	Configured    bool   `json:"configured"`
	Snippet       string `json:"snippet"`
}

// OverviewResponse is the dashboard landing payload
type OverviewResponse struct {
	Stats            client.DashboardStats     `json:"stats"`
	RecentClients    []client.Client           `json:"recent_clients"`
	RecentActivity   []client.ActivityEntry    `json:"recent_activity"`
	UpcomingSessions []client.RecordingSession `json:"upcoming_sessions"`
}
