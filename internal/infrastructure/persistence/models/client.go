package models

import (
	"encoding/json"
	"time"

	"github.com/attractify/onboarding/internal/domain/client"
	"github.com/attractify/onboarding/internal/domain/shared"
	"go.uber.org/zap"
)

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	ID                     string  `gorm:"type:uuid;primaryKey"`
	CompanyName            string  `gorm:"type:varchar(200);not null"`
	ContactName            *string `gorm:"type:varchar(200)"`
	ContactEmail           string  `gorm:"type:varchar(200);not null;index"`
	ContactPhone           *string `gorm:"type:varchar(50)"`
	Website                *string `gorm:"type:varchar(500)"`
	Industry               *string `gorm:"type:varchar(100)"`
	Notes                  *string `gorm:"type:text"`
	GoogleAnalyticsID      *string `gorm:"column:google_analytics_id;type:varchar(50)"`
	AnalyticsSetupComplete bool    `gorm:"not null;default:false"`
	Status                 string  `gorm:"type:varchar(20);not null;default:'active';index"`
	HealthScore            *int
	CreatedAt              time.Time `gorm:"not null;autoCreateTime:false;index"`
	UpdatedAt              time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the row to a Client without its owned records.
func (m *ClientModel) ToDomain() *client.Client {
	return &client.Client{
		ID:                     m.ID,
		CompanyName:            m.CompanyName,
		ContactName:            m.ContactName,
		ContactEmail:           m.ContactEmail,
		ContactPhone:           m.ContactPhone,
		Website:                m.Website,
		Industry:               m.Industry,
		Notes:                  m.Notes,
		GoogleAnalyticsID:      m.GoogleAnalyticsID,
		AnalyticsSetupComplete: m.AnalyticsSetupComplete,
		Status:                 client.Status(m.Status),
		HealthScore:            m.HealthScore,
		Timestamps: shared.Timestamps{
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
		},
	}
}

// ClientModelFromDomain creates a row from a Client.
func ClientModelFromDomain(c *client.Client) *ClientModel {
	return &ClientModel{
		ID:                     c.ID,
		CompanyName:            c.CompanyName,
		ContactName:            c.ContactName,
		ContactEmail:           c.ContactEmail,
		ContactPhone:           c.ContactPhone,
		Website:                c.Website,
		Industry:               c.Industry,
		Notes:                  c.Notes,
		GoogleAnalyticsID:      c.GoogleAnalyticsID,
		AnalyticsSetupComplete: c.AnalyticsSetupComplete,
		Status:                 string(c.Status),
		HealthScore:            c.HealthScore,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

// OnboardingStepModel is one checklist row. StepOrder is the catalog step id.
type OnboardingStepModel struct {
	ID            string  `gorm:"type:uuid;primaryKey"`
	ClientID      string  `gorm:"type:uuid;not null;uniqueIndex:idx_onboarding_steps_client_order,priority:1"`
	StepOrder     int     `gorm:"not null;uniqueIndex:idx_onboarding_steps_client_order,priority:2"`
	Title         string  `gorm:"type:varchar(200);not null"`
	Description   string  `gorm:"type:text"`
	Icon          string  `gorm:"type:varchar(20)"`
	EstimatedTime string  `gorm:"type:varchar(50)"`
	Link          *string `gorm:"type:varchar(500)"`
	Details       string  `gorm:"type:text"`
	Status        string  `gorm:"type:varchar(20);not null;default:'pending'"`
	CompletedAt   *time.Time
	CreatedAt     time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (OnboardingStepModel) TableName() string {
	return "onboarding_steps"
}

func (m *OnboardingStepModel) ToDomain() client.OnboardingStep {
	icon, err := client.ParseStepIcon(m.Icon)
	if err != nil {
		icon = 0
	}
	step := client.OnboardingStep{
		ID:            m.StepOrder,
		Title:         m.Title,
		Description:   m.Description,
		Icon:          icon,
		EstimatedTime: m.EstimatedTime,
		Link:          m.Link,
		Details:       m.Details,
		Status:        client.StepStatus(m.Status),
	}
	if m.CompletedAt != nil {
		at := m.CompletedAt.UTC()
		step.CompletedAt = &at
	}
	return step
}

// OnboardingStepModelFromDomain creates a row for one step; id is the row id.
func OnboardingStepModelFromDomain(id, clientID string, s client.OnboardingStep, now time.Time) *OnboardingStepModel {
	return &OnboardingStepModel{
		ID:            id,
		ClientID:      clientID,
		StepOrder:     s.ID,
		Title:         s.Title,
		Description:   s.Description,
		Icon:          s.Icon.String(),
		EstimatedTime: s.EstimatedTime,
		Link:          s.Link,
		Details:       s.Details,
		Status:        string(s.Status),
		CompletedAt:   s.CompletedAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// TimelineItemModel is one month block; its weeks live in a JSON column.
type TimelineItemModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	ClientID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_timeline_items_client_month,priority:1"`
	Month       int       `gorm:"not null;uniqueIndex:idx_timeline_items_client_month,priority:2"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Description string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(20);not null;default:'pending'"`
	Progress    int       `gorm:"not null;default:0"`
	WeeksJSON   string    `gorm:"column:weeks;type:jsonb;not null;default:'[]'"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (TimelineItemModel) TableName() string {
	return "timeline_items"
}

func (m *TimelineItemModel) ToDomain() client.TimelineMonth {
	month := client.TimelineMonth{
		Month:       m.Month,
		Title:       m.Title,
		Description: m.Description,
		Status:      client.StepStatus(m.Status),
		Progress:    m.Progress,
		Weeks:       []client.TimelineWeek{},
	}
	decodeJSON(m.WeeksJSON, &month.Weeks, "weeks", m.ClientID)
	return month
}

func TimelineItemModelFromDomain(id, clientID string, month client.TimelineMonth, now time.Time) *TimelineItemModel {
	return &TimelineItemModel{
		ID:          id,
		ClientID:    clientID,
		Month:       month.Month,
		Title:       month.Title,
		Description: month.Description,
		Status:      string(month.Status),
		Progress:    month.Progress,
		WeeksJSON:   encodeJSON(month.Weeks),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// RecordingSessionModel is a scheduled recording.
type RecordingSessionModel struct {
	ID               string    `gorm:"type:uuid;primaryKey"`
	ClientID         string    `gorm:"type:uuid;not null;index"`
	ScheduledDate    time.Time `gorm:"not null;index"`
	Time             string    `gorm:"type:varchar(20)"`
	DurationMinutes  int       `gorm:"not null"`
	Status           string    `gorm:"type:varchar(20);not null;default:'scheduled'"`
	ParticipantsJSON string    `gorm:"column:participants;type:jsonb;not null;default:'[]'"`
	Notes            *string   `gorm:"type:text"`
	AssetKey         *string   `gorm:"type:varchar(500)"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (RecordingSessionModel) TableName() string {
	return "recording_sessions"
}

func (m *RecordingSessionModel) ToDomain() client.RecordingSession {
	s := client.RecordingSession{
		ID:              m.ID,
		ClientID:        m.ClientID,
		ScheduledDate:   m.ScheduledDate.UTC(),
		Time:            m.Time,
		DurationMinutes: m.DurationMinutes,
		Status:          client.SessionStatus(m.Status),
		Notes:           m.Notes,
		AssetKey:        m.AssetKey,
		Timestamps: shared.Timestamps{
			CreatedAt: m.CreatedAt.UTC(),
			UpdatedAt: m.UpdatedAt.UTC(),
		},
	}
	decodeJSON(m.ParticipantsJSON, &s.Participants, "participants", m.ClientID)
	return s
}

func RecordingSessionModelFromDomain(s client.RecordingSession) *RecordingSessionModel {
	participants := s.Participants
	if participants == nil {
		participants = []string{}
	}
	return &RecordingSessionModel{
		ID:               s.ID,
		ClientID:         s.ClientID,
		ScheduledDate:    s.ScheduledDate,
		Time:             s.Time,
		DurationMinutes:  s.DurationMinutes,
		Status:           string(s.Status),
		ParticipantsJSON: encodeJSON(participants),
		Notes:            s.Notes,
		AssetKey:         s.AssetKey,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// AnalyticsSetupModel holds one client's GA4/GTM progress. ClientID is unique.
type AnalyticsSetupModel struct {
	ID                  string    `gorm:"type:uuid;primaryKey"`
	ClientID            string    `gorm:"type:uuid;not null;uniqueIndex"`
	WebsiteURL          *string   `gorm:"type:varchar(500)"`
	MeasurementID       string    `gorm:"type:varchar(50);not null"`
	EnhancedMeasurement bool      `gorm:"not null;default:false"`
	CrossDomainTracking bool      `gorm:"not null;default:false"`
	GA4StepsJSON        string    `gorm:"column:ga4_steps;type:jsonb;not null;default:'[]'"`
	GTMStepsJSON        string    `gorm:"column:gtm_steps;type:jsonb;not null;default:'[]'"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt           time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (AnalyticsSetupModel) TableName() string {
	return "analytics_setup"
}

func (m *AnalyticsSetupModel) ToDomain() *client.AnalyticsSetup {
	a := &client.AnalyticsSetup{
		ClientID:            m.ClientID,
		WebsiteURL:          m.WebsiteURL,
		MeasurementID:       m.MeasurementID,
		EnhancedMeasurement: m.EnhancedMeasurement,
		CrossDomainTracking: m.CrossDomainTracking,
		GA4Steps:            []client.SetupStep{},
		GTMSteps:            []client.SetupStep{},
		UpdatedAt:           m.UpdatedAt.UTC(),
	}
	decodeJSON(m.GA4StepsJSON, &a.GA4Steps, "ga4_steps", m.ClientID)
	decodeJSON(m.GTMStepsJSON, &a.GTMSteps, "gtm_steps", m.ClientID)
	return a
}

func AnalyticsSetupModelFromDomain(id string, a client.AnalyticsSetup, now time.Time) *AnalyticsSetupModel {
	return &AnalyticsSetupModel{
		ID:                  id,
		ClientID:            a.ClientID,
		WebsiteURL:          a.WebsiteURL,
		MeasurementID:       a.MeasurementID,
		EnhancedMeasurement: a.EnhancedMeasurement,
		CrossDomainTracking: a.CrossDomainTracking,
		GA4StepsJSON:        encodeJSON(a.GA4Steps),
		GTMStepsJSON:        encodeJSON(a.GTMSteps),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// ActivityLogModel is one feed line. It has no foreign key: entries outlive
// the client they mention.
type ActivityLogModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	ClientID    string    `gorm:"type:varchar(64);index"`
	CompanyName string    `gorm:"type:varchar(200)"`
	Action      string    `gorm:"type:varchar(50);not null"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false;index"`
}

func (ActivityLogModel) TableName() string {
	return "activity_log"
}

func (m *ActivityLogModel) ToDomain() client.ActivityEntry {
	return client.ActivityEntry{
		ID:          m.ID,
		ClientID:    m.ClientID,
		CompanyName: m.CompanyName,
		Action:      m.Action,
		Description: m.Description,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func ActivityLogModelFromDomain(e client.ActivityEntry) *ActivityLogModel {
	return &ActivityLogModel{
		ID:          e.ID,
		ClientID:    e.ClientID,
		CompanyName: e.CompanyName,
		Action:      e.Action,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

// All returns every model in dependency order, for AutoMigrate in tests.
func All() []any {
	return []any{
		&ClientModel{},
		&OnboardingStepModel{},
		&TimelineItemModel{},
		&RecordingSessionModel{},
		&AnalyticsSetupModel{},
		&ActivityLogModel{},
	}
}

func encodeJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeJSON logs a malformed column and leaves dst empty.
func decodeJSON(raw string, dst any, column, clientID string) {
	if raw == "" || raw == "[]" || raw == "null" {
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		// resolved per call so the logger installed by main is used
		zap.L().Named("client.models").Warn("failed to parse JSON column",
			zap.String("column", column),
			zap.String("client_id", clientID),
			zap.Error(err))
	}
}
