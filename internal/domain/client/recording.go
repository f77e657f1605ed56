package client

import (
	"sort"
	"strings"
	"time"

	"github.com/attractify/onboarding/internal/domain/shared"
	"github.com/google/uuid"
)

// SessionStatus is the state of a recording session.
type SessionStatus string

const (
	SessionPending   SessionStatus = "pending"
	SessionScheduled SessionStatus = "scheduled"
	SessionReady     SessionStatus = "ready"
	SessionCancelled SessionStatus = "cancelled"
	SessionCompleted SessionStatus = "completed"
)

// Valid reports whether s is a known session status.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionPending, SessionScheduled, SessionReady, SessionCancelled, SessionCompleted:
		return true
	}
	return false
}

// RecordingSession is a scheduled content recording slot for a client.
type RecordingSession struct {
	ID              string        `json:"id"`
	ClientID        string        `json:"client_id"`
	ScheduledDate   time.Time     `json:"scheduled_date"`
	Time            string        `json:"time,omitempty"`
	DurationMinutes int           `json:"duration_minutes"`
	Status          SessionStatus `json:"status"`
	Participants    []string      `json:"participants,omitempty"`
	Notes           *string       `json:"notes,omitempty"`
	AssetKey        *string       `json:"asset_key,omitempty"`
	shared.Timestamps
}

// SessionSpec describes a session to schedule.
type SessionSpec struct {
	ScheduledDate   time.Time
	Time            string
	DurationMinutes int
	Status          SessionStatus
	Participants    []string
	Notes           *string
}

// NewRecordingSession validates spec and builds a session with a fresh id.
// Status defaults to scheduled.
func NewRecordingSession(clientID string, spec SessionSpec, now time.Time) (*RecordingSession, error) {
	if spec.ScheduledDate.IsZero() {
		return nil, ErrSessionDateRequired
	}
	if spec.DurationMinutes <= 0 {
		return nil, ErrSessionDuration
	}
	status := spec.Status
	if status == "" {
		status = SessionScheduled
	}
	if !status.Valid() {
		return nil, ErrInvalidSessionStatus
	}
	participants := make([]string, 0, len(spec.Participants))
	for _, p := range spec.Participants {
		if p = strings.TrimSpace(p); p != "" {
			participants = append(participants, p)
		}
	}
	return &RecordingSession{
		ID:              uuid.New().String(),
		ClientID:        clientID,
		ScheduledDate:   spec.ScheduledDate.UTC(),
		Time:            strings.TrimSpace(spec.Time),
		DurationMinutes: spec.DurationMinutes,
		Status:          status,
		Participants:    participants,
		Notes:           optional(spec.Notes),
		Timestamps:      shared.NewTimestamps(now),
	}, nil
}

// SetStatus changes the session status. Cancelled sessions are final.
func (s *RecordingSession) SetStatus(status SessionStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidSessionStatus
	}
	if s.Status == SessionCancelled && status != SessionCancelled {
		return ErrSessionCancelled
	}
	s.Status = status
	s.Touch(now)
	return nil
}

// AttachAsset records the object-storage key of the session recording.
func (s *RecordingSession) AttachAsset(key string, now time.Time) {
	s.AssetKey = &key
	s.Touch(now)
}

func (s RecordingSession) clone() RecordingSession {
	out := s
	out.Participants = append([]string(nil), s.Participants...)
	out.Notes = cloneString(s.Notes)
	out.AssetKey = cloneString(s.AssetKey)
	return out
}

// SortSessions orders sessions by scheduled date, earliest first.
func SortSessions(sessions []RecordingSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].ScheduledDate.Before(sessions[j].ScheduledDate)
	})
}

// UpcomingSessions collects sessions scheduled on or after the start of
// now's day that are neither cancelled nor completed, earliest first.
func UpcomingSessions(clients []Client, now time.Time, limit int) []RecordingSession {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := make([]RecordingSession, 0)
	for _, c := range clients {
		for _, s := range c.RecordingSessions {
			if s.Status == SessionCancelled || s.Status == SessionCompleted {
				continue
			}
			if s.ScheduledDate.Before(day) {
				continue
			}
			out = append(out, s)
		}
	}
	SortSessions(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Cadence is a recurring recording schedule.
type Cadence string

const (
	CadenceWeekly   Cadence = "weekly"
	CadenceBiweekly Cadence = "biweekly"
	CadenceMonthly  Cadence = "monthly"
)

// CadenceOption describes one of the fixed schedule choices.
type CadenceOption struct {
	Cadence          Cadence `json:"cadence"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	Note             string  `json:"note"`
	HoursPerSession  int     `json:"hours_per_session"`
	SessionsPerMonth int     `json:"sessions_per_month"`
}

// HoursPerMonth is the recording commitment of the option.
func (o CadenceOption) HoursPerMonth() int {
	return o.HoursPerSession * o.SessionsPerMonth
}

// CadenceOptions returns the schedule choices offered during onboarding.
func CadenceOptions() []CadenceOption {
	return []CadenceOption{
		{Cadence: CadenceWeekly, Title: "Weekly Sessions", Description: "1 hour every week", Note: "Recommended for consistent content", HoursPerSession: 1, SessionsPerMonth: 4},
		{Cadence: CadenceBiweekly, Title: "Bi-weekly Sessions", Description: "2 hours twice a month", Note: "Balanced approach", HoursPerSession: 2, SessionsPerMonth: 2},
		{Cadence: CadenceMonthly, Title: "Monthly Sessions", Description: "4 hours once a month", Note: "Intensive content creation", HoursPerSession: 4, SessionsPerMonth: 1},
	}
}

// QualityLevel rates one recording prerequisite.
type QualityLevel string

const (
	QualityExcellent QualityLevel = "excellent"
	QualityGood      QualityLevel = "good"
	QualityFair      QualityLevel = "fair"
	QualityPoor      QualityLevel = "poor"
	QualityUnknown   QualityLevel = "unknown"
)

// QualityCheck is one line of the recording quality checklist.
type QualityCheck struct {
	Key    string       `json:"key"`
	Item   string       `json:"item"`
	Status QualityLevel `json:"status"`
}

// QualityReport is the evaluated checklist.
type QualityReport struct {
	Checks          []QualityCheck `json:"checks"`
	AllSystemsReady bool           `json:"all_systems_ready"`
}

var qualityItems = []struct{ key, item string }{
	{"microphone", "Microphone Connected"},
	{"camera", "Camera Detected"},
	{"internet", "Internet Connection"},
	{"lighting", "Lighting Quality"},
}

// EvaluateQuality builds the checklist from ratings keyed by microphone,
// camera, internet and lighting. Missing or unrecognised ratings count as
// unknown. All systems are ready only when every rating is good or better.
func EvaluateQuality(ratings map[string]QualityLevel) QualityReport {
	report := QualityReport{Checks: make([]QualityCheck, 0, len(qualityItems)), AllSystemsReady: true}
	for _, qi := range qualityItems {
		level := ratings[qi.key]
		switch level {
		case QualityExcellent, QualityGood, QualityFair, QualityPoor:
		default:
			level = QualityUnknown
		}
		if level != QualityExcellent && level != QualityGood {
			report.AllSystemsReady = false
		}
		report.Checks = append(report.Checks, QualityCheck{Key: qi.key, Item: qi.item, Status: level})
	}
	return report
}
