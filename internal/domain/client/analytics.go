package client

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// PlaceholderMeasurementID is shown until a real GA4 measurement id is set.
const PlaceholderMeasurementID = "G-XXXXXXXXXX"

var measurementIDRegex = regexp.MustCompile(`^G-[A-Z0-9]{4,}$`)

// SetupStep is one item of the GA4 or GTM setup track.
type SetupStep struct {
	ID     int        `json:"id"`
	Title  string     `json:"title"`
	Status StepStatus `json:"status"`
}

// AnalyticsSetup tracks GA4 and GTM configuration for a client.
type AnalyticsSetup struct {
	ClientID            string      `json:"client_id"`
	WebsiteURL          *string     `json:"website_url"`
	MeasurementID       string      `json:"measurement_id"`
	EnhancedMeasurement bool        `json:"enhanced_measurement"`
	CrossDomainTracking bool        `json:"cross_domain_tracking"`
	GA4Steps            []SetupStep `json:"ga4_steps"`
	GTMSteps            []SetupStep `json:"gtm_steps"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// DefaultGA4Steps returns the GA4 track with every step pending.
func DefaultGA4Steps() []SetupStep {
	return pendingSteps("Create GA4 Property", "Configure Data Stream", "Install Tracking Code", "Verify Data Flow", "Set Up Conversions")
}

// DefaultGTMSteps returns the GTM track with every step pending.
func DefaultGTMSteps() []SetupStep {
	return pendingSteps("Create GTM Container", "Install Container Code", "Configure GA4 Tag", "Test & Publish")
}

func pendingSteps(titles ...string) []SetupStep {
	steps := make([]SetupStep, len(titles))
	for i, t := range titles {
		steps[i] = SetupStep{ID: i + 1, Title: t, Status: StepPending}
	}
	return steps
}

// NewAnalyticsSetup returns a default setup seeded from the client's
// website and GA id.
func NewAnalyticsSetup(c *Client, now time.Time) *AnalyticsSetup {
	measurementID := PlaceholderMeasurementID
	if c.GoogleAnalyticsID != nil && measurementIDRegex.MatchString(*c.GoogleAnalyticsID) {
		measurementID = *c.GoogleAnalyticsID
	}
	return &AnalyticsSetup{
		ClientID:      c.ID,
		WebsiteURL:    cloneString(c.Website),
		MeasurementID: measurementID,
		GA4Steps:      DefaultGA4Steps(),
		GTMSteps:      DefaultGTMSteps(),
		UpdatedAt:     now.UTC(),
	}
}

// ValidateMeasurementID checks the G-XXXXXXXXXX format.
func ValidateMeasurementID(id string) error {
	if !measurementIDRegex.MatchString(strings.TrimSpace(id)) {
		return ErrInvalidMeasurementID
	}
	return nil
}

// HasMeasurementID reports whether a real measurement id is configured.
func (a *AnalyticsSetup) HasMeasurementID() bool {
	return a.MeasurementID != "" && a.MeasurementID != PlaceholderMeasurementID
}

// GA4Progress is the completion percentage of the GA4 track.
func (a *AnalyticsSetup) GA4Progress() int {
	return setupProgress(a.GA4Steps)
}

// GTMProgress is the completion percentage of the GTM track.
func (a *AnalyticsSetup) GTMProgress() int {
	return setupProgress(a.GTMSteps)
}

// GTMUnlocked reports whether GTM steps may change.
func (a *AnalyticsSetup) GTMUnlocked() bool {
	return a.GA4Progress() == 100
}

// Complete reports whether both tracks are done.
func (a *AnalyticsSetup) Complete() bool {
	return a.GA4Progress() == 100 && a.GTMProgress() == 100
}

// SetGA4Step sets the status of a GA4 step.
func (a *AnalyticsSetup) SetGA4Step(stepID int, status StepStatus, now time.Time) error {
	return a.setStep(a.GA4Steps, stepID, status, now)
}

// SetGTMStep sets the status of a GTM step once GA4 is complete.
func (a *AnalyticsSetup) SetGTMStep(stepID int, status StepStatus, now time.Time) error {
	if !a.GTMUnlocked() {
		return ErrGTMLocked
	}
	return a.setStep(a.GTMSteps, stepID, status, now)
}

func (a *AnalyticsSetup) setStep(steps []SetupStep, stepID int, status StepStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStepStatus
	}
	for i := range steps {
		if steps[i].ID == stepID {
			steps[i].Status = status
			a.UpdatedAt = now.UTC()
			return nil
		}
	}
	return ErrSetupStepNotFound
}

// Clone returns a deep copy.
func (a *AnalyticsSetup) Clone() *AnalyticsSetup {
	if a == nil {
		return nil
	}
	out := *a
	out.WebsiteURL = cloneString(a.WebsiteURL)
	out.GA4Steps = append([]SetupStep(nil), a.GA4Steps...)
	out.GTMSteps = append([]SetupStep(nil), a.GTMSteps...)
	return &out
}

func setupProgress(steps []SetupStep) int {
	done := 0
	for _, s := range steps {
		if s.Status == StepCompleted {
			done++
		}
	}
	return Percent(done, len(steps))
}

// TrackingSnippet renders the gtag.js installation snippet.
func TrackingSnippet(measurementID string) string {
	return fmt.Sprintf(`<!-- Google tag (gtag.js) -->
<script async src="https://www.googletagmanager.com/gtag/js?id=%[1]s"></script>
<script>
  window.dataLayer = window.dataLayer || [];
  function gtag(){dataLayer.push(arguments);}
  gtag('js', new Date());
  gtag('config', '%[1]s');
</script>`, measurementID)
}
