package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// StepStatus is the progress state of an onboarding step, timeline entry or
// analytics setup step.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in-progress"
	StepCompleted  StepStatus = "completed"
)

// Valid reports whether s is one of the three known statuses.
func (s StepStatus) Valid() bool {
	switch s {
	case StepPending, StepInProgress, StepCompleted:
		return true
	}
	return false
}

// ParseStepStatus converts raw input into a StepStatus.
func ParseStepStatus(raw string) (StepStatus, error) {
	s := StepStatus(raw)
	if !s.Valid() {
		return "", ErrInvalidStepStatus
	}
	return s, nil
}

// CanTransition reports whether an onboarding step may move from one status
// to another. Steps advance pending → in-progress → completed and may be
// reopened from completed back to in-progress. Setting the current status
// again is allowed and changes nothing.
func CanTransition(from, to StepStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case StepPending:
		return to == StepInProgress
	case StepInProgress:
		return to == StepCompleted
	case StepCompleted:
		return to == StepInProgress
	}
	return false
}

// StepIcon tags the pictogram of an onboarding step. Renderers switch on the
// tag; it is never resolved by name at runtime.
type StepIcon int

const (
	IconCalendar StepIcon = iota + 1
	IconGlobe
	IconShare
	IconVideo
	IconChart
	IconSettings
	IconCheck
)

var iconNames = map[StepIcon]string{
	IconCalendar: "calendar",
	IconGlobe:    "globe",
	IconShare:    "share",
	IconVideo:    "video",
	IconChart:    "chart",
	IconSettings: "settings",
	IconCheck:    "check",
}

// String returns the wire name of the icon.
func (i StepIcon) String() string {
	if name, ok := iconNames[i]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the icon as its wire name.
func (i StepIcon) MarshalText() ([]byte, error) {
	if _, ok := iconNames[i]; !ok {
		return nil, fmt.Errorf("unknown step icon %d", int(i))
	}
	return []byte(i.String()), nil
}

// UnmarshalText decodes a wire name.
func (i *StepIcon) UnmarshalText(text []byte) error {
	icon, err := ParseStepIcon(string(text))
	if err != nil {
		return err
	}
	*i = icon
	return nil
}

// iconAliases maps the pictogram names written by the browser build onto
// the current tags.
var iconAliases = map[string]StepIcon{
	"share2":      IconShare,
	"barchart3":   IconChart,
	"checkcircle": IconCheck,
}

// ParseStepIcon resolves a wire name to its tag. Matching ignores case and
// also accepts the legacy browser names (Share2, BarChart3, CheckCircle).
func ParseStepIcon(name string) (StepIcon, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for icon, n := range iconNames {
		if n == key {
			return icon, nil
		}
	}
	if icon, ok := iconAliases[key]; ok {
		return icon, nil
	}
	return 0, fmt.Errorf("unknown step icon %q", name)
}

// OnboardingStep is one item of the fixed onboarding checklist. Only Status
// and CompletedAt change after instantiation.
type OnboardingStep struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Icon          StepIcon   `json:"icon"`
	EstimatedTime string     `json:"estimated_time"`
	Link          *string    `json:"link,omitempty"`
	Details       string     `json:"details"`
	Status        StepStatus `json:"status"`
	CompletedAt   *time.Time `json:"completed_at"`
}

// UnmarshalJSON reads estimatedTime, the browser build's key, when
// estimated_time is absent.
func (s *OnboardingStep) UnmarshalJSON(data []byte) error {
	type plain OnboardingStep
	var raw struct {
		plain
		LegacyEstimatedTime string `json:"estimatedTime"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = OnboardingStep(raw.plain)
	if s.EstimatedTime == "" {
		s.EstimatedTime = raw.LegacyEstimatedTime
	}
	return nil
}

func (s OnboardingStep) clone() OnboardingStep {
	out := s
	out.Link = cloneString(s.Link)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

// OnboardingStepCount is the size of the fixed catalog.
const OnboardingStepCount = 7

type stepTemplate struct {
	title, description, estimated, link, details string
	icon                                         StepIcon
}

var onboardingCatalog = [OnboardingStepCount]stepTemplate{
	{
		title:       "Schedule Onboarding Call",
		description: "Book initial consultation call with client",
		icon:        IconCalendar,
		estimated:   "5 minutes",
		link:        "https://calendly.com/admin-attractifymarketing/onboarding-call",
		details:     "Use Calendly to schedule the initial onboarding call. This call will cover project scope, timeline, and expectations.",
	},
	{
		title:       "Website Access Setup",
		description: "Obtain administrator access to client website",
		icon:        IconGlobe,
		estimated:   "10 minutes",
		details:     "Request admin access to client website. Email should be admin@attractifymarketing.com. If non-admin access is provided, additional setup guidance will be required.",
	},
	{
		title:       "Social Media Integration",
		description: "Connect Google & social media accounts",
		icon:        IconShare,
		estimated:   "15 minutes",
		link:        "https://app.admatic.io/#/connect/tk88dkkt49",
		details:     "Connect client's Google and social media accounts through Admatic.io. If accounts don't exist, assist with creation during the onboarding call.",
	},
	{
		title:       "Recording Schedule Planning",
		description: "Set up recurring content recording schedule",
		icon:        IconVideo,
		estimated:   "10 minutes",
		details:     "Choose from: 1 hour weekly, 2 hours bi-weekly, or 4 hours monthly. Schedule should be committed to and added to calendar during onboarding call.",
	},
	{
		title:       "Google Analytics 4 Setup",
		description: "Configure GA4 property and tracking",
		icon:        IconChart,
		estimated:   "20 minutes",
		details:     "Create GA4 property, configure data streams, install tracking code, and set up enhanced measurement features.",
	},
	{
		title:       "Google Tag Manager Setup",
		description: "Install and configure GTM container",
		icon:        IconSettings,
		estimated:   "25 minutes",
		details:     "Create GTM container, install tracking codes, configure GA4 tags, and set up conversion tracking.",
	},
	{
		title:       "Final Verification",
		description: "Test all integrations and tracking",
		icon:        IconCheck,
		estimated:   "15 minutes",
		details:     "Verify all tracking codes are working, test data flow, and confirm all integrations are functioning properly.",
	},
}

// DefaultOnboardingSteps returns a fresh copy of the 7-step catalog with
// every step pending.
func DefaultOnboardingSteps() []OnboardingStep {
	steps := make([]OnboardingStep, 0, OnboardingStepCount)
	for i, t := range onboardingCatalog {
		step := OnboardingStep{
			ID:            i + 1,
			Title:         t.title,
			Description:   t.description,
			Icon:          t.icon,
			EstimatedTime: t.estimated,
			Details:       t.details,
			Status:        StepPending,
		}
		if t.link != "" {
			link := t.link
			step.Link = &link
		}
		steps = append(steps, step)
	}
	return steps
}

// EnsureOnboardingSteps instantiates the catalog if the client has no steps.
// It reports whether anything changed.
func (c *Client) EnsureOnboardingSteps() bool {
	if len(c.OnboardingSteps) > 0 {
		return false
	}
	c.OnboardingSteps = DefaultOnboardingSteps()
	return true
}

// Step returns the step with the given id.
func (c *Client) Step(stepID int) (OnboardingStep, bool) {
	for _, s := range c.OnboardingSteps {
		if s.ID == stepID {
			return s, true
		}
	}
	return OnboardingStep{}, false
}

// SetStepStatus sets a step's status. CompletedAt is stamped when the step
// becomes completed and cleared for any other status. Missing steps are
// seeded from the catalog first. Transition rules are not enforced here;
// see CanTransition.
func (c *Client) SetStepStatus(stepID int, status StepStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStepStatus
	}
	c.EnsureOnboardingSteps()
	for i := range c.OnboardingSteps {
		step := &c.OnboardingSteps[i]
		if step.ID != stepID {
			continue
		}
		if status == StepCompleted {
			if step.Status != StepCompleted || step.CompletedAt == nil {
				at := now.UTC()
				step.CompletedAt = &at
			}
		} else {
			step.CompletedAt = nil
		}
		step.Status = status
		c.Touch(now)
		return nil
	}
	return ErrStepNotFound
}

// OnboardingProgress returns round(100 * completed / total), or 0 without steps.
func OnboardingProgress(steps []OnboardingStep) int {
	return Percent(CountCompleted(steps), len(steps))
}

// CountCompleted counts completed steps.
func CountCompleted(steps []OnboardingStep) int {
	n := 0
	for _, s := range steps {
		if s.Status == StepCompleted {
			n++
		}
	}
	return n
}

// PendingSteps returns up to limit pending steps in catalog order. A limit
// of zero or less returns all of them.
func PendingSteps(steps []OnboardingStep, limit int) []OnboardingStep {
	out := make([]OnboardingStep, 0)
	for _, s := range steps {
		if s.Status != StepPending {
			continue
		}
		out = append(out, s)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
