// Package support provides the static help content of the Support view.
package support

// Priority ranks a support channel.
type Priority string

const (
	PriorityPrimary   Priority = "primary"
	PrioritySecondary Priority = "secondary"
)

// Channel is a way to reach the agency.
type Channel struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Contact      string   `json:"contact"`
	ResponseTime string   `json:"response_time"`
	Availability string   `json:"availability"`
	Priority     Priority `json:"priority"`
}

// Issue is a common problem with its usual fix.
type Issue struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Solution    string `json:"solution"`
	Category    string `json:"category"`
}

// Resource is a help link.
type Resource struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Type        string `json:"type"`
}

// Emergency holds the urgent contact actions.
type Emergency struct {
	Message     string `json:"message"`
	EmailURL    string `json:"email_url"`
	ScheduleURL string `json:"schedule_url"`
}

// HelpLinks are external documentation links referenced by the setup views.
type HelpLinks struct {
	GA4SetupGuide         string `json:"ga4_setup_guide"`
	GTMDocumentation      string `json:"gtm_documentation"`
	RiversideHelp         string `json:"riverside_help"`
	RiversideTroubleshoot string `json:"riverside_troubleshooting"`
}

// Catalog is the full support page content.
type Catalog struct {
	Channels     []Channel  `json:"channels"`
	CommonIssues []Issue    `json:"common_issues"`
	Resources    []Resource `json:"resources"`
	Emergency    Emergency  `json:"emergency"`
	HelpLinks    HelpLinks  `json:"help_links"`
}

const supportEmail = "admin@attractifymarketing.com"

// NewCatalog returns the support content. Each call returns a fresh copy.
func NewCatalog() Catalog {
	return Catalog{
		Channels: []Channel{
			{
				Title:        "Email Support",
				Description:  "Get help via email for technical questions and general inquiries",
				Contact:      supportEmail,
				ResponseTime: "24 hours",
				Availability: "24/7",
				Priority:     PriorityPrimary,
			},
			{
				Title:        "Schedule Changes",
				Description:  "Request changes to recording schedules or meeting times",
				Contact:      supportEmail,
				ResponseTime: "4 hours",
				Availability: "Business hours",
				Priority:     PrioritySecondary,
			},
			{
				Title:        "Live Chat",
				Description:  "Instant support for urgent issues and quick questions",
				Contact:      "Available in portal",
				ResponseTime: "5 minutes",
				Availability: "9 AM - 6 PM EST",
				Priority:     PriorityPrimary,
			},
		},
		CommonIssues: []Issue{
			{
				Title:       "Website Access Issues",
				Description: "Problems logging into client websites or obtaining admin access",
				Solution:    "Contact the client to verify admin credentials and ensure admin@attractifymarketing.com is added as an administrator.",
				Category:    "Access",
			},
			{
				Title:       "Google Analytics Setup",
				Description: "Difficulties configuring GA4 or tracking codes not working",
				Solution:    "Verify tracking code placement in website header and check for conflicts with existing analytics.",
				Category:    "Analytics",
			},
			{
				Title:       "Recording Quality Issues",
				Description: "Audio/video quality problems during Riverside sessions",
				Solution:    "Run quality check before recording, ensure stable internet connection, and verify microphone/camera settings.",
				Category:    "Recording",
			},
			{
				Title:       "Social Media Integration",
				Description: "Problems connecting social media accounts via Admatic.io",
				Solution:    "Ensure client has admin access to social accounts and verify API permissions are granted.",
				Category:    "Integration",
			},
		},
		Resources: []Resource{
			{Title: "Onboarding Guide", Description: "Complete step-by-step onboarding process", URL: "#", Type: "guide"},
			{Title: "Video Tutorials", Description: "Watch how-to videos for common tasks", URL: "#", Type: "video"},
			{Title: "Analytics Setup", Description: "Detailed GA4 and GTM configuration guide", URL: "/analytics", Type: "internal"},
			{Title: "Recording Best Practices", Description: "Tips for high-quality content recording", URL: "https://riverside.fm/blog/recording-best-practices", Type: "external"},
		},
		Emergency: Emergency{
			Message:     "Critical system failures or client emergencies. Available 24/7 for urgent matters.",
			EmailURL:    "mailto:" + supportEmail + "?subject=URGENT%20-%20Emergency%20Support%20Needed",
			ScheduleURL: "https://calendly.com/admin-attractifymarketing/support-call",
		},
		HelpLinks: HelpLinks{
			GA4SetupGuide:         "https://support.google.com/analytics/answer/9304153",
			GTMDocumentation:      "https://support.google.com/tagmanager",
			RiversideHelp:         "https://riverside.fm/help",
			RiversideTroubleshoot: "https://riverside.fm/help/troubleshooting",
		},
	}
}

// IssuesByCategory filters the common issues. An empty category returns all.
func (c Catalog) IssuesByCategory(category string) []Issue {
	if category == "" {
		return c.CommonIssues
	}
	out := make([]Issue, 0, len(c.CommonIssues))
	for _, issue := range c.CommonIssues {
		if issue.Category == category {
			out = append(out, issue)
		}
	}
	return out
}
