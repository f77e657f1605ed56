package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/attractify/onboarding/internal/domain/client"
)

// ContentTypePDF is the media type of WriteOnboardingReport output
const ContentTypePDF = "application/pdf"

var (
	headerColor    = [3]int{68, 114, 196}
	alternateColor = [3]int{242, 242, 242}
)

// ReportOptions adjusts the onboarding report
type ReportOptions struct {
	Title       string
	Agency      string
	GeneratedAt time.Time
}

// DefaultReportOptions returns the standard report options
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Title:       "Client Onboarding Report",
		Agency:      "Attractify",
		GeneratedAt: time.Now(),
	}
}

// WriteOnboardingReport writes a one-client PDF: contact header, checklist,
// timeline progress and analytics progress. analytics may be nil.
func WriteOnboardingReport(w io.Writer, c *client.Client, analytics *client.AnalyticsSetup, opts ReportOptions) error {
	if c == nil {
		return errors.New("export: client is required")
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetTitle(fmt.Sprintf("%s - %s", opts.Title, c.CompanyName), true)
	pdf.SetAuthor(opts.Agency, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, tr(opts.Title), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, "Generated: "+opts.GeneratedAt.Format("2006-01-02 15:04"), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	section(pdf, tr(c.CompanyName))
	info := [][2]string{
		{"Contact", deref(c.ContactName)},
		{"Email", c.ContactEmail},
		{"Phone", deref(c.ContactPhone)},
		{"Website", deref(c.Website)},
		{"Industry", deref(c.Industry)},
		{"Status", string(c.Status)},
		{"Health score", fmt.Sprintf("%d", c.HealthScoreOrDefault())},
		{"Client since", c.CreatedAt.Format("2006-01-02")},
	}
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, kv := range info {
		if kv[1] == "" {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(35, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	steps := c.OnboardingSteps
	section(pdf, fmt.Sprintf("Onboarding checklist (%d/%d, %d%%)",
		client.CountCompleted(steps), client.OnboardingStepCount, client.OnboardingProgress(steps)))
	if len(steps) == 0 {
		note(pdf, "Onboarding has not started.")
	} else {
		widths := []float64{10, 95, 35, 40}
		tableHeader(pdf, widths, "#", "Step", "Status", "Completed")
		for i, step := range steps {
			tableRow(pdf, widths, i, fmt.Sprintf("%d", step.ID), tr(step.Title), string(step.Status),
				formatTime(step.CompletedAt, "2006-01-02"))
		}
	}
	pdf.Ln(4)

	section(pdf, fmt.Sprintf("3-month timeline (%d%% overall)", client.OverallProgress(c.Timeline)))
	if len(c.Timeline) == 0 {
		note(pdf, "Timeline has not been initialized.")
	} else {
		widths := []float64{20, 100, 35, 25}
		tableHeader(pdf, widths, "Month", "Focus", "Status", "Progress")
		for i, month := range c.Timeline {
			tableRow(pdf, widths, i, fmt.Sprintf("%d", month.Month), tr(month.Title), string(month.Status),
				fmt.Sprintf("%d%%", month.Progress))
		}
	}
	pdf.Ln(4)

	section(pdf, "Analytics setup")
	if analytics == nil {
		note(pdf, "Analytics setup has not started.")
	} else {
		id := analytics.MeasurementID
		if strings.TrimSpace(id) == "" {
			id = "not configured"
		}
		widths := []float64{60, 120}
		tableHeader(pdf, widths, "Item", "Value")
		rows := [][2]string{
			{"GA4 measurement ID", id},
			{"GA4 progress", fmt.Sprintf("%d%%", analytics.GA4Progress())},
			{"GTM progress", fmt.Sprintf("%d%%", analytics.GTMProgress())},
			{"Enhanced measurement", yesNo(analytics.EnhancedMeasurement)},
			{"Cross-domain tracking", yesNo(analytics.CrossDomainTracking)},
		}
		for i, r := range rows {
			tableRow(pdf, widths, i, r[0], r[1])
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.CellFormat(0, 8, title, "B", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.SetTextColor(0, 0, 0)
}

func note(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 6, text, "", 1, "L", false, 0, "")
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, labels ...string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(255, 255, 255)
	for i, label := range labels {
		pdf.CellFormat(widths[i], 7, label, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, index int, values ...string) {
	pdf.SetFont("Arial", "", 10)
	fill := index%2 == 1
	if fill {
		pdf.SetFillColor(alternateColor[0], alternateColor[1], alternateColor[2])
	} else {
		pdf.SetFillColor(255, 255, 255)
	}
	for i, v := range values {
		pdf.CellFormat(widths[i], 6, v, "1", 0, "L", fill, 0, "")
	}
	pdf.Ln(-1)
}
