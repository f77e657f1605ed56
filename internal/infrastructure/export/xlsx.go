// Package export renders clients as spreadsheets and onboarding reports.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/attractify/onboarding/internal/domain/client"
)

const (
	// ContentTypeXLSX is the media type of WriteClientsXLSX output
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	clientsSheet    = "Clients"
	onboardingSheet = "Onboarding"
	dateFormat      = "yyyy-mm-dd hh:mm"
	minColumnWidth  = 10
	maxColumnWidth  = 50
)

var clientColumns = []string{
	"Company", "Contact", "Email", "Phone", "Website", "Industry", "Status",
	"Health Score", "Onboarding %", "Steps Completed", "GA4 Measurement ID",
	"Analytics Complete", "Created", "Updated",
}

// WriteClientsXLSX writes a workbook with one row per client on the
// Clients sheet and the per-step status grid on the Onboarding sheet.
func WriteClientsXLSX(w io.Writer, clients []client.Client) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", clientsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}

	if err := writeClientsSheet(f, styles, clients); err != nil {
		return err
	}
	if _, err := f.NewSheet(onboardingSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := writeOnboardingSheet(f, styles, clients); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type sheetStyles struct {
	header int
	date   int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create header style: %w", err)
	}
	format := dateFormat
	date, err := f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return sheetStyles{}, fmt.Errorf("failed to create date style: %w", err)
	}
	return sheetStyles{header: header, date: date}, nil
}

func writeHeader(f *excelize.File, sheet string, style int, columns []string) error {
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeClientsSheet(f *excelize.File, styles sheetStyles, clients []client.Client) error {
	if err := writeHeader(f, clientsSheet, styles.header, clientColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	widths := make([]float64, len(clientColumns))
	for i, col := range clientColumns {
		widths[i] = float64(len(col)) + 2
	}

	for i := range clients {
		c := &clients[i]
		row := []any{
			c.CompanyName,
			deref(c.ContactName),
			c.ContactEmail,
			deref(c.ContactPhone),
			deref(c.Website),
			deref(c.Industry),
			string(c.Status),
			c.HealthScoreOrDefault(),
			client.OnboardingProgress(c.OnboardingSteps),
			client.CountCompleted(c.OnboardingSteps),
			deref(c.GoogleAnalyticsID),
			yesNo(c.AnalyticsSetupComplete),
			c.CreatedAt,
			c.UpdatedAt,
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(clientsSheet, start, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
		for col, v := range row {
			if s, ok := v.(string); ok && float64(len(s))+2 > widths[col] {
				widths[col] = float64(len(s)) + 2
			}
		}
	}

	if len(clients) > 0 {
		first, _ := excelize.CoordinatesToCellName(len(clientColumns)-1, 2)
		last, _ := excelize.CoordinatesToCellName(len(clientColumns), len(clients)+1)
		if err := f.SetCellStyle(clientsSheet, first, last, styles.date); err != nil {
			return err
		}
		lastHeader, _ := excelize.CoordinatesToCellName(len(clientColumns), 1)
		if err := f.AutoFilter(clientsSheet, "A1:"+lastHeader, nil); err != nil {
			return fmt.Errorf("auto filter: %w", err)
		}
	}
	widths[len(widths)-1] = 18
	widths[len(widths)-2] = 18
	return setWidths(f, clientsSheet, widths)
}

func writeOnboardingSheet(f *excelize.File, styles sheetStyles, clients []client.Client) error {
	catalog := client.DefaultOnboardingSteps()
	columns := make([]string, 0, len(catalog)+1)
	columns = append(columns, "Company")
	for _, step := range catalog {
		columns = append(columns, step.Title)
	}
	if err := writeHeader(f, onboardingSheet, styles.header, columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := range clients {
		c := &clients[i]
		row := make([]any, len(columns))
		row[0] = c.CompanyName
		for j, tmpl := range catalog {
			status := "not started"
			if step, ok := c.Step(tmpl.ID); ok {
				status = string(step.Status)
			}
			row[j+1] = status
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(onboardingSheet, start, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	widths := make([]float64, len(columns))
	for i, col := range columns {
		widths[i] = float64(len(col)) + 2
	}
	return setWidths(f, onboardingSheet, widths)
}

func setWidths(f *excelize.File, sheet string, widths []float64) error {
	for i, width := range widths {
		if width < minColumnWidth {
			width = minColumnWidth
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time, layout string) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format(layout)
}
