package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/attractify/onboarding/internal/domain/client"
)

var t0 = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func sampleClients(t *testing.T) []client.Client {
	t.Helper()
	acme := client.NewClient("c1", client.Fields{
		CompanyName:  "Acme",
		ContactEmail: "a@acme.com",
		ContactName:  strPtr("Jess Doe"),
		Status:       client.StatusOnboarding,
	}, t0)
	acme.EnsureOnboardingSteps()
	require.NoError(t, acme.SetStepStatus(1, client.StepInProgress, t0))
	require.NoError(t, acme.SetStepStatus(1, client.StepCompleted, t0))
	acme.EnsureTimeline()

	beta := client.NewClient("c2", client.Fields{CompanyName: "Beta", ContactEmail: "b@beta.io"}, t0)
	return []client.Client{*acme, *beta}
}

func TestWriteClientsXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClientsXLSX(&buf, sampleClients(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{clientsSheet, onboardingSheet}, f.GetSheetList())

	rows, err := f.GetRows(clientsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, clientColumns, rows[0])
	assert.Equal(t, "Acme", rows[1][0])
	assert.Equal(t, "Jess Doe", rows[1][1])
	assert.Equal(t, "onboarding", rows[1][6])
	assert.Equal(t, "75", rows[1][7])
	assert.Equal(t, "14", rows[1][8], "1 of 7 steps")
	assert.Equal(t, "1", rows[1][9])
	assert.Equal(t, "No", rows[1][11])
	assert.Contains(t, rows[1][12], "2026-06-15")
	assert.Equal(t, "Beta", rows[2][0])
	assert.Equal(t, "", rows[2][1])

	grid, err := f.GetRows(onboardingSheet)
	require.NoError(t, err)
	require.Len(t, grid, 3)
	assert.Len(t, grid[0], client.OnboardingStepCount+1)
	assert.Equal(t, "completed", grid[1][1])
	assert.Equal(t, "pending", grid[1][2])
	assert.Equal(t, "not started", grid[2][1])
}

func TestWriteClientsXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClientsXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(clientsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestWriteOnboardingReport(t *testing.T) {
	clients := sampleClients(t)
	setup := client.NewAnalyticsSetup(&clients[0], t0)
	setup.MeasurementID = "G-ABCD123456"

	opts := DefaultReportOptions()
	opts.GeneratedAt = t0

	t.Run("full report", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteOnboardingReport(&buf, &clients[0], setup, opts))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		assert.Greater(t, buf.Len(), 1000)
	})

	t.Run("client without onboarding data", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteOnboardingReport(&buf, &clients[1], nil, ReportOptions{Title: "Report"}))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	})

	t.Run("nil client", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, WriteOnboardingReport(&buf, nil, nil, opts))
		assert.Zero(t, buf.Len())
	})
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(nil, "2006-01-02"))
	assert.Equal(t, "-", formatTime(&time.Time{}, "2006-01-02"))
	assert.Equal(t, "2026-06-15", formatTime(&t0, "2006-01-02"))
}
