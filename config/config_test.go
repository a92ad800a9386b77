package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/config"
	"github.com/warp/leave-engine/generic"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	require.NoError(t, cfg.Validate())

	policy := cfg.QuotaPolicy()
	assert.Equal(t, "12", policy.AnnualPaidDays.String())
	assert.Equal(t, "8", policy.FullDayHours.String())
	assert.Equal(t, generic.PeriodCalendarYear, policy.Period.Type)
}

func TestLoad_OverlaysFile(t *testing.T) {
	// GIVEN: a file setting only some fields
	path := writeConfig(t, `
listen: ":9090"
timezone: "Asia/Tokyo"
database:
  driver: memory
policy:
  annual_paid_days: 15
  fiscal_year_start_month: 4
palette:
  holiday: "#000000"
`)

	// WHEN: loading it
	cfg, err := config.Load(path)
	require.NoError(t, err)

	// THEN: file values win, the rest keep defaults
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "Asia/Tokyo", cfg.Location().String())

	policy := cfg.QuotaPolicy()
	assert.Equal(t, "15", policy.AnnualPaidDays.String())
	assert.Equal(t, generic.PeriodFiscalYear, policy.Period.Type)
	assert.Equal(t, time.April, policy.Period.FiscalYearStartMonth)

	palette := cfg.CalendarPalette()
	assert.Equal(t, "#000000", palette[calendar.MarkHoliday])
	assert.Equal(t, calendar.DefaultPalette()[calendar.MarkBirthday], palette[calendar.MarkBirthday])
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "database:\n  driver: mongo\n"},
		{"postgres without dsn", "database:\n  driver: postgres\n  dsn: \"\"\n"},
		{"bad timezone", "timezone: Mars/Olympus\n"},
		{"bad log level", "log:\n  level: chatty\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"fiscal month out of range", "policy:\n  fiscal_year_start_month: 13\n"},
		{"zero full day", "policy:\n  full_day_hours: 0\n"},
		{"unknown palette key", "palette:\n  vacation: \"#fff\"\n"},
		{"malformed yaml", "listen: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
