/*
config.go - YAML configuration for the leave engine server

PURPOSE:
  One file configures the server: where it listens, which timezone decides
  "today", which storage backend holds leave records, how it logs, the
  paid-time-off policy, calendar colors and allowed CORS origins.

  A missing file is not an error: Load returns Default(). Fields left out of
  the file keep their default values.

EXAMPLE FILE:
  listen: ":8080"
  timezone: "Europe/Paris"
  database:
    driver: sqlite          # memory | sqlite | postgres
    dsn: "leave.db"
  log:
    level: info
    format: json            # json | console
  policy:
    annual_paid_days: 12
    full_day_hours: 8
    fiscal_year_start_month: 1
  palette:
    holiday: "#c62828"
  cors:
    allowed_origins: ["http://localhost:5173"]

SEE ALSO:
  - cmd/server/main.go: flag overrides
  - timeoff/policies.go: QuotaPolicy
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/calendar"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite (":memory:" allowed) and a connection
	// URL for postgres. Ignored by the memory driver.
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PolicyConfig struct {
	AnnualPaidDays       float64 `yaml:"annual_paid_days"`
	FullDayHours         float64 `yaml:"full_day_hours"`
	FiscalYearStartMonth int     `yaml:"fiscal_year_start_month"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Config is the top-level server configuration.
type Config struct {
	Listen   string            `yaml:"listen"`
	Timezone string            `yaml:"timezone"`
	Database DatabaseConfig    `yaml:"database"`
	Log      LogConfig         `yaml:"log"`
	Policy   PolicyConfig      `yaml:"policy"`
	Palette  map[string]string `yaml:"palette"`
	CORS     CORSConfig        `yaml:"cors"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Listen:   ":8080",
		Timezone: "UTC",
		Database: DatabaseConfig{Driver: DriverSQLite, DSN: "leave.db"},
		Log:      LogConfig{Level: "info", Format: "json"},
		Policy: PolicyConfig{
			AnnualPaidDays:       timeoff.DefaultAnnualPaidDays,
			FullDayHours:         timeoff.FullDayHours,
			FiscalYearStartMonth: 1,
		},
		Palette: map[string]string{},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
	}
}

// Load reads path on top of Default(). A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen must not be empty"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", c.Timezone, err))
	}

	switch c.Database.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Errorf("log.format must be json or console, got %q", c.Log.Format))
	}

	if c.Policy.FiscalYearStartMonth < 1 || c.Policy.FiscalYearStartMonth > 12 {
		errs = append(errs, fmt.Errorf("policy.fiscal_year_start_month must be 1-12, got %d", c.Policy.FiscalYearStartMonth))
	}
	if err := c.QuotaPolicy().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}

	for name := range c.Palette {
		if !slices.Contains(calendar.Categories, calendar.MarkCategory(name)) {
			errs = append(errs, fmt.Errorf("palette: unknown category %q", name))
		}
	}

	return errors.Join(errs...)
}

// Location returns the configured timezone, UTC if it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// QuotaPolicy converts the policy section.
func (c *Config) QuotaPolicy() timeoff.QuotaPolicy {
	p := timeoff.QuotaPolicy{
		AnnualPaidDays: decimal.NewFromFloat(c.Policy.AnnualPaidDays),
		FullDayHours:   decimal.NewFromFloat(c.Policy.FullDayHours),
		Period:         generic.PeriodConfig{Type: generic.PeriodCalendarYear},
	}
	if c.Policy.FiscalYearStartMonth > 1 {
		p.Period = generic.PeriodConfig{
			Type:                 generic.PeriodFiscalYear,
			FiscalYearStartMonth: time.Month(c.Policy.FiscalYearStartMonth),
		}
	}
	return p
}

// CalendarPalette overlays configured colors on the default palette.
func (c *Config) CalendarPalette() calendar.Palette {
	p := calendar.DefaultPalette()
	for name, color := range c.Palette {
		p[calendar.MarkCategory(name)] = color
	}
	return p
}

