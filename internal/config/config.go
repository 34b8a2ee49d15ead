// Package config loads the per-directory custody configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is the config file format version written by SaveConfig.
const CurrentVersion = "1"

// Config represents the custody configuration for one working directory:
// which family and guardian the CLI acts as, and how the dashboard runs.
type Config struct {
	Version    string `yaml:"version"`
	DBPath     string `yaml:"db_path,omitempty"`
	FamilyID   string `yaml:"family_id,omitempty"`
	GuardianID string `yaml:"guardian_id,omitempty"`

	// Timezone is an IANA zone name or "Local".
	Timezone string `yaml:"timezone"`

	// TickInterval is how often `custody watch` re-evaluates, e.g. "1m".
	TickInterval string `yaml:"tick_interval"`

	// The event window loaded into each snapshot, relative to now.
	EventWindowPastDays   int `yaml:"event_window_past_days"`
	EventWindowFutureDays int `yaml:"event_window_future_days"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file exists. Loaded
// files are merged over it.
func Default() *Config {
	return &Config{
		Version:               CurrentVersion,
		Timezone:              "Local",
		TickInterval:          "1m",
		EventWindowPastDays:   7,
		EventWindowFutureDays: 90,
		LogLevel:              "warn",
	}
}

// Path returns the config file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, ".custody", "config.yaml")
}

// LoadConfig reads .custody/config.yaml from the specified directory.
// Resolution order: dir only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", Path(dir), err)
	}
	return cfg, nil
}

// SaveConfig writes config.yaml to directory
func SaveConfig(dir string, cfg *Config) error {
	custodyDir := filepath.Join(dir, ".custody")
	if err := os.MkdirAll(custodyDir, 0755); err != nil {
		return fmt.Errorf("failed to create .custody dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks that every field parses.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Tick(); err != nil {
		return err
	}
	if c.EventWindowPastDays < 0 || c.EventWindowFutureDays < 0 {
		return fmt.Errorf("event window days must not be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Location returns the family's time zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Tick returns the watcher interval.
func (c *Config) Tick() (time.Duration, error) {
	if c.TickInterval == "" {
		return time.Minute, nil
	}
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid tick_interval %q: %w", c.TickInterval, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tick_interval must be positive, got %s", d)
	}
	return d, nil
}

// EventWindow returns how far back and ahead snapshots load events.
func (c *Config) EventWindow() (past, future time.Duration) {
	day := 24 * time.Hour
	return time.Duration(c.EventWindowPastDays) * day, time.Duration(c.EventWindowFutureDays) * day
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
