package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.FamilyID = "fam-1"
	cfg.GuardianID = "g-dad"
	cfg.Timezone = "UTC"
	if err := SaveConfig(dir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.FamilyID != "fam-1" || loaded.GuardianID != "g-dad" || loaded.Timezone != "UTC" {
		t.Errorf("loaded = %+v", loaded)
	}
	if loaded.Version != CurrentVersion {
		t.Errorf("Version = %q, want %q", loaded.Version, CurrentVersion)
	}
}

func TestLoadConfig_MergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".custody"), 0755); err != nil {
		t.Fatal(err)
	}
	data := "family_id: fam-9\ntick_interval: 30s\n"
	if err := os.WriteFile(Path(dir), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.FamilyID != "fam-9" {
		t.Errorf("FamilyID = %q", cfg.FamilyID)
	}
	if tick, _ := cfg.Tick(); tick != 30*time.Second {
		t.Errorf("Tick = %s, want 30s", tick)
	}
	if past, future := cfg.EventWindow(); past != 7*24*time.Hour || future != 90*24*time.Hour {
		t.Errorf("EventWindow = %s, %s; want defaults", past, future)
	}
	if loc, _ := cfg.Location(); loc != time.Local {
		t.Errorf("Location = %v, want Local", loc)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("expected error for missing config")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"named zone", func(c *Config) { c.Timezone = "UTC" }, false},
		{"bad zone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"bad tick", func(c *Config) { c.TickInterval = "often" }, true},
		{"zero tick", func(c *Config) { c.TickInterval = "0s" }, true},
		{"negative window", func(c *Config) { c.EventWindowPastDays = -1 }, true},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	level, err := cfg.SlogLevel()
	if err != nil || level != slog.LevelDebug {
		t.Errorf("SlogLevel() = %v, %v; want debug", level, err)
	}
}
