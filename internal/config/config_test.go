package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/newthinker/tradelab/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func TestLoad_FromFile(t *testing.T) {
	cfgPath := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
  read_timeout: 5s

storage:
  driver: postgres
  dsn: "postgres://localhost:5432/tradelab"

strategy:
  short_window: 10
  long_window: 50

archive:
  type: localfs
  path: "/tmp/tradelab/archive"
  schedule: "@daily"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.Storage.Driver)
	}
	if cfg.Strategy.LongWindow != 50 {
		t.Errorf("expected long window 50, got %d", cfg.Strategy.LongWindow)
	}
	if cfg.Archive.Type != "localfs" {
		t.Errorf("expected localfs, got %s", cfg.Archive.Type)
	}

	// Keys absent from the file keep their defaults
	if cfg.Strategy.MaxPoints != 10000 {
		t.Errorf("expected default max_points, got %d", cfg.Strategy.MaxPoints)
	}
	if cfg.Server.WriteTimeout != 60*time.Second {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TRADELAB_SERVER_PORT", "9100")
	t.Setenv("TRADELAB_STORAGE_DRIVER", "memory")
	t.Setenv("TRADELAB_TEST_S3_SECRET", "s3cr3t")

	cfgPath := writeConfig(t, `
archive:
  type: s3
  s3:
    bucket: snapshots
    secret_key: "${TRADELAB_TEST_S3_SECRET}"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("expected port from env, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("expected driver from env, got %s", cfg.Storage.Driver)
	}
	if cfg.Archive.S3.SecretKey != "s3cr3t" {
		t.Errorf("expected expanded secret, got %q", cfg.Archive.S3.SecretKey)
	}
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Strategy.ShortWindow != 5 || cfg.Strategy.LongWindow != 20 {
		t.Errorf("expected default windows 5/20, got %d/%d", cfg.Strategy.ShortWindow, cfg.Strategy.LongWindow)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr *core.Error
	}{
		{"valid config", func(*Config) {}, nil},
		{"invalid port - zero", func(c *Config) { c.Server.Port = 0 }, core.ErrConfigInvalid},
		{"invalid port - too high", func(c *Config) { c.Server.Port = 70000 }, core.ErrConfigInvalid},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mysql" }, core.ErrConfigInvalid},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres"; c.Storage.DSN = "" }, core.ErrConfigMissing},
		{"memory without dsn", func(c *Config) { c.Storage.Driver = "memory"; c.Storage.DSN = "" }, nil},
		{"zero window", func(c *Config) { c.Strategy.ShortWindow = 0 }, core.ErrConfigInvalid},
		{"zero max points", func(c *Config) { c.Strategy.MaxPoints = 0 }, core.ErrConfigInvalid},
		{"schedule without archive", func(c *Config) { c.Archive.Schedule = "@daily" }, core.ErrConfigInvalid},
		{"localfs without path", func(c *Config) { c.Archive.Type = "localfs" }, core.ErrConfigMissing},
		{"s3 without bucket", func(c *Config) { c.Archive.Type = "s3" }, core.ErrConfigMissing},
		{"unknown archive", func(c *Config) { c.Archive.Type = "gcs" }, core.ErrConfigInvalid},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, core.ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_StrategyParams(t *testing.T) {
	cfg := Defaults()
	cfg.Strategy.Params = map[string]any{"extra": "x", "short_window": 99}

	params := cfg.StrategyParams()
	if params["short_window"] != 5 {
		t.Errorf("configured window should win, got %v", params["short_window"])
	}
	if params["extra"] != "x" {
		t.Errorf("expected extra param to be kept")
	}
}
