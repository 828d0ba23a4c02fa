// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoO5Gzt1Bf0Z2Q6fQYgHS0GJ0XkM9dG7nK"

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.APIKeys = []string{"admin:" + testHash}
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.Analytics.DefaultTimezoneOffset != 3 {
		t.Errorf("Analytics.DefaultTimezoneOffset = %d, want 3", cfg.Analytics.DefaultTimezoneOffset)
	}
	if cfg.Analytics.BatchSize != 10000 {
		t.Errorf("Analytics.BatchSize = %d, want 10000", cfg.Analytics.BatchSize)
	}
	if cfg.Analytics.Workers != 8 {
		t.Errorf("Analytics.Workers = %d, want 8", cfg.Analytics.Workers)
	}
	if cfg.Database.QueryTimeout != 30*time.Second {
		t.Errorf("Database.QueryTimeout = %v, want 30s", cfg.Database.QueryTimeout)
	}
	if cfg.Ingest.Transport != "gochannel" {
		t.Errorf("Ingest.Transport = %q, want gochannel", cfg.Ingest.Transport)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api keys", func(c *Config) { c.Security.APIKeys = nil }, "API_KEYS is required"},
		{"auth disabled without keys", func(c *Config) { c.Security.APIKeys = nil; c.Security.AuthDisabled = true }, ""},
		{"malformed api key", func(c *Config) { c.Security.APIKeys = []string{"admin"} }, "role:bcrypt-hash"},
		{"unknown role", func(c *Config) { c.Security.APIKeys = []string{"root:" + testHash} }, "unknown role"},
		{"bad max memory", func(c *Config) { c.Database.MaxMemory = "lots" }, "DUCKDB_MAX_MEMORY"},
		{"negative threads", func(c *Config) { c.Database.Threads = -1 }, "DUCKDB_THREADS"},
		{"timezone out of range", func(c *Config) { c.Analytics.DefaultTimezoneOffset = 15 }, "DEFAULT_TIMEZONE_OFFSET"},
		{"zero workers", func(c *Config) { c.Analytics.Workers = 0 }, "TOKENIZE_WORKERS"},
		{"unknown transport", func(c *Config) { c.Ingest.Transport = "kafka" }, "INGEST_TRANSPORT"},
		{"nats without url", func(c *Config) { c.Ingest.Transport = "nats"; c.Ingest.NATSURL = "" }, "NATS_URL"},
		{"nats embedded without url", func(c *Config) {
			c.Ingest.Transport = "nats"
			c.Ingest.NATSURL = ""
			c.Ingest.EmbeddedNATS = true
		}, ""},
		{"ingest disabled skips transport", func(c *Config) { c.Ingest.Enabled = false; c.Ingest.Transport = "kafka" }, ""},
		{"bad cron", func(c *Config) { c.Maintenance.Cron = "every night" }, "MAINTENANCE_CRON"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
		{"in-memory kvstore needs no path", func(c *Config) { c.KVStore.Path = ""; c.KVStore.InMemory = true }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"DUCKDB_PATH":      "database.path",
		"NATS_URL":         "ingest.nats_url",
		"LOG_LEVEL":        "logging.level",
		"MAINTENANCE_CRON": "maintenance.cron",
		"HOME":             "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("EXTRA_STOPWORDS", "lol, brb ,")
	t.Setenv("DUCKDB_QUERY_TIMEOUT", "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.QueryTimeout != 5*time.Second {
		t.Errorf("Database.QueryTimeout = %v, want 5s", cfg.Database.QueryTimeout)
	}
	if len(cfg.Analytics.Stopwords) != 2 || cfg.Analytics.Stopwords[0] != "lol" || cfg.Analytics.Stopwords[1] != "brb" {
		t.Errorf("Analytics.Stopwords = %v, want [lol brb]", cfg.Analytics.Stopwords)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database:
  path: /tmp/test.duckdb
security:
  api_keys:
    - "view:` + testHash + `"
analytics:
  default_timezone_offset: -5
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Path != "/tmp/test.duckdb" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Analytics.DefaultTimezoneOffset != -5 {
		t.Errorf("DefaultTimezoneOffset = %d, want -5", cfg.Analytics.DefaultTimezoneOffset)
	}
	if len(cfg.Security.APIKeys) != 1 || !strings.HasPrefix(cfg.Security.APIKeys[0], "view:") {
		t.Errorf("APIKeys = %v", cfg.Security.APIKeys)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("env should override file: Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}
