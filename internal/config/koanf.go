// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/guildstats/config.yaml",
	"/etc/guildstats/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:                   "/data/guildstats.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: false,
			QueryTimeout:           30 * time.Second,
		},
		KVStore: KVStoreConfig{
			Path:           "/data/guildconfig",
			InMemory:       false,
			SyncWrites:     true,
			GCDiscardRatio: 0.5,
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			APIKeys:         []string{},
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Analytics: AnalyticsConfig{
			DefaultTimezoneOffset: 3,
			BatchSize:             10000,
			Workers:               8,
			Stopwords:             []string{},
		},
		Ingest: IngestConfig{
			Enabled:              true,
			Transport:            "gochannel",
			NATSURL:              "nats://127.0.0.1:4222",
			EmbeddedNATS:         false,
			EmbeddedNATSHost:     "127.0.0.1",
			EmbeddedNATSPort:     4222,
			TopicPrefix:          "guildstats",
			QueueGroup:           "guildstats-ingest",
			SubscribersCount:     4,
			RetryMaxRetries:      3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         30 * time.Second,
			DedupCapacity:        10000,
			DedupTTL:             5 * time.Minute,
			BreakerFailures:      5,
			BreakerTimeout:       30 * time.Second,
		},
		Maintenance: MaintenanceConfig{
			Enabled: true,
			Cron:    "0 3 * * *",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, the optional config file and
// environment variables, then validates it.
func Load() (*Config, error) {
	// A missing .env is the normal case in containers.
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings from env.
var sliceConfigPaths = []string{
	"security.api_keys",
	"security.cors_origins",
	"analytics.stopwords",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		raw, ok := k.Get(path).(string)
		if !ok || raw == "" {
			continue
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"duckdb_path":              "database.path",
	"duckdb_max_memory":        "database.max_memory",
	"duckdb_threads":           "database.threads",
	"duckdb_query_timeout":     "database.query_timeout",
	"kvstore_path":             "kvstore.path",
	"kvstore_in_memory":        "kvstore.in_memory",
	"kvstore_sync_writes":      "kvstore.sync_writes",
	"kvstore_gc_discard_ratio": "kvstore.gc_discard_ratio",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_compression":      "server.compression",

	"api_keys":            "security.api_keys",
	"auth_disabled":       "security.auth_disabled",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"default_timezone_offset": "analytics.default_timezone_offset",
	"tokenize_batch_size":     "analytics.batch_size",
	"tokenize_workers":        "analytics.workers",
	"extra_stopwords":         "analytics.stopwords",

	"ingest_enabled":             "ingest.enabled",
	"ingest_transport":           "ingest.transport",
	"nats_url":                   "ingest.nats_url",
	"nats_embedded":              "ingest.embedded_nats",
	"nats_embedded_host":         "ingest.embedded_nats_host",
	"nats_embedded_port":         "ingest.embedded_nats_port",
	"ingest_topic_prefix":        "ingest.topic_prefix",
	"ingest_queue_group":         "ingest.queue_group",
	"ingest_subscribers":         "ingest.subscribers_count",
	"ingest_retry_max":           "ingest.retry_max_retries",
	"ingest_retry_interval":      "ingest.retry_initial_interval",
	"ingest_dedup_ttl":           "ingest.dedup_ttl",
	"ingest_breaker_failures":    "ingest.breaker_failures",
	"ingest_breaker_timeout":     "ingest.breaker_timeout",
	"maintenance_enabled":        "maintenance.enabled",
	"maintenance_cron":           "maintenance.cron",
	"log_level":                  "logging.level",
	"log_format":                 "logging.format",
	"log_caller":                 "logging.caller",
	"supervisor_failure_backoff": "supervisor.failure_backoff",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped variables return "" and are skipped.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
