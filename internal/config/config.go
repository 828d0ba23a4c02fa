// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

// Package config loads guildstats configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence (env wins).
//
// Configuration sources:
//   - Built-in defaults (defaultConfig)
//   - YAML file from CONFIG_PATH or DefaultConfigPaths
//   - Environment variables listed in envMappings
//   - A .env file in the working directory, loaded into the environment first
package config

import "time"

// Config is the root configuration.
type Config struct {
	Database    DatabaseConfig    `koanf:"database"`
	KVStore     KVStoreConfig     `koanf:"kvstore"`
	Server      ServerConfig      `koanf:"server"`
	Security    SecurityConfig    `koanf:"security"`
	Analytics   AnalyticsConfig   `koanf:"analytics"`
	Ingest      IngestConfig      `koanf:"ingest"`
	Maintenance MaintenanceConfig `koanf:"maintenance"`
	Logging     LoggingConfig     `koanf:"logging"`
	Supervisor  SupervisorConfig  `koanf:"supervisor"`
}

// DatabaseConfig configures the DuckDB message store.
type DatabaseConfig struct {
	Path                   string        `koanf:"path"`
	MaxMemory              string        `koanf:"max_memory"` // DuckDB size string, e.g. "1GB"
	Threads                int           `koanf:"threads"`    // 0 = runtime.NumCPU()
	PreserveInsertionOrder bool          `koanf:"preserve_insertion_order"`
	QueryTimeout           time.Duration `koanf:"query_timeout"` // applied when a caller passes no deadline
}

// KVStoreConfig configures the badger store holding aliases, ignores and
// guild settings.
type KVStoreConfig struct {
	Path           string  `koanf:"path"`
	InMemory       bool    `koanf:"in_memory"`
	SyncWrites     bool    `koanf:"sync_writes"`
	GCDiscardRatio float64 `koanf:"gc_discard_ratio"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Compression     bool          `koanf:"compression"` // gzip responses
}

// SecurityConfig configures API key auth, CORS and rate limiting.
//
// APIKeys entries have the form "role:bcrypt-hash" where role is view, edit
// or admin.
type SecurityConfig struct {
	APIKeys           []string      `koanf:"api_keys"`
	AuthDisabled      bool          `koanf:"auth_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// AnalyticsConfig tunes the analytics engine.
type AnalyticsConfig struct {
	DefaultTimezoneOffset int      `koanf:"default_timezone_offset"` // hours from UTC
	BatchSize             int      `koanf:"batch_size"`              // messages per tokenization batch
	Workers               int      `koanf:"workers"`                 // tokenization pool size
	Stopwords             []string `koanf:"stopwords"`               // extra stopwords for every guild
}

// IngestConfig configures the watermill ingestion router.
type IngestConfig struct {
	Enabled              bool          `koanf:"enabled"`
	Transport            string        `koanf:"transport"` // gochannel or nats
	NATSURL              string        `koanf:"nats_url"`
	EmbeddedNATS         bool          `koanf:"embedded_nats"`
	EmbeddedNATSHost     string        `koanf:"embedded_nats_host"`
	EmbeddedNATSPort     int           `koanf:"embedded_nats_port"`
	TopicPrefix          string        `koanf:"topic_prefix"`
	QueueGroup           string        `koanf:"queue_group"`
	SubscribersCount     int           `koanf:"subscribers_count"`
	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
	DedupCapacity        int           `koanf:"dedup_capacity"`
	DedupTTL             time.Duration `koanf:"dedup_ttl"`
	BreakerFailures      uint32        `koanf:"breaker_failures"`
	BreakerTimeout       time.Duration `koanf:"breaker_timeout"`
}

// MaintenanceConfig schedules DuckDB checkpoints and badger value log GC.
type MaintenanceConfig struct {
	Enabled bool   `koanf:"enabled"`
	Cron    string `koanf:"cron"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig mirrors supervisor.TreeConfig.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}
