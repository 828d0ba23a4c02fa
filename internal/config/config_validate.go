// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package config

import (
	"fmt"
	"strings"

	"github.com/adhocore/gronx"
	"github.com/dustin/go-humanize"
)

// API key roles, lowest privilege first.
var validRoles = map[string]bool{"view": true, "edit": true, "admin": true}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateKVStore(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAnalytics(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateMaintenance(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.MaxMemory != "" {
		if _, err := humanize.ParseBytes(c.Database.MaxMemory); err != nil {
			return fmt.Errorf("DUCKDB_MAX_MEMORY %q is not a valid size: %w", c.Database.MaxMemory, err)
		}
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DUCKDB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateKVStore() error {
	if !c.KVStore.InMemory && c.KVStore.Path == "" {
		return fmt.Errorf("KVSTORE_PATH is required unless KVSTORE_IN_MEMORY=true")
	}
	if c.KVStore.GCDiscardRatio <= 0 || c.KVStore.GCDiscardRatio >= 1 {
		return fmt.Errorf("KVSTORE_GC_DISCARD_RATIO must be between 0 and 1 exclusive, got %v", c.KVStore.GCDiscardRatio)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.AuthDisabled && len(c.Security.APIKeys) == 0 {
		return fmt.Errorf("API_KEYS is required unless AUTH_DISABLED=true")
	}
	for i, entry := range c.Security.APIKeys {
		role, hash, ok := strings.Cut(entry, ":")
		if !ok || hash == "" {
			return fmt.Errorf("API_KEYS entry %d must have the form role:bcrypt-hash", i)
		}
		if !validRoles[role] {
			return fmt.Errorf("API_KEYS entry %d has unknown role %q (want view, edit or admin)", i, role)
		}
	}
	if !c.Security.RateLimitDisabled && c.Security.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	return nil
}

func (c *Config) validateAnalytics() error {
	if off := c.Analytics.DefaultTimezoneOffset; off < -12 || off > 14 {
		return fmt.Errorf("DEFAULT_TIMEZONE_OFFSET must be between -12 and 14, got %d", off)
	}
	if c.Analytics.BatchSize <= 0 {
		return fmt.Errorf("TOKENIZE_BATCH_SIZE must be positive")
	}
	if c.Analytics.Workers <= 0 {
		return fmt.Errorf("TOKENIZE_WORKERS must be positive")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if !c.Ingest.Enabled {
		return nil
	}
	switch c.Ingest.Transport {
	case "gochannel":
	case "nats":
		if c.Ingest.NATSURL == "" && !c.Ingest.EmbeddedNATS {
			return fmt.Errorf("NATS_URL is required for the nats transport unless NATS_EMBEDDED=true")
		}
	default:
		return fmt.Errorf("INGEST_TRANSPORT must be gochannel or nats, got %q", c.Ingest.Transport)
	}
	if c.Ingest.TopicPrefix == "" {
		return fmt.Errorf("INGEST_TOPIC_PREFIX is required")
	}
	if c.Ingest.SubscribersCount <= 0 {
		return fmt.Errorf("INGEST_SUBSCRIBERS must be positive")
	}
	return nil
}

func (c *Config) validateMaintenance() error {
	if !c.Maintenance.Enabled {
		return nil
	}
	if !gronx.IsValid(c.Maintenance.Cron) {
		return fmt.Errorf("MAINTENANCE_CRON %q is not a valid cron expression", c.Maintenance.Cron)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled":
		return nil
	}
	return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
}
