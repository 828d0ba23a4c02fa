// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

// Package database implements the guild-partitioned message store on DuckDB.
//
// All guilds share one messages table keyed by (guild_id, message_id). Guild
// lifecycle is managed by an explicit partition registry (partitions table
// plus an in-memory map) instead of per-guild tables, and every write to a
// guild is serialized on that guild's partition lock. Reads never take the
// partition lock and observe read-committed state.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/logging"
)

// DB is the DuckDB-backed message store.
type DB struct {
	conn       *sql.DB
	cfg        *config.DatabaseConfig
	partitions *partitionRegistry
	timeout    time.Duration
}

// New opens (or creates) the DuckDB file at cfg.Path, ensures the schema and
// loads the partition registry.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}

	if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	preserveOrder := "false"
	if cfg.PreserveInsertionOrder {
		preserveOrder = "true"
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&preserve_insertion_order=%s",
		cfg.Path, threads, maxMemory, preserveOrder)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	db := &DB{
		conn:       conn,
		cfg:        cfg,
		partitions: newPartitionRegistry(),
		timeout:    timeout,
	}

	if err := db.initialize(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", threads).
		Str("max_memory", maxMemory).
		Int("partitions", db.partitions.len()).
		Msg("Message store opened")

	return db, nil
}

func (db *DB) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), db.timeout)
	defer cancel()

	if err := db.createTables(ctx); err != nil {
		return err
	}
	return db.loadPartitions(ctx)
}

func (db *DB) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS partitions (
			guild_id BIGINT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			guild_id BIGINT NOT NULL,
			message_id BIGINT NOT NULL,
			channel_id BIGINT NOT NULL,
			author_id BIGINT NOT NULL,
			aliased_author_id BIGINT NOT NULL,
			content VARCHAR,
			epoch BIGINT NOT NULL,
			is_bot BOOLEAN NOT NULL DEFAULT false,
			has_embed BOOLEAN NOT NULL DEFAULT false,
			num_attachments INTEGER NOT NULL DEFAULT 0,
			ctx_id BIGINT,
			mentions VARCHAR,
			PRIMARY KEY (guild_id, message_id)
		)`,
	}
	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Close checkpoints the WAL and closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()
	return db.conn.Close()
}

// Ping checks that the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}
