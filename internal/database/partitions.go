// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/metrics"
	"github.com/tomtom215/guildstats/internal/models"
)

// partition is the handle for one guild's slice of the messages table.
// mu serializes writes to the guild; dropped is set under mu when the
// partition is removed so writers holding a stale handle fail with NotFound.
type partition struct {
	guildID   int64
	createdAt time.Time
	mu        sync.Mutex
	dropped   bool
}

type partitionRegistry struct {
	mu      sync.RWMutex
	byGuild map[int64]*partition
}

func newPartitionRegistry() *partitionRegistry {
	return &partitionRegistry{byGuild: make(map[int64]*partition)}
}

func (r *partitionRegistry) get(guildID int64) (*partition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byGuild[guildID]
	return p, ok
}

func (r *partitionRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byGuild)
}

func (db *DB) loadPartitions(ctx context.Context) error {
	rows, err := db.conn.QueryContext(ctx, "SELECT guild_id, created_at FROM partitions")
	if err != nil {
		return fmt.Errorf("failed to load partitions: %w", err)
	}
	defer closeWithLog(rows, "partition rows")

	db.partitions.mu.Lock()
	defer db.partitions.mu.Unlock()
	for rows.Next() {
		p := &partition{}
		if err := rows.Scan(&p.guildID, &p.createdAt); err != nil {
			return fmt.Errorf("failed to scan partition: %w", err)
		}
		db.partitions.byGuild[p.guildID] = p
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate partitions: %w", err)
	}
	metrics.SetPartitions(len(db.partitions.byGuild))
	return nil
}

// CreatePartition registers guildID. It is a no-op when the partition
// already exists.
func (db *DB) CreatePartition(ctx context.Context, guildID int64) error {
	_, err := db.createPartition(ctx, guildID)
	return err
}

// CreatePartitionStrict registers guildID and fails with
// models.ErrAlreadyExists when it is already present.
func (db *DB) CreatePartitionStrict(ctx context.Context, guildID int64) error {
	created, err := db.createPartition(ctx, guildID)
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%w: guild %d", models.ErrAlreadyExists, guildID)
	}
	return nil
}

func (db *DB) createPartition(ctx context.Context, guildID int64) (bool, error) {
	if guildID == 0 {
		return false, fmt.Errorf("%w: guild id is required", models.ErrInvalidArgument)
	}
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.partitions.mu.Lock()
	defer db.partitions.mu.Unlock()

	if _, ok := db.partitions.byGuild[guildID]; ok {
		return false, nil
	}

	start := time.Now()
	now := time.Now().UTC()
	_, err := db.conn.ExecContext(ctx,
		"INSERT INTO partitions (guild_id, created_at) VALUES (?, ?) ON CONFLICT DO NOTHING",
		guildID, now)
	observe("create_partition", start, err)
	if err != nil {
		return false, internalErr("create partition", err)
	}

	db.partitions.byGuild[guildID] = &partition{guildID: guildID, createdAt: now}
	metrics.SetPartitions(len(db.partitions.byGuild))
	logging.Info().Int64("guild_id", guildID).Msg("Partition created")
	return true, nil
}

// DropPartition deletes every message of guildID and unregisters it in one
// transaction. Alias, ignore and config rows are left untouched.
func (db *DB) DropPartition(ctx context.Context, guildID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	db.partitions.mu.Lock()
	defer db.partitions.mu.Unlock()

	p, ok := db.partitions.byGuild[guildID]
	if !ok {
		return fmt.Errorf("%w: guild %d", models.ErrNotFound, guildID)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	removed, err := db.dropPartitionTx(ctx, guildID)
	observe("drop_partition", start, err)
	if err != nil {
		return err
	}

	p.dropped = true
	delete(db.partitions.byGuild, guildID)
	metrics.SetPartitions(len(db.partitions.byGuild))
	logging.Info().Int64("guild_id", guildID).Int64("messages", removed).Msg("Partition dropped")
	return nil
}

func (db *DB) dropPartitionTx(ctx context.Context, guildID int64) (int64, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, internalErr("begin drop transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE guild_id = ?", guildID)
	if err != nil {
		return 0, internalErr("delete partition messages", err)
	}
	removed, _ := res.RowsAffected()

	if _, err := tx.ExecContext(ctx, "DELETE FROM partitions WHERE guild_id = ?", guildID); err != nil {
		return 0, internalErr("delete partition", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, internalErr("commit drop", err)
	}
	committed = true
	return removed, nil
}

// HasPartition reports whether guildID is registered.
func (db *DB) HasPartition(guildID int64) bool {
	_, ok := db.partitions.get(guildID)
	return ok
}

// Partitions returns the registered guild ids in ascending order.
func (db *DB) Partitions() []int64 {
	db.partitions.mu.RLock()
	ids := make([]int64, 0, len(db.partitions.byGuild))
	for id := range db.partitions.byGuild {
		ids = append(ids, id)
	}
	db.partitions.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// lockPartition returns the write-locked partition for guildID. The caller
// must call the returned unlock function.
func (db *DB) lockPartition(guildID int64) (func(), error) {
	p, ok := db.partitions.get(guildID)
	if !ok {
		return nil, fmt.Errorf("%w: guild %d", models.ErrNotFound, guildID)
	}
	p.mu.Lock()
	if p.dropped {
		p.mu.Unlock()
		return nil, fmt.Errorf("%w: guild %d", models.ErrNotFound, guildID)
	}
	return p.mu.Unlock, nil
}

// requirePartition fails with NotFound for unknown guilds. Used by reads.
func (db *DB) requirePartition(guildID int64) error {
	if _, ok := db.partitions.get(guildID); !ok {
		return fmt.Errorf("%w: guild %d", models.ErrNotFound, guildID)
	}
	return nil
}
