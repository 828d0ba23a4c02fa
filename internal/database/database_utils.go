// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package database

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/metrics"
	"github.com/tomtom215/guildstats/internal/models"
)

// ensureContext bounds ctx by the configured query timeout when the caller
// supplied no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), db.timeout)
	}
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, db.timeout)
	}
	return ctx, func() {}
}

// Checkpoint flushes the DuckDB WAL into the database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, "CHECKPOINT")
	metrics.RecordDBQuery("checkpoint", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}

// internalErr tags a storage failure with models.ErrInternal.
func internalErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", models.ErrInternal, op, err)
}

// observe records the duration and outcome of one store operation.
func observe(op string, start time.Time, err error) {
	metrics.RecordDBQuery(op, time.Since(start), err)
}

// closeWithLog closes a resource and logs, but does not return, any error.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly is for error paths where a Close failure is not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
