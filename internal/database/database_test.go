// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/models"
)

// testDBSemaphore serializes DuckDB tests. Concurrent CGO connections from
// many parallel tests can stall under CI resource pressure.
var testDBSemaphore = make(chan struct{}, 1)

const testGuild int64 = 1001

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	return openTestDB(t, filepath.Join(t.TempDir(), "guildstats.duckdb"))
}

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{
		Path:         path,
		MaxMemory:    "256MB",
		Threads:      1,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})
	return db
}

// setupTestDBWithGuild returns a store with testGuild already created.
func setupTestDBWithGuild(t *testing.T) *DB {
	t.Helper()
	db := setupTestDB(t)
	if err := db.CreatePartition(context.Background(), testGuild); err != nil {
		t.Fatalf("CreatePartition() error = %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }

func newMessage(id, channel, author, epoch int64, content string, mentions ...int64) models.Message {
	return models.Message{
		MessageID: id,
		GuildID:   testGuild,
		ChannelID: channel,
		AuthorID:  author,
		Content:   strPtr(content),
		Epoch:     epoch,
		Mentions:  mentions,
	}
}

func mustInsert(t *testing.T, db *DB, msgs ...models.Message) {
	t.Helper()
	for i := range msgs {
		if _, err := db.Insert(context.Background(), &msgs[i]); err != nil {
			t.Fatalf("Insert(%d) error = %v", msgs[i].MessageID, err)
		}
	}
}

func TestNew_ReloadsPartitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reload.duckdb")
	ctx := context.Background()

	func() {
		testDBSemaphore <- struct{}{}
		defer func() { <-testDBSemaphore }()

		db, err := New(&config.DatabaseConfig{Path: path, Threads: 1})
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		if err := db.CreatePartition(ctx, 7); err != nil {
			t.Fatalf("CreatePartition() error = %v", err)
		}
		if err := db.CreatePartition(ctx, 3); err != nil {
			t.Fatalf("CreatePartition() error = %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
	}()

	db := openTestDB(t, path)
	got := db.Partitions()
	if len(got) != 2 || got[0] != 3 || got[1] != 7 {
		t.Errorf("Partitions() after reopen = %v, want [3 7]", got)
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestCheckpoint(t *testing.T) {
	db := setupTestDBWithGuild(t)
	mustInsert(t, db, newMessage(1, 10, 100, 1_700_000_000, "hello"))
	if err := db.Checkpoint(context.Background()); err != nil {
		t.Errorf("Checkpoint() error = %v", err)
	}
}

func TestEnsureContext(t *testing.T) {
	db := &DB{timeout: time.Second}

	ctx, cancel := db.ensureContext(context.Background())
	defer cancel()
	if _, ok := ctx.Deadline(); !ok {
		t.Error("ensureContext() without deadline should add one")
	}

	want := time.Now().Add(time.Hour)
	parent, parentCancel := context.WithDeadline(context.Background(), want)
	defer parentCancel()
	ctx2, cancel2 := db.ensureContext(parent)
	defer cancel2()
	if got, _ := ctx2.Deadline(); !got.Equal(want) {
		t.Errorf("ensureContext() replaced caller deadline: got %v, want %v", got, want)
	}
}

func TestInternalErr(t *testing.T) {
	cause := errors.New("disk full")
	err := internalErr("insert message", cause)
	if !errors.Is(err, models.ErrInternal) {
		t.Error("internalErr() should wrap ErrInternal")
	}
	if !errors.Is(err, cause) {
		t.Error("internalErr() should wrap the cause")
	}
}
