// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/guildstats/internal/models"
)

func TestCreatePartition(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.CreatePartition(ctx, testGuild); err != nil {
		t.Fatalf("CreatePartition() error = %v", err)
	}
	if err := db.CreatePartition(ctx, testGuild); err != nil {
		t.Errorf("CreatePartition() second call error = %v, want nil", err)
	}
	if !db.HasPartition(testGuild) {
		t.Error("HasPartition() = false after create")
	}
	if got := db.Partitions(); len(got) != 1 {
		t.Errorf("Partitions() = %v, want one entry", got)
	}

	if err := db.CreatePartition(ctx, 0); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("CreatePartition(0) error = %v, want ErrInvalidArgument", err)
	}
}

func TestCreatePartitionStrict(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.CreatePartitionStrict(ctx, testGuild); err != nil {
		t.Fatalf("CreatePartitionStrict() error = %v", err)
	}
	if err := db.CreatePartitionStrict(ctx, testGuild); !errors.Is(err, models.ErrAlreadyExists) {
		t.Errorf("CreatePartitionStrict() second call error = %v, want ErrAlreadyExists", err)
	}
}

func TestDropPartition(t *testing.T) {
	db := setupTestDBWithGuild(t)
	ctx := context.Background()
	mustInsert(t, db,
		newMessage(1, 10, 100, 1_700_000_000, "one"),
		newMessage(2, 10, 100, 1_700_000_100, "two"),
	)

	if err := db.DropPartition(ctx, testGuild); err != nil {
		t.Fatalf("DropPartition() error = %v", err)
	}
	if db.HasPartition(testGuild) {
		t.Error("HasPartition() = true after drop")
	}
	if _, err := db.Count(ctx, testGuild, models.MessageFilter{}); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Count() after drop error = %v, want ErrNotFound", err)
	}
	if err := db.DropPartition(ctx, testGuild); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("DropPartition() twice error = %v, want ErrNotFound", err)
	}

	// Re-creating the guild starts from an empty partition.
	if err := db.CreatePartition(ctx, testGuild); err != nil {
		t.Fatalf("CreatePartition() error = %v", err)
	}
	n, err := db.Count(ctx, testGuild, models.MessageFilter{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() after re-create = %d, want 0", n)
	}
}

func TestDropPartition_LeavesOtherGuilds(t *testing.T) {
	db := setupTestDBWithGuild(t)
	ctx := context.Background()
	const other int64 = 2002
	if err := db.CreatePartition(ctx, other); err != nil {
		t.Fatalf("CreatePartition() error = %v", err)
	}
	mustInsert(t, db, newMessage(1, 10, 100, 1_700_000_000, "mine"))
	msg := newMessage(1, 10, 100, 1_700_000_000, "theirs")
	msg.GuildID = other
	mustInsert(t, db, msg)

	if err := db.DropPartition(ctx, testGuild); err != nil {
		t.Fatalf("DropPartition() error = %v", err)
	}
	n, err := db.Count(ctx, other, models.MessageFilter{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count(other) = %d, want 1", n)
	}
}

func TestConcurrentWritesAcrossGuilds(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	guilds := []int64{11, 12, 13}
	for _, g := range guilds {
		if err := db.CreatePartition(ctx, g); err != nil {
			t.Fatalf("CreatePartition(%d) error = %v", g, err)
		}
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(guilds)*20)
	for _, g := range guilds {
		for i := int64(1); i <= 20; i++ {
			wg.Add(1)
			go func(g, id int64) {
				defer wg.Done()
				m := newMessage(id, 10, 100, 1_700_000_000+id, "concurrent")
				m.GuildID = g
				if _, err := db.Insert(ctx, &m); err != nil {
					errs <- err
				}
			}(g, i)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Insert() error = %v", err)
	}

	for _, g := range guilds {
		n, err := db.Count(ctx, g, models.MessageFilter{})
		if err != nil {
			t.Fatalf("Count(%d) error = %v", g, err)
		}
		if n != 20 {
			t.Errorf("Count(%d) = %d, want 20", g, n)
		}
	}
}
