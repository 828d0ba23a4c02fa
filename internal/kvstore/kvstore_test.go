// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package kvstore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&config.KVStoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestKey(t *testing.T) {
	t.Parallel()
	got := string(Key(42, KindIgnore, "channel", "7"))
	if got != "guild/42/ignore/channel/7" {
		t.Errorf("Key() = %q", got)
	}
}

func TestPutGetDelete(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)

	if err := s.Put(1, KindAlias, []byte("100"), "200"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	v, err := s.Get(1, KindAlias, "200")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(v) != "100" {
		t.Errorf("Get() = %q, want 100", v)
	}

	ok, err := s.Has(1, KindAlias, "200")
	if err != nil || !ok {
		t.Errorf("Has() = %v, %v; want true, nil", ok, err)
	}

	if err := s.Delete(1, KindAlias, "200"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(1, KindAlias, "200"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(1, KindAlias, "200"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Delete() missing error = %v, want ErrNotFound", err)
	}
	ok, err = s.Has(1, KindAlias, "200")
	if err != nil || ok {
		t.Errorf("Has() after delete = %v, %v; want false, nil", ok, err)
	}
}

func TestPut_RejectsBadSegments(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	for _, seg := range []string{"", "a/b"} {
		if err := s.Put(1, KindConfig, nil, seg); !errors.Is(err, models.ErrInvalidArgument) {
			t.Errorf("Put(%q) error = %v, want ErrInvalidArgument", seg, err)
		}
	}
}

func TestList_IsolatesGuildsAndKinds(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()

	mustPut := func(g int64, k Kind, v string, extra ...string) {
		t.Helper()
		if err := s.Put(g, k, []byte(v), extra...); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	mustPut(1, KindIgnore, "", "channel", "10")
	mustPut(1, KindIgnore, "", "user", "20")
	mustPut(1, KindAlias, "5", "6")
	mustPut(11, KindIgnore, "", "channel", "99")

	all, err := s.List(ctx, 1, KindIgnore)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List() = %d entries, want 2 (guild 11 must not leak in)", len(all))
	}
	if !reflect.DeepEqual(all[0].Extra, []string{"channel", "10"}) {
		t.Errorf("List()[0].Extra = %v", all[0].Extra)
	}

	users, err := s.List(ctx, 1, KindIgnore, "user")
	if err != nil {
		t.Fatalf("List(user) error = %v", err)
	}
	if len(users) != 1 || users[0].Extra[1] != "20" {
		t.Errorf("List(user) = %+v", users)
	}
}

func TestDeleteGuild(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	ctx := context.Background()

	_ = s.Put(1, KindAlias, []byte("5"), "6")
	_ = s.Put(1, KindConfig, []byte("3"), "timezone")
	_ = s.Put(10, KindAlias, []byte("5"), "6")

	if err := s.DeleteGuild(1); err != nil {
		t.Fatalf("DeleteGuild() error = %v", err)
	}
	rows, _ := s.List(ctx, 1, KindAlias)
	if len(rows) != 0 {
		t.Errorf("guild 1 rows remain: %+v", rows)
	}
	if _, err := s.Get(10, KindAlias, "6"); err != nil {
		t.Errorf("guild 10 row removed: %v", err)
	}
}

func TestClose(t *testing.T) {
	t.Parallel()
	s, err := Open(&config.KVStoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if _, err := s.Get(1, KindAlias, "1"); !errors.Is(err, models.ErrInternal) {
		t.Errorf("Get() after close error = %v, want ErrInternal", err)
	}
}

func TestOpen_OnDiskAndGC(t *testing.T) {
	t.Parallel()
	s, err := Open(&config.KVStoreConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer s.Close()

	if err := s.Put(1, KindConfig, []byte("true"), "paused"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}
