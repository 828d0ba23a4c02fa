// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

// Package kvstore is the shared keyed-config store for per-guild alias,
// ignore and settings rows, backed by BadgerDB.
//
// Keys have the form guild/<guild_id>/<kind>/<extra>/..., so every row of a
// guild shares the prefix guild/<guild_id>/ and a purge is one DropPrefix.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/models"
)

// Kind is the row family below a guild prefix.
type Kind string

const (
	KindAlias  Kind = "alias"
	KindIgnore Kind = "ignore"
	KindConfig Kind = "config"
)

const keySep = "/"

// Entry is one stored row. Extra holds the key segments after the kind.
type Entry struct {
	Extra []string
	Value []byte
}

// Store wraps a badger database.
type Store struct {
	db      *badger.DB
	cfg     config.KVStoreConfig
	closed  atomic.Bool
	gcRatio float64
}

// Open opens (or creates) the store described by cfg.
func Open(cfg *config.KVStoreConfig) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	ratio := cfg.GCDiscardRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.5
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Config store opened")

	return &Store{db: db, cfg: *cfg, gcRatio: ratio}, nil
}

// Close closes the underlying database. Further calls fail.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Config store closed")
	return nil
}

func (s *Store) checkNotClosed() error {
	if s.closed.Load() {
		return fmt.Errorf("%w: config store is closed", models.ErrInternal)
	}
	return nil
}

func guildPrefix(guildID int64) string {
	return "guild" + keySep + strconv.FormatInt(guildID, 10) + keySep
}

// Key builds the storage key for a row.
func Key(guildID int64, kind Kind, extra ...string) []byte {
	var b strings.Builder
	b.WriteString(guildPrefix(guildID))
	b.WriteString(string(kind))
	for _, e := range extra {
		b.WriteString(keySep)
		b.WriteString(e)
	}
	return []byte(b.String())
}

func validateSegments(extra []string) error {
	for _, e := range extra {
		if e == "" || strings.Contains(e, keySep) {
			return fmt.Errorf("%w: invalid key segment %q", models.ErrInvalidArgument, e)
		}
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", models.ErrInternal, op, err)
}

// Put writes value under the row key, replacing any previous value.
func (s *Store) Put(guildID int64, kind Kind, value []byte, extra ...string) error {
	if err := s.checkNotClosed(); err != nil {
		return err
	}
	if err := validateSegments(extra); err != nil {
		return err
	}
	key := Key(guildID, kind, extra...)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, value))
	})
	if err != nil {
		return storeErr("put "+string(kind), err)
	}
	return nil
}

// Get returns the value of a row or models.ErrNotFound.
func (s *Store) Get(guildID int64, kind Kind, extra ...string) ([]byte, error) {
	if err := s.checkNotClosed(); err != nil {
		return nil, err
	}
	key := Key(guildID, kind, extra...)
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, key)
	}
	if err != nil {
		return nil, storeErr("get "+string(kind), err)
	}
	return value, nil
}

// Has reports whether a row exists.
func (s *Store) Has(guildID int64, kind Kind, extra ...string) (bool, error) {
	_, err := s.Get(guildID, kind, extra...)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Delete removes a row. A missing row is models.ErrNotFound.
func (s *Store) Delete(guildID int64, kind Kind, extra ...string) error {
	if err := s.checkNotClosed(); err != nil {
		return err
	}
	key := Key(guildID, kind, extra...)
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", models.ErrNotFound, key)
	}
	if err != nil {
		return storeErr("delete "+string(kind), err)
	}
	return nil
}

// List returns every row of kind for the guild whose extra segments start
// with prefix, in key order.
func (s *Store) List(ctx context.Context, guildID int64, kind Kind, prefix ...string) ([]Entry, error) {
	if err := s.checkNotClosed(); err != nil {
		return nil, err
	}
	base := string(Key(guildID, kind)) + keySep
	seek := []byte(base)
	if len(prefix) > 0 {
		seek = []byte(base + strings.Join(prefix, keySep) + keySep)
	}

	var entries []Entry
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(seek); it.ValidForPrefix(seek); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			rest := strings.TrimPrefix(string(item.Key()), base)
			entries = append(entries, Entry{Extra: strings.Split(rest, keySep), Value: value})
		}
		return nil
	})
	if err != nil {
		return nil, storeErr("list "+string(kind), err)
	}
	return entries, nil
}

// DeleteGuild removes every row of the guild.
func (s *Store) DeleteGuild(guildID int64) error {
	if err := s.checkNotClosed(); err != nil {
		return err
	}
	if err := s.db.DropPrefix([]byte(guildPrefix(guildID))); err != nil {
		return storeErr("drop guild rows", err)
	}
	logging.Info().Int64("guild_id", guildID).Msg("Guild config rows deleted")
	return nil
}

// RunGC reclaims value log space until badger reports nothing to rewrite.
func (s *Store) RunGC() error {
	if err := s.checkNotClosed(); err != nil {
		return err
	}
	if s.cfg.InMemory {
		return nil
	}
	for {
		err := s.db.RunValueLogGC(s.gcRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}
