// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package analytics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/database"
	"github.com/tomtom215/guildstats/internal/identity"
	"github.com/tomtom215/guildstats/internal/kvstore"
	"github.com/tomtom215/guildstats/internal/models"
	"github.com/tomtom215/guildstats/internal/textanalysis"
)

// testDBSemaphore serializes DuckDB-backed tests in this package.
var testDBSemaphore = make(chan struct{}, 1)

const testGuild int64 = 500

type testEnv struct {
	db       *database.DB
	kv       *kvstore.Store
	resolver *identity.Resolver
	svc      *Service
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := database.New(&config.DatabaseConfig{
		Path:         filepath.Join(t.TempDir(), "analytics.duckdb"),
		MaxMemory:    "256MB",
		Threads:      1,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	kv, err := kvstore.Open(&config.KVStoreConfig{InMemory: true})
	if err != nil {
		t.Fatalf("kvstore.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = kv.Close() })

	if err := db.CreatePartition(context.Background(), testGuild); err != nil {
		t.Fatalf("CreatePartition() error = %v", err)
	}

	cfg := &config.AnalyticsConfig{DefaultTimezoneOffset: 0, BatchSize: 2, Workers: 2}
	resolver := identity.NewResolver(kv, db)
	svc := NewService(db, resolver, kv, textanalysis.NewAnalyzer(cfg), cfg)
	return &testEnv{db: db, kv: kv, resolver: resolver, svc: svc}
}

func ptr[T any](v T) *T { return &v }

type msgOpt func(*models.Message)

func withMentions(ids ...int64) msgOpt { return func(m *models.Message) { m.Mentions = ids } }
func withContent(s string) msgOpt      { return func(m *models.Message) { m.Content = &s } }
func withBot() msgOpt                  { return func(m *models.Message) { m.IsBot = true } }

func (e *testEnv) insert(t *testing.T, id, channel, author, epoch int64, opts ...msgOpt) {
	t.Helper()
	m := models.Message{
		MessageID: id,
		GuildID:   testGuild,
		ChannelID: channel,
		AuthorID:  author,
		Content:   ptr("hello"),
		Epoch:     epoch,
	}
	for _, o := range opts {
		o(&m)
	}
	if _, err := e.db.Insert(context.Background(), &m); err != nil {
		t.Fatalf("Insert(%d) error = %v", id, err)
	}
}
