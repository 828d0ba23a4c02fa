// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

// Package analytics implements the read side of guildstats: message counts,
// mention statistics, leaderboards, activity series and user profiles.
//
// Every operation is a fresh read-committed scan of the guild partition.
// Nothing is cached between calls.
package analytics

import (
	"context"
	"time"

	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/database"
	"github.com/tomtom215/guildstats/internal/identity"
	"github.com/tomtom215/guildstats/internal/kvstore"
	"github.com/tomtom215/guildstats/internal/models"
	"github.com/tomtom215/guildstats/internal/textanalysis"
)

// MessageStore is the subset of the message store analytics reads from.
type MessageStore interface {
	Count(ctx context.Context, guildID int64, filter models.MessageFilter) (int64, error)
	CountBy(ctx context.Context, guildID int64, group database.GroupBy, filter models.MessageFilter) (map[int64]int64, error)
	Scan(ctx context.Context, guildID int64, filter models.MessageFilter, fn func(*models.Message) error) error
	Epochs(ctx context.Context, guildID int64, filter models.MessageFilter) ([]int64, error)
	DropPartition(ctx context.Context, guildID int64) error
}

// Service answers analytics queries for all guilds.
type Service struct {
	store    MessageStore
	resolver *identity.Resolver
	settings *kvstore.Store
	analyzer *textanalysis.Analyzer
	cfg      config.AnalyticsConfig
	now      func() time.Time
}

// NewService wires the analytics service.
func NewService(store MessageStore, resolver *identity.Resolver, settings *kvstore.Store,
	analyzer *textanalysis.Analyzer, cfg *config.AnalyticsConfig) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		settings: settings,
		analyzer: analyzer,
		cfg:      *cfg,
		now:      time.Now,
	}
}

// canonical resolves an optional user id through the alias table.
func (s *Service) canonical(ctx context.Context, guildID int64, userID *int64) (*int64, error) {
	if userID == nil {
		return nil, nil
	}
	id, err := s.resolver.Resolve(ctx, guildID, *userID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// timezone returns the guild's configured offset or the service default.
func (s *Service) timezone(guildID int64) (int, error) {
	return s.settings.TimezoneOffset(guildID, s.cfg.DefaultTimezoneOffset)
}
