// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/guildstats/internal/database"
	"github.com/tomtom215/guildstats/internal/models"
)

// TopBy ranks identities of the guild by metric. Scope guild ranks
// canonical authors, scope channel ranks channels. Ignore entries are not
// applied; see TopByFiltered.
func (s *Service) TopBy(ctx context.Context, guildID int64, metric models.Metric, scope models.Scope,
	amount int, tr *models.TimeRange, includeOthers bool) ([]models.LeaderboardEntry, error) {
	return s.topBy(ctx, guildID, metric, scope, amount, models.MessageFilter{TimeRange: tr, ExcludeBots: true}, includeOthers)
}

// TopByFiltered is TopBy with the guild's ignored channels and users
// excluded before ranking.
func (s *Service) TopByFiltered(ctx context.Context, guildID int64, metric models.Metric, scope models.Scope,
	amount int, tr *models.TimeRange, includeOthers bool) ([]models.LeaderboardEntry, error) {
	channels, users, err := s.resolver.IgnoredIDs(ctx, guildID)
	if err != nil {
		return nil, err
	}
	filter := models.MessageFilter{
		TimeRange:       tr,
		ExcludeBots:     true,
		ExcludeChannels: channels,
		ExcludeAuthors:  users,
	}
	return s.topBy(ctx, guildID, metric, scope, amount, filter, includeOthers)
}

func (s *Service) topBy(ctx context.Context, guildID int64, metric models.Metric, scope models.Scope,
	amount int, filter models.MessageFilter, includeOthers bool) ([]models.LeaderboardEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", models.ErrInvalidArgument, amount)
	}
	group, err := groupFor(scope)
	if err != nil {
		return nil, err
	}

	var values map[int64]int64
	switch metric {
	case models.MetricMessages:
		values, err = s.store.CountBy(ctx, guildID, group, filter)
	case models.MetricWords:
		values, err = s.sumBy(ctx, guildID, group, filter, countWords)
	case models.MetricCharacters:
		values, err = s.sumBy(ctx, guildID, group, filter, countCharacters)
	default:
		return nil, fmt.Errorf("%w: unknown metric %q", models.ErrInvalidArgument, metric)
	}
	if err != nil {
		return nil, err
	}
	return RankTop(values, amount, includeOthers), nil
}

func groupFor(scope models.Scope) (database.GroupBy, error) {
	switch scope {
	case models.ScopeGuild:
		return database.GroupByAuthor, nil
	case models.ScopeChannel:
		return database.GroupByChannel, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", models.ErrInvalidArgument, scope)
}

// sumBy accumulates a content measure per group in one partition scan.
func (s *Service) sumBy(ctx context.Context, guildID int64, group database.GroupBy,
	filter models.MessageFilter, measure func(string) int64) (map[int64]int64, error) {
	filter.RequireContent = true
	values := make(map[int64]int64)
	err := s.store.Scan(ctx, guildID, filter, func(m *models.Message) error {
		key := m.AliasedAuthorID
		if group == database.GroupByChannel {
			key = m.ChannelID
		}
		values[key] += measure(m.Text())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return values, nil
}

// RankTop sorts values descending with ascending id as the tie-break and
// keeps the first amount entries. With includeOthers, a single synthetic
// entry carries the sum of everything cut off; it is omitted when nothing
// was cut.
func RankTop(values map[int64]int64, amount int, includeOthers bool) []models.LeaderboardEntry {
	entries := make([]models.LeaderboardEntry, 0, len(values))
	for id, v := range values {
		entries = append(entries, models.LeaderboardEntry{ID: id, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].ID < entries[j].ID
	})

	if amount <= 0 || len(entries) <= amount {
		return entries
	}

	top := entries[:amount:amount]
	if !includeOthers {
		return top
	}
	var rest int64
	for _, e := range entries[amount:] {
		rest += e.Value
	}
	return append(top, models.LeaderboardEntry{Value: rest, Others: true})
}
