// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Metric is what a leaderboard ranks by.
type Metric string

const (
	MetricMessages   Metric = "messages"
	MetricWords      Metric = "words"
	MetricCharacters Metric = "characters"
)

// ParseMetric accepts the metric name case-insensitively.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricMessages, MetricWords, MetricCharacters:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, s)
}

// Scope is the grouping dimension of a leaderboard.
type Scope string

const (
	// ScopeGuild ranks canonical authors across the guild.
	ScopeGuild Scope = "guild"
	// ScopeChannel ranks channels.
	ScopeChannel Scope = "channel"
)

// ParseScope accepts the scope name case-insensitively.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScopeGuild, ScopeChannel:
		return sc, nil
	}
	return "", fmt.Errorf("%w: unknown scope %q", ErrInvalidArgument, s)
}

// LeaderboardEntry is one ranked row. The synthetic remainder row has
// Others set and ID zero.
type LeaderboardEntry struct {
	ID     int64 `json:"id"`
	Value  int64 `json:"value"`
	Others bool  `json:"others,omitempty"`
}

// Label renders the identity for display.
func (e LeaderboardEntry) Label() string {
	if e.Others {
		return "others"
	}
	return strconv.FormatInt(e.ID, 10)
}

// MentionCount pairs an identity with how often it was mentioned.
type MentionCount struct {
	ID    int64 `json:"id"`
	Count int64 `json:"count"`
}

// WordCount is one row of a word frequency table.
type WordCount struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

// WordFrequencies is the result of a top-words computation. Degraded is set
// when at least one batch failed and Partial when the computation was
// cancelled before every batch completed.
type WordFrequencies struct {
	Words    []WordCount `json:"words"`
	Degraded bool        `json:"degraded"`
	Partial  bool        `json:"partial"`
}

// LetterCount is one row of a letter leaderboard.
type LetterCount struct {
	Letter string `json:"letter"`
	Count  int64  `json:"count"`
}

// LetterFrequencies is the result of a letter count. Degraded and Partial
// mean the same as on WordFrequencies.
type LetterFrequencies struct {
	Letters  []LetterCount `json:"letters"`
	Degraded bool          `json:"degraded"`
	Partial  bool          `json:"partial"`
}

// ActivityBucket is one labeled slice of an activity series.
type ActivityBucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// ActivitySeries is a gap-filled chronological series for a period token.
type ActivitySeries struct {
	Period         string           `json:"period"`
	TimezoneOffset int              `json:"timezone_offset"`
	Buckets        []ActivityBucket `json:"buckets"`
}

// Profile summarises one user's activity in a guild.
type Profile struct {
	GuildID           int64         `json:"guild_id"`
	UserID            int64         `json:"user_id"`
	Messages          int64         `json:"messages"`
	Words             int64         `json:"words"`
	Characters        int64         `json:"characters"`
	MostActiveChannel *int64        `json:"most_active_channel,omitempty"`
	MostActiveHour    *int          `json:"most_active_hour,omitempty"`
	MostActiveWeekday *string       `json:"most_active_weekday,omitempty"`
	TotalMentions     int64         `json:"total_mentions"`
	MostMentioned     *MentionCount `json:"most_mentioned,omitempty"`
	MostMentionedBy   *MentionCount `json:"most_mentioned_by,omitempty"`
	TopWords          []WordCount   `json:"top_words"`
}
