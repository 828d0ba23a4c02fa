// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"net/http"

	"github.com/tomtom215/guildstats/internal/models"
)

// CountResult is the payload of GET /count.
type CountResult struct {
	GuildID int64 `json:"guild_id"`
	Count   int64 `json:"count"`
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	q, err := parseAnalyticsQuery(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	n, err := h.analytics.Count(r.Context(), guildID, q.ChannelID, q.UserID, q.TimeRange())
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(CountResult{GuildID: guildID, Count: n})
}

// WordsResult is the payload of GET /words.
type WordsResult struct {
	GuildID    int64                  `json:"guild_id"`
	UserID     *int64                 `json:"user_id,omitempty"`
	ChannelID  *int64                 `json:"channel_id,omitempty"`
	Words      int64                  `json:"words"`
	Characters int64                  `json:"characters"`
	TopWords   models.WordFrequencies `json:"top_words"`
}

// handleWords returns word and character totals plus the top words, for
// the guild or, with ?user=, one user. ?channel= narrows the top words only.
func (h *Handler) handleWords(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	q, err := parseAnalyticsQuery(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	ctx := r.Context()

	words, err := h.analytics.WordCount(ctx, guildID, q.UserID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	chars, err := h.analytics.CharacterCount(ctx, guildID, q.UserID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	top, err := h.analytics.TopWords(ctx, guildID, q.UserID, q.ChannelID, q.Amount)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if top.Words == nil {
		top.Words = []models.WordCount{}
	}
	rw.Success(WordsResult{GuildID: guildID, UserID: q.UserID, ChannelID: q.ChannelID, Words: words, Characters: chars, TopWords: top})
}

// MentionsResult is the payload of GET /users/{user}/mentions.
type MentionsResult struct {
	UserID   int64   `json:"user_id"`
	Mentions []int64 `json:"mentions"`
}

func (h *Handler) handleMentions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, userID, err := guildAndUser(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	mentions, err := h.analytics.MentionsOf(r.Context(), guildID, userID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if mentions == nil {
		mentions = []int64{}
	}
	rw.Success(MentionsResult{UserID: userID, Mentions: mentions})
}

// TopMentionResult is the payload of /mentioned and /mentioned-by. Top is
// null when there is no such identity.
type TopMentionResult struct {
	UserID int64                `json:"user_id"`
	Top    *models.MentionCount `json:"top"`
}

// handleMostMentioned returns whom the user mentioned most.
func (h *Handler) handleMostMentioned(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, userID, err := guildAndUser(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	opt, err := h.analytics.MostMentioned(r.Context(), guildID, userID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	result := TopMentionResult{UserID: userID}
	if v, ok := opt.Get(); ok {
		result.Top = &v
	}
	rw.Success(result)
}

// handleMostMentionedBy returns who mentioned the user most.
func (h *Handler) handleMostMentionedBy(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, userID, err := guildAndUser(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	opt, err := h.analytics.MostMentionedBy(r.Context(), guildID, userID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	result := TopMentionResult{UserID: userID}
	if v, ok := opt.Get(); ok {
		result.Top = &v
	}
	rw.Success(result)
}

// LettersResult is the payload of GET /letters.
type LettersResult struct {
	GuildID   int64  `json:"guild_id"`
	UserID    *int64 `json:"user_id,omitempty"`
	ChannelID *int64 `json:"channel_id,omitempty"`
	models.LetterFrequencies
}

// handleLetters returns the letter leaderboard for the guild, optionally
// narrowed with ?user= and ?channel=.
func (h *Handler) handleLetters(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	q, err := parseAnalyticsQuery(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	letters, err := h.analytics.TopLetters(r.Context(), guildID, q.UserID, q.ChannelID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if letters.Letters == nil {
		letters.Letters = []models.LetterCount{}
	}
	rw.Success(LettersResult{GuildID: guildID, UserID: q.UserID, ChannelID: q.ChannelID, LetterFrequencies: letters})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, userID, err := guildAndUser(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	profile, err := h.analytics.Profile(r.Context(), guildID, userID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(profile)
}

// RankingResult is the payload of /channels/top and /leaderboard.
type RankingResult struct {
	GuildID int64                     `json:"guild_id"`
	Metric  models.Metric             `json:"metric"`
	Scope   models.Scope              `json:"scope"`
	Entries []models.LeaderboardEntry `json:"entries"`
}

// handleTopChannels ranks channels by message count, optionally for one
// user.
func (h *Handler) handleTopChannels(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	q, err := parseAnalyticsQuery(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	entries, err := h.analytics.TopChannels(r.Context(), guildID, q.UserID, q.Amount)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(RankingResult{GuildID: guildID, Metric: models.MetricMessages, Scope: models.ScopeChannel, Entries: nonNilEntries(entries)})
}

// handleLeaderboard ranks authors or channels. ?filtered=true drops the
// guild's ignored channels and users first. The remainder row is appended
// unless ?others=false.
func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	q, err := parseLeaderboardQuery(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	metric, err := models.ParseMetric(q.Metric)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	scope, err := models.ParseScope(q.Scope)
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	rank := h.analytics.TopBy
	if q.Filtered {
		rank = h.analytics.TopByFiltered
	}
	entries, err := rank(r.Context(), guildID, metric, scope, q.Amount, q.TimeRange(), q.Others)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(RankingResult{GuildID: guildID, Metric: metric, Scope: scope, Entries: nonNilEntries(entries)})
}

// handleActivity returns the gap-filled series for ?period=. ?tz=
// overrides the guild timezone for this request.
func (h *Handler) handleActivity(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	q, err := parseActivityQuery(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	series, err := h.analytics.Activity(r.Context(), guildID, q.UserID, q.ChannelID, q.Period, q.Timezone)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(series)
}

func guildAndUser(r *http.Request) (int64, int64, error) {
	guildID, err := pathID(r, "guild")
	if err != nil {
		return 0, 0, err
	}
	userID, err := pathID(r, "user")
	if err != nil {
		return 0, 0, err
	}
	return guildID, userID, nil
}

func nonNilEntries(entries []models.LeaderboardEntry) []models.LeaderboardEntry {
	if entries == nil {
		return []models.LeaderboardEntry{}
	}
	return entries
}
