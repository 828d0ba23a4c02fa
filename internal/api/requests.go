// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/guildstats/internal/models"
	"github.com/tomtom215/guildstats/internal/validation"
)

// maxBodyBytes caps request bodies. A batch of a few thousand messages fits.
const maxBodyBytes = 8 << 20

const defaultAmount = 10

// AddMessagesRequest is the body of POST /guilds/{guild}/messages.
type AddMessagesRequest struct {
	Messages []models.Message `json:"messages" validate:"required,min=1,max=5000,dive"`
}

// EditMessageRequest is the body of PATCH /guilds/{guild}/messages/{message}.
// A null content clears the message text.
type EditMessageRequest struct {
	Content *string `json:"content"`
}

// AliasRequest is the body of PUT /guilds/{guild}/aliases.
type AliasRequest struct {
	CanonicalID int64 `json:"canonical_id" validate:"snowflake"`
	AliasID     int64 `json:"alias_id" validate:"snowflake,nefield=CanonicalID"`
	Merge       bool  `json:"merge"`
}

// IgnoreRequest is the body of PUT /guilds/{guild}/ignores. At least one of
// the ids must be set; the resolver rejects a request with neither.
type IgnoreRequest struct {
	ChannelID *int64 `json:"channel_id" validate:"omitempty,snowflake"`
	UserID    *int64 `json:"user_id" validate:"omitempty,snowflake"`
}

// ConfigRequest is the body of PUT /guilds/{guild}/config/{key}.
type ConfigRequest struct {
	Value string `json:"value" validate:"required,max=2000"`
}

// AnalyticsQuery holds the shared query parameters of the read endpoints.
type AnalyticsQuery struct {
	UserID    *int64 `validate:"omitempty,snowflake"`
	ChannelID *int64 `validate:"omitempty,snowflake"`
	Start     int64  `validate:"gte=0"`
	End       int64  `validate:"gte=0"`
	Amount    int    `validate:"min=1,max=1000"`
}

// TimeRange returns the half-open window or nil when neither bound is set.
func (q *AnalyticsQuery) TimeRange() *models.TimeRange {
	if q.Start == 0 && q.End == 0 {
		return nil
	}
	return &models.TimeRange{Start: q.Start, End: q.End}
}

// LeaderboardQuery extends AnalyticsQuery for /leaderboard.
type LeaderboardQuery struct {
	AnalyticsQuery
	Metric   string `validate:"oneof=messages words characters"`
	Scope    string `validate:"oneof=guild channel"`
	Others   bool
	Filtered bool
}

// ActivityQuery extends AnalyticsQuery for /activity.
type ActivityQuery struct {
	AnalyticsQuery
	Period   string `validate:"required"`
	Timezone *int   `validate:"omitempty,tzoffset"`
}

// decodeJSON reads a size-limited JSON body into dst and validates it.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := readJSON(r, dst); err != nil {
		return err
	}
	return validation.ValidateStruct(dst)
}

// readJSON reads a size-limited JSON body into dst without validating it.
func readJSON(r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", models.ErrInvalidArgument, err)
	}
	if len(body) > maxBodyBytes {
		return fmt.Errorf("%w: request body exceeds %d bytes", models.ErrInvalidArgument, maxBodyBytes)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", models.ErrInvalidArgument, err)
	}
	return nil
}

// pathID parses a positive id from a chi URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", models.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// queryInt64 parses an optional integer query parameter.
func queryInt64(r *http.Request, name string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer, got %q", models.ErrInvalidArgument, name, raw)
	}
	return &v, nil
}

// queryInt parses an optional int query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	v, err := queryInt64(r, name)
	if err != nil || v == nil {
		return nil, err
	}
	i := int(*v)
	return &i, nil
}

// queryBool parses an optional boolean query parameter.
func queryBool(r *http.Request, name string) (bool, error) {
	return queryBoolDefault(r, name, false)
}

// queryBoolDefault parses a boolean query value, returning def when the
// parameter is absent or empty.
func queryBoolDefault(r *http.Request, name string, def bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean, got %q", models.ErrInvalidArgument, name, raw)
	}
	return b, nil
}

// queryString returns a trimmed query value or def.
func queryString(r *http.Request, name, def string) string {
	if v := strings.TrimSpace(r.URL.Query().Get(name)); v != "" {
		return v
	}
	return def
}

// parseAnalyticsQuery reads user, channel, start, end and amount.
func parseAnalyticsQuery(r *http.Request) (AnalyticsQuery, error) {
	var q AnalyticsQuery
	var err error
	if q.UserID, err = queryInt64(r, "user"); err != nil {
		return q, err
	}
	if q.ChannelID, err = queryInt64(r, "channel"); err != nil {
		return q, err
	}
	start, err := queryInt64(r, "start")
	if err != nil {
		return q, err
	}
	end, err := queryInt64(r, "end")
	if err != nil {
		return q, err
	}
	if start != nil {
		q.Start = *start
	}
	if end != nil {
		q.End = *end
	}
	amount, err := queryInt(r, "amount")
	if err != nil {
		return q, err
	}
	q.Amount = defaultAmount
	if amount != nil {
		q.Amount = *amount
	}

	if err := validation.ValidateStruct(&q); err != nil {
		return q, err
	}
	if tr := q.TimeRange(); tr != nil {
		if err := tr.Validate(); err != nil {
			return q, err
		}
	}
	return q, nil
}

func parseLeaderboardQuery(r *http.Request) (LeaderboardQuery, error) {
	base, err := parseAnalyticsQuery(r)
	if err != nil {
		return LeaderboardQuery{}, err
	}
	q := LeaderboardQuery{
		AnalyticsQuery: base,
		Metric:         strings.ToLower(queryString(r, "metric", string(models.MetricMessages))),
		Scope:          strings.ToLower(queryString(r, "scope", string(models.ScopeGuild))),
	}
	if q.Others, err = queryBoolDefault(r, "others", true); err != nil {
		return q, err
	}
	if q.Filtered, err = queryBool(r, "filtered"); err != nil {
		return q, err
	}
	return q, validation.ValidateStruct(&q)
}

func parseActivityQuery(r *http.Request) (ActivityQuery, error) {
	base, err := parseAnalyticsQuery(r)
	if err != nil {
		return ActivityQuery{}, err
	}
	q := ActivityQuery{AnalyticsQuery: base, Period: queryString(r, "period", "")}
	if q.Timezone, err = queryInt(r, "tz"); err != nil {
		return q, err
	}
	return q, validation.ValidateStruct(&q)
}
