// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/guildstats/internal/kvstore"
	"github.com/tomtom215/guildstats/internal/models"
)

const day = 24 * time.Hour

// PeriodAll covers everything from the first message on.
const PeriodAll = "all"

// EarliestEpoch is the lower bound of the all-time series (2015-01-01 UTC).
// Nothing on the platform predates it.
var EarliestEpoch = time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

// Label layouts. Layouts without a year are resolved relative to now when
// sorting.
const (
	layoutHour  = "Jan 2 15:04"
	layoutDay   = "Jan 2"
	layoutDate  = "Jan 2, 2006"
	layoutMonth = "Jan 2006"
)

type periodSpec struct {
	window  time.Duration
	buckets int
	layout  string
}

func (p periodSpec) width() time.Duration {
	return p.window / time.Duration(p.buckets)
}

var periods = map[string]periodSpec{
	"1d": {24 * time.Hour, 24, layoutHour},
	"3d": {3 * day, 3, layoutDay},
	"5d": {5 * day, 5, layoutDay},
	"1w": {7 * day, 7, layoutDay},
	"2w": {14 * day, 14, layoutDay},
	"1m": {30 * day, 30, layoutDay},
	"3m": {91 * day, 13, layoutDay},
	"6m": {182 * day, 26, layoutDay},
	"9m": {273 * day, 39, layoutDay},
	"1y": {364 * day, 52, layoutDate},
	"2y": {728 * day, 52, layoutDate},
	"3y": {1092 * day, 39, layoutDate},
	"5y": {1820 * day, 20, layoutMonth},
}

// Periods lists the accepted period tokens in ascending length.
func Periods() []string {
	return []string{"1d", "3d", "5d", "1w", "2w", "1m", "3m", "6m", "9m", "1y", "2y", "3y", "5y", PeriodAll}
}

// BucketCount returns the fixed number of buckets for a period token. The
// all-time period has no fixed count and reports false.
func BucketCount(period string) (int, bool) {
	p, ok := periods[period]
	return p.buckets, ok
}

// windowStart is the first epoch a period covers.
func windowStart(period string, now time.Time) (int64, error) {
	if period == PeriodAll {
		return EarliestEpoch, nil
	}
	p, ok := periods[period]
	if !ok {
		return 0, unknownPeriod(period)
	}
	return now.Add(-p.window).Unix(), nil
}

func unknownPeriod(period string) error {
	return fmt.Errorf("%w: unknown period %q (want one of %s)",
		models.ErrInvalidArgument, period, strings.Join(Periods(), ", "))
}

// ActivitySeries buckets epochs (unix seconds) into the labeled, gap-filled
// chronological series for period, rendering labels in the fixed zone
// tzOffsetHours from UTC. Every fixed period yields exactly its bucket
// count, even with no epochs in the window.
func ActivitySeries(epochs []int64, period string, tzOffsetHours int, now time.Time) (models.ActivitySeries, error) {
	if err := kvstore.ValidateTimezoneOffset(tzOffsetHours); err != nil {
		return models.ActivitySeries{}, err
	}
	zone := time.FixedZone(fmt.Sprintf("UTC%+d", tzOffsetHours), tzOffsetHours*3600)
	now = now.In(zone)

	series := models.ActivitySeries{Period: period, TimezoneOffset: tzOffsetHours}
	if period == PeriodAll {
		series.Buckets = allTimeBuckets(epochs, now, zone)
		return series, nil
	}

	p, ok := periods[period]
	if !ok {
		return models.ActivitySeries{}, unknownPeriod(period)
	}

	start := now.Add(-p.window)
	width := p.width()
	label := func(i int) string {
		return start.Add(time.Duration(i) * width).Format(p.layout)
	}

	counts := make(map[string]int64, p.buckets)
	for _, e := range epochs {
		t := time.Unix(e, 0)
		if t.Before(start) || t.After(now) {
			continue
		}
		idx := int(t.Sub(start) / width)
		if idx >= p.buckets {
			idx = p.buckets - 1
		}
		counts[label(idx)]++
	}
	for i := 0; i < p.buckets; i++ {
		if _, ok := counts[label(i)]; !ok {
			counts[label(i)] = 0
		}
	}

	buckets := sortBuckets(counts, p.layout, zone, now, width)
	if len(buckets) > p.buckets {
		buckets = buckets[len(buckets)-p.buckets:]
	}
	series.Buckets = buckets
	return series, nil
}

// allTimeBuckets spans calendar months from the first message on or after
// EarliestEpoch to now, with empty months filled in.
func allTimeBuckets(epochs []int64, now time.Time, zone *time.Location) []models.ActivityBucket {
	var first time.Time
	counts := make(map[string]int64)
	for _, e := range epochs {
		if e < EarliestEpoch {
			continue
		}
		t := time.Unix(e, 0).In(zone)
		if t.After(now) {
			continue
		}
		if first.IsZero() || t.Before(first) {
			first = t
		}
		counts[t.Format(layoutMonth)]++
	}
	if first.IsZero() {
		return []models.ActivityBucket{}
	}

	month := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, zone)
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, zone)
	for !month.After(end) {
		label := month.Format(layoutMonth)
		if _, ok := counts[label]; !ok {
			counts[label] = 0
		}
		month = month.AddDate(0, 1, 0)
	}
	return sortBuckets(counts, layoutMonth, zone, now, 31*day)
}

// sortBuckets orders labels chronologically by parsing them back with
// layout. Lexical order breaks as soon as a series crosses a month or year.
func sortBuckets(counts map[string]int64, layout string, zone *time.Location, now time.Time, width time.Duration) []models.ActivityBucket {
	type parsed struct {
		bucket models.ActivityBucket
		at     time.Time
	}
	rows := make([]parsed, 0, len(counts))
	for label, n := range counts {
		rows = append(rows, parsed{
			bucket: models.ActivityBucket{Label: label, Count: n},
			at:     parseLabel(label, layout, zone, now, width),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].at.Equal(rows[j].at) {
			return rows[i].at.Before(rows[j].at)
		}
		return rows[i].bucket.Label < rows[j].bucket.Label
	})
	out := make([]models.ActivityBucket, len(rows))
	for i, r := range rows {
		out[i] = r.bucket
	}
	return out
}

// parseLabel recovers the instant a label stands for. Labels without a year
// take now's year, or the previous one when that would put them in the
// future.
func parseLabel(label, layout string, zone *time.Location, now time.Time, width time.Duration) time.Time {
	t, err := time.ParseInLocation(layout, label, zone)
	if err != nil {
		return time.Time{}
	}
	if strings.Contains(layout, "2006") {
		return t
	}
	t = time.Date(now.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, zone)
	if t.After(now.Add(width)) {
		t = t.AddDate(-1, 0, 0)
	}
	return t
}

// Activity loads the guild's (optionally user or channel filtered)
// timestamps and returns the series for period. A nil tzOffsetHours uses
// the guild's configured timezone.
func (s *Service) Activity(ctx context.Context, guildID int64, userID, channelID *int64, period string, tzOffsetHours *int) (models.ActivitySeries, error) {
	now := s.now()
	start, err := windowStart(period, now)
	if err != nil {
		return models.ActivitySeries{}, err
	}

	tz := 0
	if tzOffsetHours != nil {
		tz = *tzOffsetHours
	} else if tz, err = s.timezone(guildID); err != nil {
		return models.ActivitySeries{}, err
	}

	author, err := s.canonical(ctx, guildID, userID)
	if err != nil {
		return models.ActivitySeries{}, err
	}
	epochs, err := s.store.Epochs(ctx, guildID, models.MessageFilter{
		ChannelID: channelID,
		AuthorID:  author,
		TimeRange: &models.TimeRange{Start: start},
	})
	if err != nil {
		return models.ActivitySeries{}, err
	}
	return ActivitySeries(epochs, period, tz, now)
}
