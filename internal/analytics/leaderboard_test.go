// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package analytics

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/tomtom215/guildstats/internal/models"
)

func TestRankTop(t *testing.T) {
	t.Parallel()

	values := map[int64]int64{1: 10, 2: 7, 3: 3, 4: 1}
	tests := []struct {
		name          string
		values        map[int64]int64
		amount        int
		includeOthers bool
		want          []models.LeaderboardEntry
	}{
		{
			name: "top two with others", values: values, amount: 2, includeOthers: true,
			want: []models.LeaderboardEntry{{ID: 1, Value: 10}, {ID: 2, Value: 7}, {Value: 4, Others: true}},
		},
		{
			name: "top two without others", values: values, amount: 2,
			want: []models.LeaderboardEntry{{ID: 1, Value: 10}, {ID: 2, Value: 7}},
		},
		{
			name: "nothing cut", values: values, amount: 4, includeOthers: true,
			want: []models.LeaderboardEntry{{ID: 1, Value: 10}, {ID: 2, Value: 7}, {ID: 3, Value: 3}, {ID: 4, Value: 1}},
		},
		{
			name: "ties by id", values: map[int64]int64{30: 5, 10: 5, 20: 5}, amount: 2, includeOthers: true,
			want: []models.LeaderboardEntry{{ID: 10, Value: 5}, {ID: 20, Value: 5}, {Value: 5, Others: true}},
		},
		{
			name: "empty", values: map[int64]int64{}, amount: 3, includeOthers: true,
			want: []models.LeaderboardEntry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := RankTop(tt.values, tt.amount, tt.includeOthers)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RankTop() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRankTop_OthersPreservesTotal(t *testing.T) {
	t.Parallel()

	values := make(map[int64]int64)
	var total int64
	for i := int64(1); i <= 50; i++ {
		values[i] = (i * 37) % 11
		total += values[i]
	}
	for amount := 1; amount <= 50; amount++ {
		var sum int64
		for _, e := range RankTop(values, amount, true) {
			sum += e.Value
		}
		if sum != total {
			t.Fatalf("amount %d: sum = %d, want %d", amount, sum, total)
		}
	}
}

func TestTopBy(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	// Author 1: 10 messages, 2: 7, 3: 3, 4: 1.
	id := int64(1)
	for author, n := range map[int64]int{1: 10, 2: 7, 3: 3, 4: 1} {
		for i := 0; i < n; i++ {
			channel := int64(10)
			if author == 1 {
				channel = 20
			}
			env.insert(t, id, channel, author, t0+id, withContent("one two"))
			id++
		}
	}

	got, err := env.svc.TopBy(ctx, testGuild, models.MetricMessages, models.ScopeGuild, 2, nil, true)
	if err != nil {
		t.Fatalf("TopBy() error = %v", err)
	}
	want := []models.LeaderboardEntry{{ID: 1, Value: 10}, {ID: 2, Value: 7}, {Value: 4, Others: true}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopBy(messages) = %+v, want %+v", got, want)
	}

	words, err := env.svc.TopBy(ctx, testGuild, models.MetricWords, models.ScopeChannel, 5, nil, false)
	if err != nil {
		t.Fatalf("TopBy(words) error = %v", err)
	}
	wantWords := []models.LeaderboardEntry{{ID: 10, Value: 22}, {ID: 20, Value: 20}}
	if !reflect.DeepEqual(words, wantWords) {
		t.Errorf("TopBy(words, channel) = %+v, want %+v", words, wantWords)
	}

	chars, err := env.svc.TopBy(ctx, testGuild, models.MetricCharacters, models.ScopeGuild, 1, nil, false)
	if err != nil {
		t.Fatalf("TopBy(characters) error = %v", err)
	}
	if len(chars) != 1 || chars[0].ID != 1 || chars[0].Value != 60 {
		t.Errorf("TopBy(characters) = %+v, want author 1 with 60", chars)
	}
}

func TestTopBy_Errors(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		guild  int64
		metric models.Metric
		scope  models.Scope
		amount int
		want   error
	}{
		{"zero amount", testGuild, models.MetricMessages, models.ScopeGuild, 0, models.ErrInvalidArgument},
		{"bad metric", testGuild, "emoji", models.ScopeGuild, 3, models.ErrInvalidArgument},
		{"bad scope", testGuild, models.MetricMessages, "server", 3, models.ErrInvalidArgument},
		{"unknown guild", 404, models.MetricMessages, models.ScopeGuild, 3, models.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.TopBy(ctx, tt.guild, tt.metric, tt.scope, tt.amount, nil, true)
			if !errors.Is(err, tt.want) {
				t.Errorf("TopBy() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTopByFiltered(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.insert(t, 1, 10, 100, t0)
	env.insert(t, 2, 10, 100, t0+1)
	env.insert(t, 3, 10, 100, t0+2)
	env.insert(t, 4, 20, 101, t0+3)
	env.insert(t, 5, 20, 101, t0+4)
	env.insert(t, 6, 30, 102, t0+5)

	if err := env.resolver.AddIgnore(ctx, testGuild, nil, ptr[int64](100)); err != nil {
		t.Fatalf("AddIgnore(user) error = %v", err)
	}
	if err := env.resolver.AddIgnore(ctx, testGuild, ptr[int64](30), nil); err != nil {
		t.Fatalf("AddIgnore(channel) error = %v", err)
	}

	got, err := env.svc.TopByFiltered(ctx, testGuild, models.MetricMessages, models.ScopeGuild, 5, nil, true)
	if err != nil {
		t.Fatalf("TopByFiltered() error = %v", err)
	}
	want := []models.LeaderboardEntry{{ID: 101, Value: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopByFiltered() = %+v, want %+v", got, want)
	}

	unfiltered, _ := env.svc.TopBy(ctx, testGuild, models.MetricMessages, models.ScopeGuild, 5, nil, true)
	if len(unfiltered) != 3 {
		t.Errorf("TopBy() len = %d, want 3 (ignores not applied)", len(unfiltered))
	}
}

func TestTopBy_ExcludesBots(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.insert(t, 1, 10, 900, t0, withBot())
	env.insert(t, 2, 10, 900, t0+1, withBot())
	env.insert(t, 3, 20, 100, t0+2)

	got, err := env.svc.TopBy(ctx, testGuild, models.MetricMessages, models.ScopeGuild, 1, nil, false)
	if err != nil {
		t.Fatalf("TopBy() error = %v", err)
	}
	want := []models.LeaderboardEntry{{ID: 100, Value: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopBy() = %+v, want %+v", got, want)
	}

	filtered, err := env.svc.TopByFiltered(ctx, testGuild, models.MetricWords, models.ScopeGuild, 5, nil, true)
	if err != nil {
		t.Fatalf("TopByFiltered() error = %v", err)
	}
	if !reflect.DeepEqual(filtered, want) {
		t.Errorf("TopByFiltered() = %+v, want %+v", filtered, want)
	}

	channels, err := env.svc.TopChannels(ctx, testGuild, nil, 5)
	if err != nil {
		t.Fatalf("TopChannels() error = %v", err)
	}
	wantChannels := []models.LeaderboardEntry{{ID: 20, Value: 1}}
	if !reflect.DeepEqual(channels, wantChannels) {
		t.Errorf("TopChannels() = %+v, want %+v", channels, wantChannels)
	}

	// Bots still count toward plain totals.
	n, err := env.svc.Count(ctx, testGuild, nil, nil, nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Count() = %d, want 3", n)
	}
}
