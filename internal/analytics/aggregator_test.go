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

const t0 int64 = 1_700_000_000

func TestCount(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.insert(t, 1, 10, 100, t0)
	env.insert(t, 2, 10, 101, t0+10)
	env.insert(t, 3, 20, 100, t0+20)

	tests := []struct {
		name    string
		channel *int64
		user    *int64
		tr      *models.TimeRange
		want    int64
	}{
		{"all", nil, nil, nil, 3},
		{"channel", ptr[int64](10), nil, nil, 2},
		{"user", nil, ptr[int64](100), nil, 2},
		{"range", nil, nil, &models.TimeRange{Start: t0 + 5, End: t0 + 20}, 1},
		{"nothing", ptr[int64](99), nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.svc.Count(ctx, testGuild, tt.channel, tt.user, tt.tr)
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Count() = %d, want %d", got, tt.want)
			}
		})
	}

	if _, err := env.svc.Count(ctx, 404, nil, nil, nil); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Count() unknown guild error = %v, want ErrNotFound", err)
	}
}

func TestCount_AfterAliasMerge(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.insert(t, 1, 10, 100, t0)
	env.insert(t, 2, 10, 200, t0+1)
	env.insert(t, 3, 10, 200, t0+2)

	before, _ := env.svc.Count(ctx, testGuild, nil, ptr[int64](100), nil)
	if before != 1 {
		t.Fatalf("Count(user) before alias = %d, want 1", before)
	}

	if _, err := env.resolver.AddAlias(ctx, testGuild, 100, 200, true); err != nil {
		t.Fatalf("AddAlias() error = %v", err)
	}

	after, err := env.svc.Count(ctx, testGuild, nil, ptr[int64](100), nil)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if after != 3 {
		t.Errorf("Count(user) after merge = %d, want 3", after)
	}
	viaAlias, _ := env.svc.Count(ctx, testGuild, nil, ptr[int64](200), nil)
	if viaAlias != 3 {
		t.Errorf("Count(alias) after merge = %d, want 3 (resolved to canonical)", viaAlias)
	}
}

func TestAddAlias_UnknownGuildKeepsIdentity(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	if _, err := env.resolver.AddAlias(ctx, 777, 1, 2, true); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("AddAlias() error = %v, want ErrNotFound", err)
	}
	if got, err := env.resolver.Resolve(ctx, 777, 2); err != nil || got != 2 {
		t.Errorf("Resolve(2) = %d, %v; want 2 after failed merge", got, err)
	}
}

func TestMentions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.insert(t, 1, 10, 100, t0, withMentions(7, 8))
	env.insert(t, 2, 10, 100, t0+1, withMentions(8))
	env.insert(t, 3, 10, 100, t0+2)
	env.insert(t, 4, 10, 101, t0+3, withMentions(8, 8))
	env.insert(t, 5, 10, 102, t0+4, withMentions(8, 8))
	env.insert(t, 6, 10, 103, t0+5, withMentions(9))

	got, err := env.svc.MentionsOf(ctx, testGuild, 100)
	if err != nil {
		t.Fatalf("MentionsOf() error = %v", err)
	}
	if !reflect.DeepEqual(got, []int64{7, 8, 8}) {
		t.Errorf("MentionsOf() = %v, want [7 8 8]", got)
	}

	most, err := env.svc.MostMentioned(ctx, testGuild, 100)
	if err != nil {
		t.Fatalf("MostMentioned() error = %v", err)
	}
	if v, ok := most.Get(); !ok || v != (models.MentionCount{ID: 8, Count: 2}) {
		t.Errorf("MostMentioned() = %+v, %v; want 8 x2", v, ok)
	}

	// 100, 101 and 102 each mention 8 twice; the smallest author wins.
	by, err := env.svc.MostMentionedBy(ctx, testGuild, 8)
	if err != nil {
		t.Fatalf("MostMentionedBy() error = %v", err)
	}
	if v, ok := by.Get(); !ok || v != (models.MentionCount{ID: 100, Count: 2}) {
		t.Errorf("MostMentionedBy() = %+v, %v; want author 100 x2", v, ok)
	}

	none, err := env.svc.MostMentioned(ctx, testGuild, 103+1000)
	if err != nil {
		t.Fatalf("MostMentioned() error = %v", err)
	}
	if none.IsPresent() {
		t.Error("MostMentioned() for silent user should be None")
	}
	nobody, _ := env.svc.MostMentionedBy(ctx, testGuild, 12345)
	if nobody.IsPresent() {
		t.Error("MostMentionedBy() for unmentioned target should be None")
	}
}

func TestMaxCount_TieBreak(t *testing.T) {
	t.Parallel()
	for i := 0; i < 20; i++ {
		got, ok := maxCount(map[int64]int64{9: 3, 4: 3, 7: 3, 1: 2}).Get()
		if !ok || got.ID != 4 {
			t.Fatalf("maxCount() = %+v, want id 4", got)
		}
	}
}

func TestWordAndCharacterCount(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.insert(t, 1, 10, 100, t0, withContent("hello  world"))
	env.insert(t, 2, 10, 100, t0+1, withContent(" a\tb\nc "))
	env.insert(t, 3, 10, 101, t0+2, withContent("héllo"))
	env.insert(t, 4, 10, 101, t0+3, withContent("   "))

	words, err := env.svc.WordCount(ctx, testGuild, nil)
	if err != nil {
		t.Fatalf("WordCount() error = %v", err)
	}
	if words != 6 {
		t.Errorf("WordCount() = %d, want 6", words)
	}
	userWords, _ := env.svc.WordCount(ctx, testGuild, ptr[int64](100))
	if userWords != 5 {
		t.Errorf("WordCount(user) = %d, want 5", userWords)
	}

	chars, err := env.svc.CharacterCount(ctx, testGuild, nil)
	if err != nil {
		t.Fatalf("CharacterCount() error = %v", err)
	}
	// helloworld(10) + abc(3) + héllo(5 runes)
	if chars != 18 {
		t.Errorf("CharacterCount() = %d, want 18", chars)
	}
}

func TestCountCharacters(t *testing.T) {
	t.Parallel()
	tests := map[string]int64{
		"":              0,
		"a b":           2,
		"\u00a0x\u3000": 1,
		"日本語":           3,
	}
	for in, want := range tests {
		if got := countCharacters(in); got != want {
			t.Errorf("countCharacters(%q) = %d, want %d", in, got, want)
		}
	}
}
