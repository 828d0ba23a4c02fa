// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package analytics

import (
	"context"
	"strings"
	"unicode"

	"github.com/samber/mo"

	"github.com/tomtom215/guildstats/internal/models"
)

// Count returns the number of messages matching the optional channel, user
// and time range. Ignore entries are not applied.
func (s *Service) Count(ctx context.Context, guildID int64, channelID, userID *int64, tr *models.TimeRange) (int64, error) {
	author, err := s.canonical(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	return s.store.Count(ctx, guildID, models.MessageFilter{
		ChannelID: channelID,
		AuthorID:  author,
		TimeRange: tr,
	})
}

// MentionsOf flattens the mentions of every message the user sent.
func (s *Service) MentionsOf(ctx context.Context, guildID, userID int64) ([]int64, error) {
	author, err := s.canonical(ctx, guildID, &userID)
	if err != nil {
		return nil, err
	}
	var out []int64
	err = s.store.Scan(ctx, guildID, models.MessageFilter{AuthorID: author}, func(m *models.Message) error {
		out = append(out, m.Mentions...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MostMentioned returns the identity the user mentioned most, ties going to
// the smallest id. None when the user mentioned nobody.
func (s *Service) MostMentioned(ctx context.Context, guildID, userID int64) (mo.Option[models.MentionCount], error) {
	mentions, err := s.MentionsOf(ctx, guildID, userID)
	if err != nil {
		return mo.None[models.MentionCount](), err
	}
	counts := make(map[int64]int64, len(mentions))
	for _, id := range mentions {
		counts[id]++
	}
	return maxCount(counts), nil
}

// MostMentionedBy scans the whole guild and returns the author who mentioned
// targetID most often, ties going to the smallest author id. None when
// nobody mentioned the target.
func (s *Service) MostMentionedBy(ctx context.Context, guildID, targetID int64) (mo.Option[models.MentionCount], error) {
	counts := make(map[int64]int64)
	err := s.store.Scan(ctx, guildID, models.MessageFilter{}, func(m *models.Message) error {
		for _, id := range m.Mentions {
			if id == targetID {
				counts[m.AliasedAuthorID]++
			}
		}
		return nil
	})
	if err != nil {
		return mo.None[models.MentionCount](), err
	}
	return maxCount(counts), nil
}

// maxCount picks the highest count, ties going to the smallest id.
func maxCount(counts map[int64]int64) mo.Option[models.MentionCount] {
	var best models.MentionCount
	found := false
	for id, n := range counts {
		if !found || n > best.Count || (n == best.Count && id < best.ID) {
			best = models.MentionCount{ID: id, Count: n}
			found = true
		}
	}
	if !found {
		return mo.None[models.MentionCount]()
	}
	return mo.Some(best)
}

// WordCount returns the number of whitespace-separated words the guild (or
// one user) has written.
func (s *Service) WordCount(ctx context.Context, guildID int64, userID *int64) (int64, error) {
	return s.sumContent(ctx, guildID, userID, countWords)
}

// CharacterCount returns the number of non-whitespace characters the guild
// (or one user) has written.
func (s *Service) CharacterCount(ctx context.Context, guildID int64, userID *int64) (int64, error) {
	return s.sumContent(ctx, guildID, userID, countCharacters)
}

func (s *Service) sumContent(ctx context.Context, guildID int64, userID *int64, measure func(string) int64) (int64, error) {
	author, err := s.canonical(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	var total int64
	err = s.store.Scan(ctx, guildID, models.MessageFilter{AuthorID: author, RequireContent: true}, func(m *models.Message) error {
		total += measure(m.Text())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

func countWords(s string) int64 {
	return int64(len(strings.Fields(s)))
}

// countCharacters counts runes after removing all Unicode whitespace.
func countCharacters(s string) int64 {
	var n int64
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
