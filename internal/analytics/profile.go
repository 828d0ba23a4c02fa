// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/guildstats/internal/database"
	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/models"
)

// Profile summarises one user's activity in the guild. Hours and weekdays
// are taken in the guild's timezone. A user with no messages gets a zero
// profile, not an error.
func (s *Service) Profile(ctx context.Context, guildID, userID int64) (*models.Profile, error) {
	author, err := s.canonical(ctx, guildID, &userID)
	if err != nil {
		return nil, err
	}
	tz, err := s.timezone(guildID)
	if err != nil {
		return nil, err
	}
	zone := time.FixedZone("guild", tz*3600)

	p := &models.Profile{GuildID: guildID, UserID: *author, TopWords: []models.WordCount{}}
	channels := make(map[int64]int64)
	var texts []string
	var hours [24]int64
	var weekdays [7]int64

	err = s.store.Scan(ctx, guildID, models.MessageFilter{AuthorID: author}, func(m *models.Message) error {
		p.Messages++
		if m.HasContent() {
			p.Words += countWords(m.Text())
			p.Characters += countCharacters(m.Text())
			texts = append(texts, m.Text())
		}
		p.TotalMentions += int64(len(m.Mentions))
		channels[m.ChannelID]++
		t := time.Unix(m.Epoch, 0).In(zone)
		hours[t.Hour()]++
		weekdays[t.Weekday()]++
		return nil
	})
	if err != nil {
		return nil, err
	}
	if p.Messages == 0 {
		return p, nil
	}

	if top, ok := maxCount(channels).Get(); ok {
		p.MostActiveChannel = &top.ID
	}
	hour := argmax(hours[:])
	p.MostActiveHour = &hour
	weekday := time.Weekday(argmax(weekdays[:])).String()
	p.MostActiveWeekday = &weekday

	mentioned, err := s.MostMentioned(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if v, ok := mentioned.Get(); ok {
		p.MostMentioned = &v
	}
	mentionedBy, err := s.MostMentionedBy(ctx, guildID, *author)
	if err != nil {
		return nil, err
	}
	if v, ok := mentionedBy.Get(); ok {
		p.MostMentionedBy = &v
	}

	words, err := s.analyzeWords(ctx, guildID, texts, profileTopWords)
	if err != nil {
		return nil, err
	}
	p.TopWords = words.Words
	return p, nil
}

// profileTopWords is how many words a profile lists.
const profileTopWords = 10

// argmax returns the first index holding the largest value.
func argmax(values []int64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}

// TopChannels ranks channels by message count for the guild or one user.
func (s *Service) TopChannels(ctx context.Context, guildID int64, userID *int64, amount int) ([]models.LeaderboardEntry, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive, got %d", models.ErrInvalidArgument, amount)
	}
	author, err := s.canonical(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.store.CountBy(ctx, guildID, database.GroupByChannel, models.MessageFilter{AuthorID: author, ExcludeBots: true})
	if err != nil {
		return nil, err
	}
	return RankTop(counts, amount, false), nil
}

// TopWords returns the most used words of the guild, optionally narrowed to
// one user and one channel, excluding the guild's extra stopwords.
func (s *Service) TopWords(ctx context.Context, guildID int64, userID, channelID *int64, amount int) (models.WordFrequencies, error) {
	if amount <= 0 {
		return models.WordFrequencies{}, fmt.Errorf("%w: amount must be positive, got %d", models.ErrInvalidArgument, amount)
	}
	author, err := s.canonical(ctx, guildID, userID)
	if err != nil {
		return models.WordFrequencies{}, err
	}
	texts, err := s.contents(ctx, guildID, models.MessageFilter{AuthorID: author, ChannelID: channelID})
	if err != nil {
		return models.WordFrequencies{}, err
	}
	return s.analyzeWords(ctx, guildID, texts, amount)
}

// TopLetters counts letter usage across the guild, optionally narrowed to
// one user and one channel. Every letter seen is returned, most used first.
func (s *Service) TopLetters(ctx context.Context, guildID int64, userID, channelID *int64) (models.LetterFrequencies, error) {
	author, err := s.canonical(ctx, guildID, userID)
	if err != nil {
		return models.LetterFrequencies{}, err
	}
	texts, err := s.contents(ctx, guildID, models.MessageFilter{AuthorID: author, ChannelID: channelID})
	if err != nil {
		return models.LetterFrequencies{}, err
	}
	return s.analyzer.LetterFrequencies(ctx, texts)
}

// contents loads the non-empty message texts matching filter.
func (s *Service) contents(ctx context.Context, guildID int64, filter models.MessageFilter) ([]string, error) {
	filter.RequireContent = true
	var texts []string
	err := s.store.Scan(ctx, guildID, filter, func(m *models.Message) error {
		texts = append(texts, m.Text())
		return nil
	})
	return texts, err
}

func (s *Service) analyzeWords(ctx context.Context, guildID int64, texts []string, amount int) (models.WordFrequencies, error) {
	stopwords, err := s.settings.Stopwords(guildID)
	if err != nil {
		return models.WordFrequencies{}, err
	}
	return s.analyzer.Analyze(ctx, texts, amount, stopwords...)
}

// Purge removes the guild's partition, if any, and every alias, ignore and
// config row it owns.
func (s *Service) Purge(ctx context.Context, guildID int64) error {
	if err := s.store.DropPartition(ctx, guildID); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	if err := s.settings.DeleteGuild(guildID); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Int64("guild_id", guildID).Msg("Guild purged")
	return nil
}
