// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tomtom215/guildstats/internal/models"
)

// Timezone offsets accepted for a guild, in hours from UTC.
const (
	MinTimezoneOffset = -12
	MaxTimezoneOffset = 14
)

// ValidateTimezoneOffset rejects offsets outside [-12, 14].
func ValidateTimezoneOffset(hours int) error {
	if hours < MinTimezoneOffset || hours > MaxTimezoneOffset {
		return fmt.Errorf("%w: timezone offset %d outside [%d, %d]",
			models.ErrInvalidArgument, hours, MinTimezoneOffset, MaxTimezoneOffset)
	}
	return nil
}

// normalizeConfig validates a setting and returns its canonical form.
func normalizeConfig(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	switch key {
	case models.ConfigTimezone:
		hours, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("%w: timezone must be an integer hour offset", models.ErrInvalidArgument)
		}
		if err := ValidateTimezoneOffset(hours); err != nil {
			return "", err
		}
		return strconv.Itoa(hours), nil
	case models.ConfigPaused:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("%w: paused must be a boolean", models.ErrInvalidArgument)
		}
		return strconv.FormatBool(b), nil
	case models.ConfigStopword:
		words := strings.Fields(strings.ToLower(value))
		if len(words) == 0 {
			return "", fmt.Errorf("%w: stopword list is empty", models.ErrInvalidArgument)
		}
		return strings.Join(words, " "), nil
	default:
		return "", fmt.Errorf("%w: unknown config key %q", models.ErrInvalidArgument, key)
	}
}

// SetConfig validates and stores one guild setting.
func (s *Store) SetConfig(guildID int64, key, value string) (models.ConfigEntry, error) {
	normalized, err := normalizeConfig(key, value)
	if err != nil {
		return models.ConfigEntry{}, err
	}
	if err := s.Put(guildID, KindConfig, []byte(normalized), key); err != nil {
		return models.ConfigEntry{}, err
	}
	return models.ConfigEntry{GuildID: guildID, Key: key, Value: normalized}, nil
}

// GetConfig returns one setting or models.ErrNotFound.
func (s *Store) GetConfig(guildID int64, key string) (models.ConfigEntry, error) {
	value, err := s.Get(guildID, KindConfig, key)
	if err != nil {
		return models.ConfigEntry{}, err
	}
	return models.ConfigEntry{GuildID: guildID, Key: key, Value: string(value)}, nil
}

// DeleteConfig removes one setting.
func (s *Store) DeleteConfig(guildID int64, key string) error {
	return s.Delete(guildID, KindConfig, key)
}

// ListConfig returns every setting of the guild.
func (s *Store) ListConfig(ctx context.Context, guildID int64) ([]models.ConfigEntry, error) {
	rows, err := s.List(ctx, guildID, KindConfig)
	if err != nil {
		return nil, err
	}
	out := make([]models.ConfigEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.ConfigEntry{GuildID: guildID, Key: strings.Join(r.Extra, keySep), Value: string(r.Value)})
	}
	return out, nil
}

// TimezoneOffset returns the guild's offset in hours, or fallback when unset.
func (s *Store) TimezoneOffset(guildID int64, fallback int) (int, error) {
	entry, err := s.GetConfig(guildID, models.ConfigTimezone)
	if errors.Is(err, models.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return 0, err
	}
	hours, err := strconv.Atoi(entry.Value)
	if err != nil {
		return 0, fmt.Errorf("%w: stored timezone %q: %w", models.ErrInternal, entry.Value, err)
	}
	return hours, nil
}

// Paused reports whether ingestion is paused for the guild.
func (s *Store) Paused(guildID int64) (bool, error) {
	entry, err := s.GetConfig(guildID, models.ConfigPaused)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return entry.Value == "true", nil
}

// Stopwords returns the guild's extra stopwords.
func (s *Store) Stopwords(guildID int64) ([]string, error) {
	entry, err := s.GetConfig(guildID, models.ConfigStopword)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return strings.Fields(entry.Value), nil
}
