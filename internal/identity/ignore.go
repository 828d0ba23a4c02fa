// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tomtom215/guildstats/internal/kvstore"
	"github.com/tomtom215/guildstats/internal/models"
)

// ignoreTarget is one (scope, id) pair named by a dual-scope call.
type ignoreTarget struct {
	scope models.IgnoreScope
	id    int64
}

func ignoreTargets(channelID, userID *int64) ([]ignoreTarget, error) {
	if channelID == nil && userID == nil {
		return nil, fmt.Errorf("%w: channel or user id is required", models.ErrInvalidArgument)
	}
	var targets []ignoreTarget
	if channelID != nil {
		targets = append(targets, ignoreTarget{models.IgnoreChannel, *channelID})
	}
	if userID != nil {
		targets = append(targets, ignoreTarget{models.IgnoreUser, *userID})
	}
	return targets, nil
}

// IsIgnored reports whether the channel or the user is on the guild's
// ignore list. At least one of them must be given.
func (r *Resolver) IsIgnored(ctx context.Context, guildID int64, channelID, userID *int64) (bool, error) {
	targets, err := ignoreTargets(channelID, userID)
	if err != nil {
		return false, err
	}
	for _, t := range targets {
		ok, err := r.store.Has(guildID, kvstore.KindIgnore, string(t.scope), idKey(t.id))
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// AddIgnore ignores the given channel and/or user. Adding an existing entry
// is a no-op.
func (r *Resolver) AddIgnore(ctx context.Context, guildID int64, channelID, userID *int64) error {
	targets, err := ignoreTargets(channelID, userID)
	if err != nil {
		return err
	}
	for _, t := range targets {
		if err := r.store.Put(guildID, kvstore.KindIgnore, nil, string(t.scope), idKey(t.id)); err != nil {
			return err
		}
	}
	return nil
}

// RemoveIgnore removes the given entries. It fails with models.ErrNotFound
// only when none of them existed.
func (r *Resolver) RemoveIgnore(ctx context.Context, guildID int64, channelID, userID *int64) error {
	targets, err := ignoreTargets(channelID, userID)
	if err != nil {
		return err
	}
	removed := 0
	for _, t := range targets {
		err := r.store.Delete(guildID, kvstore.KindIgnore, string(t.scope), idKey(t.id))
		switch {
		case err == nil:
			removed++
		case errors.Is(err, models.ErrNotFound):
		default:
			return err
		}
	}
	if removed == 0 {
		return fmt.Errorf("%w: no matching ignore entry", models.ErrNotFound)
	}
	return nil
}

// Ignored lists the guild's ignore entries, channels first.
func (r *Resolver) Ignored(ctx context.Context, guildID int64) ([]models.IgnoreEntry, error) {
	rows, err := r.store.List(ctx, guildID, kvstore.KindIgnore)
	if err != nil {
		return nil, err
	}
	out := make([]models.IgnoreEntry, 0, len(rows))
	for _, row := range rows {
		if len(row.Extra) != 2 {
			return nil, fmt.Errorf("%w: malformed ignore key %v", models.ErrInternal, row.Extra)
		}
		id, err := strconv.ParseInt(row.Extra[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: ignore key %q: %w", models.ErrInternal, row.Extra[1], err)
		}
		out = append(out, models.IgnoreEntry{GuildID: guildID, Scope: models.IgnoreScope(row.Extra[0]), TargetID: id})
	}
	return out, nil
}

// IgnoredIDs splits the ignore list into channel and user ids for query
// filters.
func (r *Resolver) IgnoredIDs(ctx context.Context, guildID int64) (channels, users []int64, err error) {
	entries, err := r.Ignored(ctx, guildID)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range entries {
		switch e.Scope {
		case models.IgnoreChannel:
			channels = append(channels, e.TargetID)
		case models.IgnoreUser:
			users = append(users, e.TargetID)
		}
	}
	return channels, users, nil
}
