// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

// Package identity manages alias mappings and ignore lists per guild.
//
// Aliases collapse a secondary identity onto a canonical one. Registration
// with merge rewrites stored messages immediately; there is no lazy or
// transitive resolution at query time. Ignore entries never touch stored
// data and only drive query-time filtering.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tomtom215/guildstats/internal/kvstore"
	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/models"
)

// AliasRewriter rewrites the canonical author of stored messages.
type AliasRewriter interface {
	RewriteAliasedAuthor(ctx context.Context, guildID, from, to int64) (int64, error)
}

// Resolver implements alias and ignore management over the config store.
type Resolver struct {
	store    *kvstore.Store
	messages AliasRewriter
}

// NewResolver creates a Resolver.
func NewResolver(store *kvstore.Store, messages AliasRewriter) *Resolver {
	return &Resolver{store: store, messages: messages}
}

func idKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Resolve returns the canonical id registered for rawID, or rawID itself.
func (r *Resolver) Resolve(ctx context.Context, guildID, rawID int64) (int64, error) {
	value, err := r.store.Get(guildID, kvstore.KindAlias, idKey(rawID))
	if errors.Is(err, models.ErrNotFound) {
		return rawID, nil
	}
	if err != nil {
		return 0, err
	}
	canonical, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: stored alias %q: %w", models.ErrInternal, value, err)
	}
	return canonical, nil
}

// AddAlias maps aliasID onto canonicalID. With mergeExisting every stored
// message currently attributed to aliasID is rewritten to canonicalID.
// Re-registering an alias points it at the new canonical id. A failed merge
// restores whatever mapping aliasID had before the call.
func (r *Resolver) AddAlias(ctx context.Context, guildID, canonicalID, aliasID int64, mergeExisting bool) (int64, error) {
	if canonicalID == 0 || aliasID == 0 {
		return 0, fmt.Errorf("%w: canonical and alias ids are required", models.ErrInvalidArgument)
	}
	if canonicalID == aliasID {
		return 0, fmt.Errorf("%w: identity %d cannot alias itself", models.ErrInvalidArgument, aliasID)
	}

	previous, err := r.store.Get(guildID, kvstore.KindAlias, idKey(aliasID))
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return 0, err
	}
	if err := r.store.Put(guildID, kvstore.KindAlias, []byte(idKey(canonicalID)), idKey(aliasID)); err != nil {
		return 0, err
	}

	var rewritten int64
	if mergeExisting {
		n, err := r.messages.RewriteAliasedAuthor(ctx, guildID, aliasID, canonicalID)
		if err != nil {
			if rbErr := r.restoreAlias(guildID, aliasID, previous); rbErr != nil {
				logging.Ctx(ctx).Error().Err(rbErr).
					Int64("guild_id", guildID).
					Int64("alias_id", aliasID).
					Msg("Failed to roll back alias after merge failure")
			}
			return 0, fmt.Errorf("merge alias %d into %d: %w", aliasID, canonicalID, err)
		}
		rewritten = n
	}

	logging.Ctx(ctx).Info().
		Int64("guild_id", guildID).
		Int64("canonical_id", canonicalID).
		Int64("alias_id", aliasID).
		Bool("merge", mergeExisting).
		Int64("rewritten", rewritten).
		Msg("Alias registered")
	return rewritten, nil
}

// restoreAlias puts back the mapping aliasID had before, or removes it if it
// had none.
func (r *Resolver) restoreAlias(guildID, aliasID int64, previous []byte) error {
	if previous == nil {
		return r.store.Delete(guildID, kvstore.KindAlias, idKey(aliasID))
	}
	return r.store.Put(guildID, kvstore.KindAlias, previous, idKey(aliasID))
}

// RemoveAlias deletes the mapping only. Messages already rewritten keep
// their canonical author.
func (r *Resolver) RemoveAlias(ctx context.Context, guildID, canonicalID, aliasID int64) error {
	current, err := r.Resolve(ctx, guildID, aliasID)
	if err != nil {
		return err
	}
	if current != canonicalID || current == aliasID {
		return fmt.Errorf("%w: alias %d -> %d", models.ErrNotFound, aliasID, canonicalID)
	}
	return r.store.Delete(guildID, kvstore.KindAlias, idKey(aliasID))
}

// Aliases lists the guild's alias mappings.
func (r *Resolver) Aliases(ctx context.Context, guildID int64) ([]models.AliasMapping, error) {
	rows, err := r.store.List(ctx, guildID, kvstore.KindAlias)
	if err != nil {
		return nil, err
	}
	out := make([]models.AliasMapping, 0, len(rows))
	for _, row := range rows {
		alias, err := strconv.ParseInt(row.Extra[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: alias key %q: %w", models.ErrInternal, row.Extra[0], err)
		}
		canonical, err := strconv.ParseInt(string(row.Value), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: alias value %q: %w", models.ErrInternal, row.Value, err)
		}
		out = append(out, models.AliasMapping{GuildID: guildID, CanonicalID: canonical, AliasID: alias})
	}
	return out, nil
}

// Canonicalize sets msg.AliasedAuthorID to the canonical id of its author,
// so messages from a registered alias are attributed on arrival.
func (r *Resolver) Canonicalize(ctx context.Context, msg *models.Message) error {
	canonical, err := r.Resolve(ctx, msg.GuildID, msg.AuthorID)
	if err != nil {
		return err
	}
	msg.AliasedAuthorID = canonical
	return nil
}
