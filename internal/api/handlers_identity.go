// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/models"
)

func (h *Handler) handleListAliases(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	aliases, err := h.resolver.Aliases(r.Context(), guildID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if aliases == nil {
		aliases = []models.AliasMapping{}
	}
	rw.Success(aliases)
}

// AliasResult reports an alias registration.
type AliasResult struct {
	models.AliasMapping
	Rewritten int64 `json:"rewritten"`
}

// handleAddAlias registers alias_id as a secondary identity of
// canonical_id. With merge, rows already stored under the alias are
// rewritten onto the canonical id.
func (h *Handler) handleAddAlias(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	var req AliasRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(rw, err)
		return
	}

	rewritten, err := h.resolver.AddAlias(r.Context(), guildID, req.CanonicalID, req.AliasID, req.Merge)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Int64("guild_id", guildID).
		Int64("canonical_id", req.CanonicalID).
		Int64("alias_id", req.AliasID).
		Int64("rewritten", rewritten).
		Msg("Alias registered")

	rw.Success(AliasResult{
		AliasMapping: models.AliasMapping{GuildID: guildID, CanonicalID: req.CanonicalID, AliasID: req.AliasID},
		Rewritten:    rewritten,
	})
}

// handleRemoveAlias takes ?canonical= and ?alias=. Rows already rewritten
// stay on the canonical id.
func (h *Handler) handleRemoveAlias(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	canonical, err := requiredQueryID(r, "canonical")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	alias, err := requiredQueryID(r, "alias")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if err := h.resolver.RemoveAlias(r.Context(), guildID, canonical, alias); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.NoContent()
}

func (h *Handler) handleListIgnores(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	entries, err := h.resolver.Ignored(r.Context(), guildID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if entries == nil {
		entries = []models.IgnoreEntry{}
	}
	rw.Success(entries)
}

func (h *Handler) handleAddIgnore(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	var req IgnoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(rw, err)
		return
	}
	if err := h.resolver.AddIgnore(r.Context(), guildID, req.ChannelID, req.UserID); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(req)
}

// handleRemoveIgnore takes ?channel= and/or ?user=.
func (h *Handler) handleRemoveIgnore(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	channelID, err := queryInt64(r, "channel")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	userID, err := queryInt64(r, "user")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if err := h.resolver.RemoveIgnore(r.Context(), guildID, channelID, userID); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.NoContent()
}

func requiredQueryID(r *http.Request, name string) (int64, error) {
	v, err := queryInt64(r, name)
	if err != nil {
		return 0, err
	}
	if v == nil || *v <= 0 {
		return 0, fmt.Errorf("%w: query parameter %s is required", models.ErrInvalidArgument, name)
	}
	return *v, nil
}
