// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/models"
)

func (h *Handler) handleListConfig(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	entries, err := h.settings.ListConfig(r.Context(), guildID)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if entries == nil {
		entries = []models.ConfigEntry{}
	}
	rw.Success(entries)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	entry, err := h.settings.GetConfig(guildID, chi.URLParam(r, "key"))
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(entry)
}

// handleSetConfig stores a setting after the store normalizes it, so the
// response carries the value as it will be read back.
func (h *Handler) handleSetConfig(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	var req ConfigRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(rw, err)
		return
	}
	entry, err := h.settings.SetConfig(guildID, chi.URLParam(r, "key"), req.Value)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Int64("guild_id", guildID).
		Str("key", entry.Key).
		Str("value", entry.Value).
		Msg("Guild config updated")
	rw.Success(entry)
}

func (h *Handler) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if err := h.settings.DeleteConfig(guildID, chi.URLParam(r, "key")); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.NoContent()
}
