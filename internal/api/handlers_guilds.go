// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package api

import (
	"net/http"

	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/validation"
)

// GuildResult acknowledges a guild lifecycle operation.
type GuildResult struct {
	GuildID int64  `json:"guild_id"`
	Action  string `json:"action"`
}

// handleCreateGuild creates the guild's partition. It is idempotent unless
// ?strict=true, which answers 409 for an existing partition.
func (h *Handler) handleCreateGuild(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	strict, err := queryBool(r, "strict")
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	if strict {
		err = h.partitions.CreatePartitionStrict(r.Context(), guildID)
	} else {
		err = h.partitions.CreatePartition(r.Context(), guildID)
	}
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("guild_id", guildID).Msg("Guild partition created")
	rw.Created(GuildResult{GuildID: guildID, Action: "created"})
}

// handleDropGuild drops the partition and every message in it. Alias,
// ignore and config rows survive; use purge to remove them too.
func (h *Handler) handleDropGuild(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if err := h.partitions.DropPartition(r.Context(), guildID); err != nil {
		writeServiceError(rw, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("guild_id", guildID).Msg("Guild partition dropped")
	rw.Success(GuildResult{GuildID: guildID, Action: "dropped"})
}

// handlePurgeGuild removes everything stored for the guild.
func (h *Handler) handlePurgeGuild(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if err := h.analytics.Purge(r.Context(), guildID); err != nil {
		writeServiceError(rw, err)
		return
	}
	logging.Ctx(r.Context()).Info().Int64("guild_id", guildID).Msg("Guild purged")
	rw.Success(GuildResult{GuildID: guildID, Action: "purged"})
}

// AddMessagesResult reports a batch insert.
type AddMessagesResult struct {
	Received int `json:"received"`
	Inserted int `json:"inserted"`
}

// handleAddMessages stores a batch. Messages without a guild_id take the
// one from the path. Duplicate ids are skipped and not counted.
func (h *Handler) handleAddMessages(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, err := pathID(r, "guild")
	if err != nil {
		writeServiceError(rw, err)
		return
	}

	var req AddMessagesRequest
	if err := readJSON(r, &req); err != nil {
		writeServiceError(rw, err)
		return
	}
	for i := range req.Messages {
		if req.Messages[i].GuildID == 0 {
			req.Messages[i].GuildID = guildID
		}
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeServiceError(rw, err)
		return
	}

	inserted, err := h.writer.AddMessages(r.Context(), guildID, req.Messages)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Created(AddMessagesResult{Received: len(req.Messages), Inserted: inserted})
}

// MessageResult acknowledges a single message write.
type MessageResult struct {
	GuildID   int64  `json:"guild_id"`
	MessageID int64  `json:"message_id"`
	Action    string `json:"action"`
}

func (h *Handler) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, messageID, err := guildAndMessage(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	var req EditMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(rw, err)
		return
	}
	if err := h.writer.EditMessage(r.Context(), guildID, messageID, req.Content); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(MessageResult{GuildID: guildID, MessageID: messageID, Action: "edited"})
}

func (h *Handler) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	guildID, messageID, err := guildAndMessage(r)
	if err != nil {
		writeServiceError(rw, err)
		return
	}
	if err := h.writer.DeleteMessage(r.Context(), guildID, messageID); err != nil {
		writeServiceError(rw, err)
		return
	}
	rw.Success(MessageResult{GuildID: guildID, MessageID: messageID, Action: "deleted"})
}

func guildAndMessage(r *http.Request) (int64, int64, error) {
	guildID, err := pathID(r, "guild")
	if err != nil {
		return 0, 0, err
	}
	messageID, err := pathID(r, "message")
	if err != nil {
		return 0, 0, err
	}
	return guildID, messageID, nil
}
