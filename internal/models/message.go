// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package models

import (
	"fmt"
	"strings"
)

// Message is a single chat message stored in a guild partition.
//
// AliasedAuthorID is the canonical author after alias collapsing. The store
// fills it from AuthorID on insert when it is zero.
type Message struct {
	MessageID       int64   `json:"message_id" validate:"required"`
	GuildID         int64   `json:"guild_id" validate:"required"`
	ChannelID       int64   `json:"channel_id" validate:"required"`
	AuthorID        int64   `json:"author_id" validate:"required"`
	AliasedAuthorID int64   `json:"aliased_author_id,omitempty"`
	Content         *string `json:"content"`
	Epoch           int64   `json:"epoch" validate:"required,gt=0"`
	IsBot           bool    `json:"is_bot"`
	HasEmbed        bool    `json:"has_embed"`
	NumAttachments  int     `json:"num_attachments" validate:"gte=0"`
	CtxID           *int64  `json:"ctx_id,omitempty"`
	Mentions        []int64 `json:"mentions"`
}

// Text returns the content, or "" for a NULL content.
func (m *Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// HasContent reports whether the message has non-blank text.
func (m *Message) HasContent() bool {
	return strings.TrimSpace(m.Text()) != ""
}

// Validate checks the structural invariants the store relies on.
func (m *Message) Validate() error {
	if m.MessageID == 0 || m.GuildID == 0 || m.ChannelID == 0 || m.AuthorID == 0 {
		return fmt.Errorf("%w: message, guild, channel and author ids are required", ErrInvalidArgument)
	}
	if m.Epoch <= 0 {
		return fmt.Errorf("%w: epoch must be positive, got %d", ErrInvalidArgument, m.Epoch)
	}
	if m.NumAttachments < 0 {
		return fmt.Errorf("%w: num_attachments must be >= 0", ErrInvalidArgument)
	}
	return nil
}

// TimeRange is a half-open [Start, End) interval of unix seconds.
// A zero End means unbounded.
type TimeRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// Contains reports whether epoch falls inside the range.
func (tr TimeRange) Contains(epoch int64) bool {
	if epoch < tr.Start {
		return false
	}
	return tr.End == 0 || epoch < tr.End
}

// Validate rejects inverted ranges.
func (tr TimeRange) Validate() error {
	if tr.End != 0 && tr.End <= tr.Start {
		return fmt.Errorf("%w: time range end must be after start", ErrInvalidArgument)
	}
	return nil
}

// MessageFilter selects messages within one guild partition. Nil pointers
// mean "any". AuthorID and ExcludeAuthors match the canonical (aliased)
// author. ExcludeBots drops messages flagged is_bot.
type MessageFilter struct {
	ChannelID       *int64
	AuthorID        *int64
	TimeRange       *TimeRange
	RequireContent  bool
	ExcludeBots     bool
	ExcludeChannels []int64
	ExcludeAuthors  []int64
}
