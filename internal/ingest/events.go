// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package ingest

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/guildstats/internal/models"
)

// Kind identifies what happened to a message.
type Kind string

// Event kinds. Each is published on its own topic.
const (
	KindCreated Kind = "message.created"
	KindEdited  Kind = "message.edited"
	KindDeleted Kind = "message.deleted"
)

// Kinds lists every event kind the consumer subscribes to.
var Kinds = []Kind{KindCreated, KindEdited, KindDeleted}

// Metadata keys set on every published watermill message.
const (
	MetadataKind  = "kind"
	MetadataGuild = "guild_id"
)

// ParseKind validates s as an event kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown event kind %q", models.ErrInvalidArgument, s)
}

// Topic returns the topic events of kind travel on.
func Topic(prefix string, kind Kind) string {
	return prefix + "." + string(kind)
}

// PoisonTopic returns the topic failed events are forwarded to.
func PoisonTopic(prefix string) string {
	return prefix + ".poison"
}

// Event is the payload of one ingestion message.
//
// Created events carry the full Message. Edited events carry the new
// Content, which may be null. Deleted events carry only the ids.
type Event struct {
	Kind      Kind            `json:"kind"`
	GuildID   int64           `json:"guild_id"`
	MessageID int64           `json:"message_id"`
	Message   *models.Message `json:"message,omitempty"`
	Content   *string         `json:"content,omitempty"`
}

// NewCreatedEvent wraps msg in a message.created event.
func NewCreatedEvent(msg *models.Message) *Event {
	return &Event{Kind: KindCreated, GuildID: msg.GuildID, MessageID: msg.MessageID, Message: msg}
}

// NewEditedEvent builds a message.edited event.
func NewEditedEvent(guildID, messageID int64, content *string) *Event {
	return &Event{Kind: KindEdited, GuildID: guildID, MessageID: messageID, Content: content}
}

// NewDeletedEvent builds a message.deleted event.
func NewDeletedEvent(guildID, messageID int64) *Event {
	return &Event{Kind: KindDeleted, GuildID: guildID, MessageID: messageID}
}

// Validate checks that the event is internally consistent.
func (e *Event) Validate() error {
	if _, err := ParseKind(string(e.Kind)); err != nil {
		return err
	}
	if e.GuildID <= 0 || e.MessageID <= 0 {
		return fmt.Errorf("%w: event needs positive guild and message ids", models.ErrInvalidArgument)
	}
	if e.Kind != KindCreated {
		return nil
	}
	if e.Message == nil {
		return fmt.Errorf("%w: %s event without a message", models.ErrInvalidArgument, e.Kind)
	}
	if e.Message.GuildID != e.GuildID || e.Message.MessageID != e.MessageID {
		return fmt.Errorf("%w: event ids do not match the message", models.ErrInvalidArgument)
	}
	return e.Message.Validate()
}

// DedupKey identifies a delivery for duplicate detection. Creates and
// deletes are keyed by guild, message and kind since each happens once per
// message. Edits may repeat, so they also carry the watermill message id.
func (e *Event) DedupKey(uuid string) string {
	key := strconv.FormatInt(e.GuildID, 10) + "/" + strconv.FormatInt(e.MessageID, 10) + "/" + string(e.Kind)
	if e.Kind == KindEdited {
		key += "/" + uuid
	}
	return key
}

// EncodeEvent serializes ev.
func EncodeEvent(ev *Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DecodeEvent parses and validates a payload.
func DecodeEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: malformed event: %v", models.ErrInvalidArgument, err)
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
