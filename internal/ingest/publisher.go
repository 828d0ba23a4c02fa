// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package ingest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/oklog/ulid/v2"

	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/models"
)

// Publisher emits ingestion events. Message ids are ULIDs so they sort by
// publish time.
type Publisher struct {
	pub    message.Publisher
	prefix string
}

// NewPublisher publishes on topics under prefix.
func NewPublisher(pub message.Publisher, prefix string) *Publisher {
	return &Publisher{pub: pub, prefix: prefix}
}

// Publish validates, encodes and sends ev.
func (p *Publisher) Publish(ctx context.Context, ev *Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	data, err := EncodeEvent(ev)
	if err != nil {
		return err
	}

	msg := message.NewMessage(ulid.Make().String(), data)
	msg.Metadata.Set(MetadataKind, string(ev.Kind))
	msg.Metadata.Set(MetadataGuild, strconv.FormatInt(ev.GuildID, 10))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}
	msg.SetContext(ctx)

	if err := p.pub.Publish(Topic(p.prefix, ev.Kind), msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Kind, err)
	}
	return nil
}

// PublishMessage emits a message.created event.
func (p *Publisher) PublishMessage(ctx context.Context, msg *models.Message) error {
	return p.Publish(ctx, NewCreatedEvent(msg))
}

// PublishEdit emits a message.edited event.
func (p *Publisher) PublishEdit(ctx context.Context, guildID, messageID int64, content *string) error {
	return p.Publish(ctx, NewEditedEvent(guildID, messageID, content))
}

// PublishDelete emits a message.deleted event.
func (p *Publisher) PublishDelete(ctx context.Context, guildID, messageID int64) error {
	return p.Publish(ctx, NewDeletedEvent(guildID, messageID))
}
