// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/metrics"
	"github.com/tomtom215/guildstats/internal/models"
)

// ErrGuildPaused is returned by every Writer method while the guild's
// "paused" config entry is set.
var ErrGuildPaused = errors.New("guild ingestion is paused")

// ErrStoreUnavailable is returned while the write breaker is open.
var ErrStoreUnavailable = fmt.Errorf("%w: message store unavailable", models.ErrInternal)

// MessageStore is the write side of the message store.
type MessageStore interface {
	InsertBatch(ctx context.Context, guildID int64, msgs []models.Message) (int, error)
	EditContent(ctx context.Context, guildID, messageID int64, content *string) error
	Delete(ctx context.Context, guildID, messageID int64) error
}

// GuildSettings reports per-guild ingestion settings.
type GuildSettings interface {
	Paused(guildID int64) (bool, error)
}

// Canonicalizer attributes a message to its canonical author.
type Canonicalizer interface {
	Canonicalize(ctx context.Context, msg *models.Message) error
}

// Writer applies message writes for both the event consumer and the HTTP
// API. Store calls go through a circuit breaker that opens after
// consecutive internal failures. Caller errors such as a missing partition
// never count against it.
type Writer struct {
	store    MessageStore
	settings GuildSettings
	identity Canonicalizer
	breaker  *gobreaker.CircuitBreaker[int]
}

// NewWriter creates a Writer. cfg supplies the breaker thresholds.
func NewWriter(store MessageStore, settings GuildSettings, identity Canonicalizer, cfg *config.IngestConfig) *Writer {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	settingsCB := gobreaker.Settings{
		Name:        "message-store",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, models.ErrInternal)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &Writer{
		store:    store,
		settings: settings,
		identity: identity,
		breaker:  gobreaker.NewCircuitBreaker[int](settingsCB),
	}
}

// BreakerState returns "closed", "half-open" or "open".
func (w *Writer) BreakerState() string {
	return w.breaker.State().String()
}

// AddMessages canonicalizes and stores msgs for guildID, returning how many
// were new.
func (w *Writer) AddMessages(ctx context.Context, guildID int64, msgs []models.Message) (int, error) {
	if err := w.checkPaused(guildID); err != nil {
		return 0, err
	}
	for i := range msgs {
		if msgs[i].GuildID != guildID {
			return 0, fmt.Errorf("%w: message %d belongs to guild %d, not %d",
				models.ErrInvalidArgument, msgs[i].MessageID, msgs[i].GuildID, guildID)
		}
		if err := w.identity.Canonicalize(ctx, &msgs[i]); err != nil {
			return 0, err
		}
	}
	return w.execute(func() (int, error) {
		return w.store.InsertBatch(ctx, guildID, msgs)
	})
}

// EditMessage replaces the content of one message.
func (w *Writer) EditMessage(ctx context.Context, guildID, messageID int64, content *string) error {
	if err := w.checkPaused(guildID); err != nil {
		return err
	}
	_, err := w.execute(func() (int, error) {
		return 0, w.store.EditContent(ctx, guildID, messageID, content)
	})
	return err
}

// DeleteMessage removes one message.
func (w *Writer) DeleteMessage(ctx context.Context, guildID, messageID int64) error {
	if err := w.checkPaused(guildID); err != nil {
		return err
	}
	_, err := w.execute(func() (int, error) {
		return 0, w.store.Delete(ctx, guildID, messageID)
	})
	return err
}

// Apply dispatches ev to the matching write.
func (w *Writer) Apply(ctx context.Context, ev *Event) error {
	switch ev.Kind {
	case KindCreated:
		_, err := w.AddMessages(ctx, ev.GuildID, []models.Message{*ev.Message})
		return err
	case KindEdited:
		return w.EditMessage(ctx, ev.GuildID, ev.MessageID, ev.Content)
	case KindDeleted:
		return w.DeleteMessage(ctx, ev.GuildID, ev.MessageID)
	default:
		return fmt.Errorf("%w: unknown event kind %q", models.ErrInvalidArgument, ev.Kind)
	}
}

func (w *Writer) checkPaused(guildID int64) error {
	paused, err := w.settings.Paused(guildID)
	if err != nil {
		return err
	}
	if paused {
		return ErrGuildPaused
	}
	return nil
}

func (w *Writer) execute(fn func() (int, error)) (int, error) {
	n, err := w.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n, err
}
