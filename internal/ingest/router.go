// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/guildstats/internal/cache"
	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/logging"
	"github.com/tomtom215/guildstats/internal/metrics"
	"github.com/tomtom215/guildstats/internal/models"
)

// Event outcomes recorded in guildstats_ingest_events_total.
const (
	resultApplied  = "applied"
	resultPaused   = "paused"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

// Deduplicator is the watermill ExpiringKeyRepository over the LRU cache.
type Deduplicator struct {
	seen *cache.LRU[string, struct{}]
}

// NewDeduplicator remembers up to capacity keys for ttl.
func NewDeduplicator(capacity int, ttl time.Duration) *Deduplicator {
	return &Deduplicator{seen: cache.New[string, struct{}](capacity, ttl)}
}

// IsDuplicate records key and reports whether it was seen within the TTL.
func (d *Deduplicator) IsDuplicate(_ context.Context, key string) (bool, error) {
	if d.seen.Seen(key, struct{}{}) {
		metrics.RecordIngestDeduplicated()
		return true, nil
	}
	return false, nil
}

// Forget drops key so a redelivery of a failed event is processed again.
func (d *Deduplicator) Forget(key string) {
	d.seen.Remove(key)
}

// dedupKey reads the event key from the payload. Malformed payloads get a
// key of their own so the handler still sees and rejects them.
func dedupKey(msg *message.Message) (string, error) {
	ev, err := DecodeEvent(msg.Payload)
	if err != nil {
		return "invalid/" + msg.UUID, nil
	}
	return ev.DedupKey(msg.UUID), nil
}

// Router consumes ingestion events and applies them through a Writer.
type Router struct {
	cfg       config.IngestConfig
	transport *Transport
	writer    *Writer
	dedup     *Deduplicator
	logger    watermill.LoggerAdapter

	ready     chan struct{}
	readyOnce sync.Once

	mu      sync.Mutex
	running *message.Router
}

// NewRouter wires a Router onto transport.
func NewRouter(cfg *config.IngestConfig, transport *Transport, writer *Writer) *Router {
	return &Router{
		cfg:       *cfg,
		transport: transport,
		writer:    writer,
		dedup:     NewDeduplicator(cfg.DedupCapacity, cfg.DedupTTL),
		logger:    logging.NewWatermillLogger("ingest-router"),
		ready:     make(chan struct{}),
	}
}

// build assembles a fresh watermill router. Middleware runs outermost
// first: poison queue, dedup, retry, recoverer.
func (r *Router) build() (*message.Router, error) {
	wm, err := message.NewRouter(message.RouterConfig{CloseTimeout: r.cfg.CloseTimeout}, r.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	poisonQueue, err := middleware.PoisonQueue(r.transport.Publisher, PoisonTopic(r.cfg.TopicPrefix))
	if err != nil {
		return nil, fmt.Errorf("create poison queue middleware: %w", err)
	}
	dedup := middleware.Deduplicator{
		KeyFactory: dedupKey,
		Repository: r.dedup,
	}
	retry := middleware.Retry{
		MaxRetries:      r.cfg.RetryMaxRetries,
		InitialInterval: r.cfg.RetryInitialInterval,
		MaxInterval:     10 * r.cfg.RetryInitialInterval,
		Multiplier:      2.0,
		Logger:          r.logger,
	}
	wm.AddMiddleware(poisonQueue, dedup.Middleware, retry.Middleware, middleware.Recoverer)

	for _, kind := range Kinds {
		wm.AddConsumerHandler(
			"ingest-"+string(kind),
			Topic(r.cfg.TopicPrefix, kind),
			r.transport.Subscriber,
			r.handle,
		)
	}
	return wm, nil
}

// Run consumes until ctx is cancelled. Each call builds a new watermill
// router, so a supervisor may call Run again after a failure.
func (r *Router) Run(ctx context.Context) error {
	wm, err := r.build()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.running = wm
	r.mu.Unlock()

	go func() {
		select {
		case <-wm.Running():
			r.readyOnce.Do(func() { close(r.ready) })
		case <-ctx.Done():
		}
	}()

	logging.Info().Str("topic_prefix", r.cfg.TopicPrefix).Msg("Ingest router starting")
	err = wm.Run(ctx)

	r.mu.Lock()
	r.running = nil
	r.mu.Unlock()

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ingest router: %w", err)
	}
	return nil
}

// Ready is closed once the first Run has subscribed to every topic.
func (r *Router) Ready() <-chan struct{} {
	return r.ready
}

// Close stops the running router, if any.
func (r *Router) Close() error {
	r.mu.Lock()
	wm := r.running
	r.mu.Unlock()
	if wm == nil {
		return nil
	}
	return wm.Close()
}

// handle applies one event. Caller errors and paused guilds are logged and
// acknowledged since redelivery cannot fix them. Internal errors are
// returned for retry and end up on the poison topic.
func (r *Router) handle(msg *message.Message) error {
	start := time.Now()
	ctx := logging.ContextWithCorrelationID(msg.Context(), correlationID(msg))

	ev, err := DecodeEvent(msg.Payload)
	if err != nil {
		metrics.RecordIngestEvent(msg.Metadata.Get(MetadataKind), resultRejected, time.Since(start))
		logging.Ctx(ctx).Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Rejected malformed event")
		return nil
	}
	ctx = logging.ContextWithGuild(ctx, ev.GuildID)

	err = r.writer.Apply(ctx, ev)
	switch {
	case err == nil:
		metrics.RecordIngestEvent(string(ev.Kind), resultApplied, time.Since(start))
		return nil
	case errors.Is(err, ErrGuildPaused):
		metrics.RecordIngestEvent(string(ev.Kind), resultPaused, time.Since(start))
		logging.Ctx(ctx).Debug().Int64("message_id", ev.MessageID).Msg("Dropped event for paused guild")
		return nil
	case errors.Is(err, models.ErrInvalidArgument), errors.Is(err, models.ErrNotFound):
		metrics.RecordIngestEvent(string(ev.Kind), resultRejected, time.Since(start))
		logging.Ctx(ctx).Warn().Err(err).Int64("message_id", ev.MessageID).Str("kind", string(ev.Kind)).
			Msg("Rejected event")
		return nil
	default:
		metrics.RecordIngestEvent(string(ev.Kind), resultFailed, time.Since(start))
		r.dedup.Forget(ev.DedupKey(msg.UUID))
		return fmt.Errorf("apply %s for message %d: %w", ev.Kind, ev.MessageID, err)
	}
}

func correlationID(msg *message.Message) string {
	if id := middleware.MessageCorrelationID(msg); id != "" {
		return id
	}
	return msg.UUID
}
