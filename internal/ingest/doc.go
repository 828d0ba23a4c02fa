// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package ingest feeds chat events into the message store.

# Architecture

	chat client -> Publisher -> topic <prefix>.<kind> -> Router -> Writer -> DuckDB
	                            (gochannel or NATS)      |
	                                                     +-> <prefix>.poison

Three event kinds travel on separate topics: message.created,
message.edited and message.deleted. Payloads are JSON encoded Event values
and every watermill message id is a ULID.

# Router middleware

From the outside in:
  - PoisonQueue: events that still fail after retries are forwarded to the
    poison topic and acknowledged.
  - Deduplicator: redeliveries are dropped by a key of guild, message and
    kind, backed by an in-memory LRU (internal/cache).
  - Retry: exponential backoff for internal errors.
  - Recoverer: handler panics become errors.

Caller errors (unknown partition, malformed payload) and events for paused
guilds are logged, counted and acknowledged, since a redelivery cannot fix
them.

# Writer

Writer is shared with the HTTP API. It refuses writes to paused guilds,
attributes new messages to their canonical author, and wraps every store
call in a gobreaker circuit breaker that only counts internal errors.

# Transports

  - gochannel: in-process, the default. Publishing before the router is
    running loses the event.
  - nats: core NATS through watermill-nats with JetStream disabled, either
    against an external server or an embedded nats-server.
*/
package ingest
