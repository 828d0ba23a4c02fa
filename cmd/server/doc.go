// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package main is the entry point for the guildstats server.

Guildstats stores chat messages per guild in DuckDB and answers analytics
queries over them: message counts, word and character totals, top words,
mention relationships, leaderboards, per-user profiles and gap-filled
activity series. Aliases, ignore lists and guild settings live in badger.

# Application Architecture

The server runs every long-lived component under a Suture v4 tree:

	RootSupervisor ("guildstats")
	├── DataSupervisor ("data-layer")
	│   └── Maintenance (DuckDB checkpoint, badger value log GC on a cron)
	├── MessagingSupervisor ("messaging-layer")
	│   └── Ingest router (watermill over gochannel or NATS, optional)
	└── APISupervisor ("api-layer")
	    └── HTTP server (chi REST API and /metrics)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml, .env and environment
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Storage: DuckDB message store and badger key-value store
 4. Services: identity resolver, text analyzer, analytics, writer
 5. Authorization: Casbin role model and API key authentication
 6. Supervisor tree with the services above

# Configuration

Common environment variables:

	DUCKDB_PATH         DuckDB file (default /data/guildstats.duckdb)
	KVSTORE_PATH        badger directory
	HTTP_PORT           listen port (default 8080)
	API_KEYS            comma-separated role:bcrypt-hash entries
	AUTH_DISABLED       run every request as admin
	INGEST_ENABLED      start the ingest router
	INGEST_TRANSPORT    gochannel or nats
	MAINTENANCE_CRON    maintenance schedule (default "0 3 * * *")
	LOG_LEVEL           trace, debug, info, warn, error

Generate an API key hash with:

	guildstats -hash-key 'my-secret-key'

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains within
the configured shutdown timeout, the ingest router stops consuming, and the
stores are closed after the tree returns.
*/
package main
