// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package api provides the HTTP REST API of guildstats.

Routes live under /api/v1 and are built on chi (see Router.SetupChi).
Every guild-scoped route sits behind API key authentication and a casbin
role check:

	GET    /api/v1/health                                 none
	POST   /api/v1/guilds/{guild}                         admin
	DELETE /api/v1/guilds/{guild}                         admin
	DELETE /api/v1/guilds/{guild}/purge                   admin
	POST   /api/v1/guilds/{guild}/messages                edit
	PATCH  /api/v1/guilds/{guild}/messages/{message}      edit
	DELETE /api/v1/guilds/{guild}/messages/{message}      edit
	GET    /api/v1/guilds/{guild}/count                   view
	GET    /api/v1/guilds/{guild}/words                   view
	GET    /api/v1/guilds/{guild}/letters                 view
	GET    /api/v1/guilds/{guild}/users/{user}/...        view
	GET    /api/v1/guilds/{guild}/channels/top            view
	GET    /api/v1/guilds/{guild}/leaderboard             view
	GET    /api/v1/guilds/{guild}/activity                view
	*      /api/v1/guilds/{guild}/aliases                 view (GET), edit
	*      /api/v1/guilds/{guild}/ignores                 view (GET), edit
	*      /api/v1/guilds/{guild}/config[/{key}]          view (GET), edit

Prometheus metrics are served on /metrics.

Response Format:

All JSON responses use the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}

Errors carry a machine-readable code:

	{"success": false, "error": {"code": "NOT_FOUND", "message": "not found: guild 9"}}

Error mapping:

  - validation failures: 400 VALIDATION_FAILED with per-field details
  - models.ErrInvalidArgument: 400 BAD_REQUEST
  - models.ErrNotFound: 404 NOT_FOUND
  - models.ErrAlreadyExists: 409 CONFLICT
  - ingest.ErrGuildPaused: 409 GUILD_PAUSED
  - ingest.ErrStoreUnavailable: 503 SERVICE_UNAVAILABLE
  - anything else: 500 INTERNAL_ERROR, logged server side

Middleware Stack (outermost first):

 1. RequestIDWithLogging: X-Request-ID and correlation id in the log context
 2. chi RealIP and Recoverer
 3. middleware.PrometheusMetrics
 4. go-chi/cors
 5. optional gzip (server.compression)
 6. httprate per-IP limit on /api/v1
 7. Authenticate and authz.Middleware.Require on guild routes
*/
package api
