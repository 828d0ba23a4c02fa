// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package middleware provides HTTP instrumentation shared by the API router.

PrometheusMetrics wraps a handler and records, per request:

  - guildstats_api_requests_total{method,endpoint,status}
  - guildstats_api_request_duration_seconds{method,endpoint}
  - guildstats_api_active_requests

The endpoint label is the chi route pattern, so it must run inside the chi
router (r.Use) where the pattern is known once the handler returns.

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
