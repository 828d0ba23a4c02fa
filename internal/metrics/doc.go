// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

/*
Package metrics provides Prometheus instrumentation for guildstats.

All collectors are registered on the default registry through promauto and
exposed by the API at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

Message store:
  - guildstats_db_query_duration_seconds{operation}
  - guildstats_db_query_errors_total{operation,error_type}
  - guildstats_partitions

API:
  - guildstats_api_requests_total{method,endpoint,status}
  - guildstats_api_request_duration_seconds{method,endpoint}
  - guildstats_api_active_requests
  - guildstats_api_rate_limit_hits_total{endpoint}

Ingestion:
  - guildstats_ingest_events_total{event,result}
  - guildstats_ingest_processing_duration_seconds
  - guildstats_ingest_deduplicated_total
  - guildstats_circuit_breaker_state{name}
  - guildstats_circuit_breaker_state_transitions_total{name,from_state,to_state}

Analysis and maintenance:
  - guildstats_textanalysis_batches_total{result}
  - guildstats_maintenance_runs_total{task,result}

Error labels use the error taxonomy class (not_found, invalid_argument,
already_exists, internal) rather than raw error strings.
*/
package metrics
