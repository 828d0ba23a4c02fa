// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/guildstats/internal/models"
)

var (
	// Message store metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guildstats_db_query_duration_seconds",
			Help:    "Duration of message store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildstats_db_query_errors_total",
			Help: "Total number of failed message store operations",
		},
		[]string{"operation", "error_type"}, // error_type: not_found, invalid_argument, already_exists, internal
	)

	Partitions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "guildstats_partitions",
			Help: "Current number of registered guild partitions",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildstats_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "guildstats_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "guildstats_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildstats_api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildstats_authz_decisions_total",
			Help: "Total number of authorization decisions by action and result",
		},
		[]string{"action", "result"},
	)

	// Ingestion metrics
	IngestEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildstats_ingest_events_total",
			Help: "Total number of ingestion events by outcome",
		},
		[]string{"event", "result"}, // result: applied, duplicate, paused, rejected, failed
	)

	IngestProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guildstats_ingest_processing_duration_seconds",
			Help:    "Time spent handling one ingestion event",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	IngestDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "guildstats_ingest_deduplicated_total",
			Help: "Total number of redelivered events dropped by the deduplicator",
		},
	)

	// Text analysis metrics
	TextAnalysisBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildstats_textanalysis_batches_total",
			Help: "Total number of tokenization batches by outcome",
		},
		[]string{"result"}, // result: ok, failed, abandoned
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "guildstats_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildstats_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Maintenance metrics
	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "guildstats_maintenance_runs_total",
			Help: "Total number of maintenance task runs",
		},
		[]string{"task", "result"},
	)
)

// RecordDBQuery records a message store operation. Errors are labelled by
// their taxonomy class so cardinality stays bounded.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, ErrorClass(err)).Inc()
	}
}

// ErrorClass maps an error to its taxonomy label.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, models.ErrAlreadyExists):
		return "already_exists"
	default:
		return "internal"
	}
}

// SetPartitions publishes the partition registry size.
func SetPartitions(n int) {
	Partitions.Set(float64(n))
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordAuthzDecision counts one enforcement result.
func RecordAuthzDecision(action string, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	AuthzDecisions.WithLabelValues(action, result).Inc()
}

// RecordIngestEvent records the outcome of one ingestion event.
func RecordIngestEvent(event, result string, duration time.Duration) {
	IngestEventsTotal.WithLabelValues(event, result).Inc()
	IngestProcessingDuration.Observe(duration.Seconds())
}

// RecordIngestDeduplicated counts a dropped redelivery.
func RecordIngestDeduplicated() {
	IngestDeduplicated.Inc()
}

// RecordTextBatch records the outcome of one tokenization batch.
func RecordTextBatch(result string) {
	TextAnalysisBatches.WithLabelValues(result).Inc()
}

// RecordCircuitBreakerTransition records a state change and updates the
// state gauge.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordMaintenanceRun records one maintenance task execution.
func RecordMaintenanceRun(task string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	MaintenanceRuns.WithLabelValues(task, result).Inc()
}
