// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package metrics registers Marquee's Prometheus metrics.
//
// All collectors are registered on the default registry via promauto and are
// exposed at GET /metrics. Record* helpers keep label sets consistent.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_recommend_duration_seconds",
			Help:    "Time to rank the catalog for one request",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
		[]string{"kind"}, // movie, profile, preferences
	)

	RecommendResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_recommend_results",
			Help:    "Number of recommendations returned per request",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
		},
		[]string{"kind"},
	)

	RecommendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_recommend_errors_total",
			Help: "Total recommendation failures by error kind",
		},
		[]string{"kind", "error_type"},
	)

	// Sentiment Metrics
	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_classifications_total",
			Help: "Total reviews classified, by label",
		},
		[]string{"label"},
	)

	LexiconVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_lexicon_version",
			Help: "Version of the published sentiment lexicon",
		},
	)

	LexiconTerms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_lexicon_terms",
			Help: "Number of terms in the published sentiment lexicon",
		},
	)

	// Review Ingestion Metrics
	ReviewsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_reviews_ingested_total",
			Help: "Total reviews accepted by the API",
		},
	)

	ReviewsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_reviews_rejected_total",
			Help: "Total reviews rejected, by reason",
		},
		[]string{"reason"}, // validation, unknown_movie, duplicate, storage
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_cache_entries",
			Help: "Current number of cached responses",
		},
	)

	// Event Processing Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_events_published_total",
			Help: "Total events published, by topic",
		},
		[]string{"topic"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_events_handled_total",
			Help: "Total events handled, by handler and outcome",
		},
		[]string{"handler", "outcome"}, // success, retry, dropped
	)

	EventHandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_event_handler_duration_seconds",
			Help:    "Event handler processing time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)

	BackfillProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_backfill_reviews_total",
			Help: "Total reviews reclassified by lexicon backfills",
		},
	)

	// WAL Metrics
	WALPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_wal_pending_entries",
			Help: "Unconfirmed review events in the outbox",
		},
	)

	WALOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_wal_operations_total",
			Help: "Outbox operations, by kind",
		},
		[]string{"operation"}, // write, confirm, replay, expire
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)
)

// RecordDBQuery records a DuckDB query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table, truncate(err.Error(), 50)).Inc()
	}
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records one ranking request. errorType is empty on success.
func RecordRecommendation(kind string, duration time.Duration, results int, errorType string) {
	RecommendDuration.WithLabelValues(kind).Observe(duration.Seconds())
	if errorType != "" {
		RecommendErrors.WithLabelValues(kind, errorType).Inc()
		return
	}
	RecommendResults.WithLabelValues(kind).Observe(float64(results))
}

// RecordClassification counts one classified review.
func RecordClassification(label string) {
	ClassificationsTotal.WithLabelValues(label).Inc()
}

// SetLexicon publishes the current lexicon version and size.
func SetLexicon(version uint64, terms int) {
	LexiconVersion.Set(float64(version))
	LexiconTerms.Set(float64(terms))
}

// RecordReviewRejected counts a rejected review.
func RecordReviewRejected(reason string) {
	ReviewsRejected.WithLabelValues(reason).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordEventHandled records one handler invocation.
func RecordEventHandled(handler, outcome string, duration time.Duration) {
	EventsHandled.WithLabelValues(handler, outcome).Inc()
	EventHandlerDuration.WithLabelValues(handler).Observe(duration.Seconds())
}

// RecordCircuitBreakerTransition records a state change. States are the
// gobreaker state names.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch strings.ToLower(state) {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
