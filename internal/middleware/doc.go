// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: assigns or propagates X-Request-ID and seeds the logging
    context with request and correlation ids
  - PrometheusMetrics: request count, latency and in-flight gauge labelled
    by chi route pattern
  - LatencyMonitor: rolling window of request samples with per-route
    percentiles and cache hit rate, served at /api/v1/stats/performance

Middleware Stack:

The API router applies, outermost first:

	RequestID              (via chiMiddleware adapter)
	chimiddleware.RealIP
	chimiddleware.Recoverer
	PrometheusMetrics      (via chiMiddleware adapter)
	LatencyMonitor.Middleware
	cors.Handler
	chimiddleware.Compress (/api/v1 only)
	httprate.Limit         (POST routes only)

Usage Example:

	http.HandleFunc("/api/v1/movies",
	    middleware.PrometheusMetrics(middleware.RequestID(handler)),
	)

	func handler(w http.ResponseWriter, r *http.Request) {
	    logging.Ctx(r.Context()).Info().Msg("listing movies")
	}

Route Labels:

Metrics and latency samples use chi's route pattern, which is only known
after routing completes. Middleware therefore reads it after calling the
next handler. Requests that match no route are labelled "unmatched".

Thread Safety:

LatencyMonitor guards its ring buffer with a sync.RWMutex. Prometheus
collectors are safe for concurrent use.
*/
package middleware
