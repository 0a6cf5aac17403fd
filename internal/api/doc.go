// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api provides the HTTP interface for catalog browsing, review
ingestion, recommendations and lexicon management.

Routing:

The chi router mounts everything under /api/v1:

	GET  /health                        liveness plus database and lexicon state
	GET  /health/live, /health/ready
	GET  /stats/performance             per-route latency percentiles
	GET  /movies                        catalog ordered by id
	POST /movies                        add a movie
	GET  /movies/{id}
	GET  /movies/{id}/reviews
	GET  /movies/{id}/quality           aggregated review quality
	GET  /movies/{id}/recommendations   ?k= similar movies
	POST /reviews                       store and queue for classification
	POST /recommendations/profile       {likedIds, k}
	POST /recommendations/preferences   {text, n}
	POST /sentiment/classify            {text}
	GET  /lexicon                       version, size, pending backfill
	POST /lexicon                       merge terms and publish a new version
	GET  /lexicon/backfill              status of the reclassification run

GET /metrics serves Prometheus metrics outside the versioned prefix.

Middleware, outermost first: RequestID, RealIP, Recoverer,
PrometheusMetrics, the latency monitor and CORS on every route; security
headers and gzip on /api/v1; per-IP rate limits on POST routes.

Response Format:

Every response uses models.APIResponse:

	{
	  "status": "success",
	  "data": [...],
	  "metadata": {"timestamp": "...", "query_time_ms": 3, "cached": true}
	}

Errors set status to "error" and carry error.code and error.message.

Caching:

Read endpoints that run the ranking engine are cached in an LRU keyed by
route, parameters, lexicon version and catalog data version, so a lexicon
publish or a catalog write can never serve stale results. The cache is also
cleared whenever a review is classified. Hits are reported in
metadata.cached and the X-Cache header.

Review Ingestion:

POST /reviews stores the review and publishes a ReviewIngested event through
the write-ahead outbox. Classification happens asynchronously in the event
processor; the response carries the label computed inline for the caller.

Thread Safety:

Handler is safe for concurrent use. The engine swaps lexicons atomically and
the response cache is internally locked.
*/
package api
