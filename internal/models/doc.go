// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package models defines the HTTP API request and response shapes.

Domain types (Movie, Review, MovieRecommendation) live in internal/recommend and
are returned as-is. This package holds only the wire envelope and the request
bodies, which carry validator tags checked by internal/validation.

Every response uses APIResponse:

	{
	  "status": "success",
	  "data": [...],
	  "metadata": {"timestamp": "2026-01-01T12:00:00Z", "query_time_ms": 3, "cached": true}
	}
*/
package models
