// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

// APIResponse wraps every HTTP response.
//
// Status is "success" or "error". Error is set only for errors.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError is a machine-readable error.
//
// Codes used by the API:
//   - VALIDATION_ERROR: bad query parameter or body field
//   - INVALID_JSON: body could not be decoded
//   - NOT_FOUND: movie does not exist
//   - UNKNOWN_MOVIE_REFERENCE: review or profile names a missing movie
//   - DUPLICATE: id already exists
//   - EMPTY_PROFILE: profile names no movies
//   - DIMENSION_MISMATCH: vectors from different vocabularies were compared
//   - DATABASE_ERROR, SERVICE_UNAVAILABLE, INTERNAL_ERROR
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus is returned by GET /health.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	LexiconVersion    uint64  `json:"lexicon_version"`
	CatalogSize       int     `json:"catalog_size"`
	Uptime            float64 `json:"uptime_seconds"`
}

// QualityResponse is the aggregated review quality of one movie.
type QualityResponse struct {
	MovieID        string                  `json:"movieId"`
	Quality        float64                 `json:"quality"`
	ReviewCount    int                     `json:"reviewCount"`
	Labels         map[recommend.Label]int `json:"labels"`
	LexiconVersion uint64                  `json:"lexiconVersion"`
}

// ClassifyResponse is the result of POST /sentiment/classify.
type ClassifyResponse struct {
	Label          recommend.Label `json:"label"`
	Polarity       float64         `json:"polarity"`
	Tokens         int             `json:"tokens"`
	LexiconVersion uint64          `json:"lexiconVersion"`
}

// LexiconInfo describes the published lexicon.
type LexiconInfo struct {
	Version uint64 `json:"version"`
	Size    int    `json:"size"`
	// Backfill is the number of stored reviews queued for reclassification.
	Backfill int `json:"backfill,omitempty"`
}

// ReviewAccepted is returned by POST /reviews. Classification is asynchronous,
// so the label is the one computed inline for the response only.
type ReviewAccepted struct {
	Review   recommend.Review `json:"review"`
	Label    recommend.Label  `json:"label"`
	Polarity float64          `json:"polarity"`
}
