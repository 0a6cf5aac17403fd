// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// Health reports database reachability, the published lexicon and the
// catalog size. A failing database yields status "degraded" with 200 so
// load balancers use /health/ready for routing decisions.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil

	catalogSize := 0
	if dbConnected {
		if movies, err := h.catalog.Catalog(r.Context()); err == nil {
			catalogSize = len(movies)
		}
	}

	status := "healthy"
	if !dbConnected {
		status = "degraded"
	}

	respondSuccess(w, http.StatusOK, models.HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseConnected: dbConnected,
		LexiconVersion:    h.engine.Lexicon().Version(),
		CatalogSize:       catalogSize,
		Uptime:            time.Since(h.startTime).Seconds(),
	}, start, false)
}

// HealthLive always succeeds while the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Now(), false)
}

// HealthReady returns 503 until the database answers and the read breaker is
// closed.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	dbConnected := h.store != nil && h.store.Ping(r.Context()) == nil
	breaker := h.catalog.State()
	ready := dbConnected && breaker != "open"

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, status, map[string]interface{}{
		"ready":              ready,
		"database_connected": dbConnected,
		"circuit_breaker":    breaker,
	}, start, false)
}

// PerformanceStats returns per-route latency percentiles over the recent
// request window.
func (h *Handler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	hits, misses, size := h.cache.Stats()
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"routes":  h.latency.Stats(),
		"samples": h.latency.Len(),
		"cache": map[string]interface{}{
			"hits":   hits,
			"misses": misses,
			"size":   size,
		},
	}, start, false)
}
