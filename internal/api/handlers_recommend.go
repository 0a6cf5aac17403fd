// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
)

const (
	maxResults       = 100
	recommendTimeout = 10 * time.Second
)

// MovieRecommendations ranks the catalog against one movie.
func (h *Handler) MovieRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	k, err := getIntParam(r, "k", 0, 0, maxResults)
	if err != nil {
		respondParamError(w, "k", err)
		return
	}

	key := h.cacheKey("similar", id, strconv.Itoa(k))
	if h.serveCached(w, key, start) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	catalog, reviews, err := h.catalog.Snapshot(ctx)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	ref, ok := findMovie(catalog, id)
	if !ok {
		respondServiceError(w, r, database.ErrNotFound)
		return
	}

	recs, err := h.engine.Recommend(ctx, ref, catalog, reviews, k)
	metrics.RecordRecommendation("similar", time.Since(start), len(recs), errorType(err))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.cache.Set(key, recs)
	respondSuccess(w, http.StatusOK, recs, start, false)
}

// ProfileRecommendations ranks the catalog against the mean of liked movies.
func (h *Handler) ProfileRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.ProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	liked := append([]string(nil), req.LikedIDs...)
	sort.Strings(liked)
	key := h.cacheKey("profile", strings.Join(liked, ","), strconv.Itoa(req.K))
	if h.serveCached(w, key, start) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	catalog, reviews, err := h.catalog.Snapshot(ctx)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	recs, err := h.engine.RecommendForProfile(ctx, req.LikedIDs, catalog, reviews, req.K)
	metrics.RecordRecommendation("profile", time.Since(start), len(recs), errorType(err))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.cache.Set(key, recs)
	respondSuccess(w, http.StatusOK, recs, start, false)
}

// PreferenceRecommendations matches free text against review text.
func (h *Handler) PreferenceRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.PreferenceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	key := h.cacheKey("preferences", strings.Join(recommend.PreferenceTerms(req.Text), " "), strconv.Itoa(req.N))
	if h.serveCached(w, key, start) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), recommendTimeout)
	defer cancel()

	catalog, reviews, err := h.catalog.Snapshot(ctx)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	recs, err := h.engine.MatchPreferences(ctx, req.Text, catalog, reviews, req.N)
	metrics.RecordRecommendation("preferences", time.Since(start), len(recs), errorType(err))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.cache.Set(key, recs)
	respondSuccess(w, http.StatusOK, recs, start, false)
}

func findMovie(catalog []recommend.Movie, id string) (recommend.Movie, bool) {
	for i := range catalog {
		if catalog[i].ID == id {
			return catalog[i], true
		}
	}
	return recommend.Movie{}, false
}
