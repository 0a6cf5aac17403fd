// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
)

// ListMovies returns the catalog ordered by id.
func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	movies, err := h.catalog.Catalog(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if movies == nil {
		movies = []recommend.Movie{}
	}
	respondSuccess(w, http.StatusOK, movies, start, false)
}

// GetMovie returns one movie.
func (h *Handler) GetMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	movie, err := h.catalog.Movie(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, movie, start, false)
}

// CreateMovie adds a movie to the catalog.
func (h *Handler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.CreateMovieRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	movie := req.Movie()
	if err := h.store.InsertMovie(r.Context(), &movie); err != nil {
		respondServiceError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("movie_id", sanitizeLogValue(movie.ID)).
		Strs("genres", movie.Genres).
		Msg("Movie added")
	respondSuccess(w, http.StatusCreated, movie, start, false)
}

// MovieReviews returns the stored reviews of one movie, oldest first.
func (h *Handler) MovieReviews(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")
	if _, err := h.catalog.Movie(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	reviews, err := h.catalog.Reviews(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []recommend.Review{}
	}
	respondSuccess(w, http.StatusOK, reviews, start, false)
}

// MovieQuality aggregates the reviews of one movie under the current lexicon.
func (h *Handler) MovieQuality(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	key := h.cacheKey("quality", id)
	if h.serveCached(w, key, start) {
		return
	}

	if _, err := h.catalog.Movie(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	reviews, err := h.catalog.Reviews(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	aggregator := h.engine.Aggregator()
	classifier := h.engine.Classifier()
	trust := h.engine.Config().Aggregation.TrustProvidedSentiment

	labels := map[recommend.Label]int{
		recommend.LabelPositive: 0,
		recommend.LabelNeutral:  0,
		recommend.LabelNegative: 0,
	}
	for i := range reviews {
		label := reviews[i].Sentiment
		if !trust || !label.Valid() {
			label, _ = classifier.Classify(reviews[i].Text)
		}
		labels[label]++
	}

	resp := models.QualityResponse{
		MovieID:        id,
		Quality:        aggregator.Aggregate(id, reviews),
		ReviewCount:    len(reviews),
		Labels:         labels,
		LexiconVersion: classifier.LexiconVersion(),
	}
	h.cache.Set(key, resp)
	respondSuccess(w, http.StatusOK, resp, start, false)
}
