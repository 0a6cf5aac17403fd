// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/eventprocessor"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
)

// CreateReview stores a review and queues it for classification.
//
// The review is inserted without a label. A supplied sentiment travels on
// the ReviewIngested event and is only persisted when the engine trusts
// provided labels. The response carries the label computed inline so
// callers need not wait for the event processor.
//
// Responses:
//   - 202 when the event was queued
//   - 201 when no event publisher is configured
//   - 422 for an unknown movie id, 409 for a duplicate review id
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.CreateReviewRequest
	if !decodeAndValidate(w, r, &req) {
		metrics.RecordReviewRejected("validation")
		return
	}

	review := recommend.Review{
		ID:        strings.TrimSpace(req.ID),
		MovieID:   strings.TrimSpace(req.MovieID),
		Text:      req.Text,
		Rating:    req.Rating,
		Timestamp: time.Now().UTC(),
	}
	if review.ID == "" {
		review.ID = uuid.NewString()
	}

	if err := h.store.InsertReview(r.Context(), &review); err != nil {
		switch {
		case errors.Is(err, recommend.ErrUnknownMovieReference):
			metrics.RecordReviewRejected("unknown_movie")
		case errors.Is(err, database.ErrDuplicate):
			metrics.RecordReviewRejected("duplicate")
		}
		respondServiceError(w, r, err)
		return
	}
	metrics.ReviewsIngested.Inc()

	label, polarity := h.engine.Classifier().Classify(review.Text)
	if h.engine.Config().Aggregation.TrustProvidedSentiment && req.Sentiment.Valid() {
		label, polarity = req.Sentiment, req.Sentiment.Polarity()
	}

	status := http.StatusCreated
	if h.events != nil {
		status = http.StatusAccepted
		event := review
		event.Sentiment = req.Sentiment
		entryID, err := h.events.PublishReviewIngested(r.Context(), eventprocessor.NewReviewIngested(&event))
		if err != nil {
			// an outbox entry is replayed later; without one the next
			// backfill picks up the unlabelled review
			logging.Ctx(r.Context()).Warn().Err(err).
				Str("review_id", sanitizeLogValue(review.ID)).
				Str("entry_id", entryID).
				Bool("queued", entryID != "").
				Msg("Review stored but publish failed")
		}
	}

	logging.Ctx(r.Context()).Info().
		Str("review_id", sanitizeLogValue(review.ID)).
		Str("movie_id", sanitizeLogValue(review.MovieID)).
		Str("label", label.String()).
		Msg("Review ingested")

	review.Sentiment = label
	respondSuccess(w, status, models.ReviewAccepted{
		Review:   review,
		Label:    label,
		Polarity: polarity,
	}, start, false)
}
