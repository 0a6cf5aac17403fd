// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/eventprocessor"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
)

// Classify labels free text with the current lexicon without storing it.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.ClassifyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	classifier := h.engine.Classifier()
	label, polarity := classifier.Classify(req.Text)
	respondSuccess(w, http.StatusOK, models.ClassifyResponse{
		Label:          label,
		Polarity:       polarity,
		Tokens:         len(recommend.Tokenize(req.Text)),
		LexiconVersion: classifier.LexiconVersion(),
	}, start, false)
}

// GetLexicon describes the published lexicon and how many stored reviews
// still carry a label from an older version.
func (h *Handler) GetLexicon(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	lex := h.engine.Lexicon()

	stale, err := h.store.StaleReviews(r.Context(), lex.Version())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, models.LexiconInfo{
		Version:  lex.Version(),
		Size:     lex.Len(),
		Backfill: len(stale),
	}, start, false)
}

// UpdateLexicon merges the posted entries into the current lexicon and
// publishes the result as the next version. Stored reviews are reclassified
// asynchronously; the response reports how many are pending.
func (h *Handler) UpdateLexicon(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.LexiconUpdateRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	lex := h.engine.PublishLexicon(req.Entries)
	metrics.SetLexicon(lex.Version(), lex.Len())
	logger := logging.Ctx(r.Context())

	if h.lexicons != nil {
		if _, err := h.lexicons.Save(r.Context(), lex); err != nil {
			logger.Error().Err(err).Uint64("version", lex.Version()).Msg("Failed to save lexicon snapshot")
		} else if keep := h.lexiconKeep(); keep > 0 {
			if err := h.lexicons.Prune(r.Context(), keep); err != nil {
				logger.Warn().Err(err).Msg("Failed to prune lexicon snapshots")
			}
		}
	}

	if h.events != nil {
		if err := h.events.PublishLexicon(r.Context(), eventprocessor.NewLexiconPublished(lex)); err != nil {
			logger.Warn().Err(err).Uint64("version", lex.Version()).Msg("Failed to publish lexicon event")
		}
	}

	h.ClearCache()

	stale, err := h.store.StaleReviews(r.Context(), lex.Version())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	logger.Info().
		Uint64("version", lex.Version()).
		Int("terms", lex.Len()).
		Int("added", len(req.Entries)).
		Int("stale_reviews", len(stale)).
		Msg("Lexicon published")

	respondSuccess(w, http.StatusAccepted, models.LexiconInfo{
		Version:  lex.Version(),
		Size:     lex.Len(),
		Backfill: len(stale),
	}, start, false)
}

// BackfillStatus reports the current or most recent reclassification run.
func (h *Handler) BackfillStatus(w http.ResponseWriter, r *http.Request) {
	if h.backfill == nil {
		respondError(w, http.StatusNotFound, codeNotFound, "Backfill is not enabled", nil)
		return
	}
	respondSuccess(w, http.StatusOK, h.backfill.Status(), time.Now(), false)
}
