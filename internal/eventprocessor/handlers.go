// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/wal"
)

// Handler names as registered on the router.
const (
	HandlerClassifyReview  = "classify-review"
	HandlerLexiconBackfill = "lexicon-backfill"
)

// SentimentStore persists derived labels.
type SentimentStore interface {
	UpdateReviewSentiment(ctx context.Context, id string, label recommend.Label, polarity float64, lexiconVersion uint64) error
}

// ClassifierSource hands out a classifier bound to the current lexicon.
// *recommend.Engine satisfies it.
type ClassifierSource interface {
	Classifier() *recommend.SentimentClassifier
	Config() *recommend.Config
}

// Confirmer confirms outbox entries.
type Confirmer interface {
	Confirm(ctx context.Context, entryID string) error
}

// Invalidator drops cached responses that may embed stale labels.
type Invalidator interface {
	Clear()
}

// ClassificationHandler consumes ReviewIngested events.
type ClassificationHandler struct {
	store   SentimentStore
	engine  ClassifierSource
	outbox  Confirmer   // optional
	invalid Invalidator // optional

	// review id + lexicon version already persisted
	seen *cache.LRU[struct{}]

	processed atomic.Int64
	skipped   atomic.Int64
}

// NewClassificationHandler builds the handler. outbox and invalidator may be
// nil.
func NewClassificationHandler(store SentimentStore, engine ClassifierSource, outbox Confirmer, invalidator Invalidator) *ClassificationHandler {
	return &ClassificationHandler{
		store:   store,
		engine:  engine,
		outbox:  outbox,
		invalid: invalidator,
		seen:    cache.NewLRU[struct{}](10000, 10*time.Minute),
	}
}

// Processed returns the number of reviews labelled by this handler.
func (h *ClassificationHandler) Processed() int64 {
	return h.processed.Load()
}

// Skipped returns the number of redelivered events that were already applied.
func (h *ClassificationHandler) Skipped() int64 {
	return h.skipped.Load()
}

// Handle classifies the review text, persists the label, invalidates cached
// responses and confirms the outbox entry.
func (h *ClassificationHandler) Handle(msg *message.Message) error {
	start := time.Now()
	ctx := messageContext(msg)
	entryID := msg.Metadata.Get(MetadataWALEntryID)

	var ev ReviewIngested
	if err := DeserializeEvent(msg.Payload, &ev); err != nil {
		metrics.RecordEventHandled(HandlerClassifyReview, "dropped", time.Since(start))
		h.confirm(ctx, entryID)
		return err
	}

	classifier := h.engine.Classifier()
	version := classifier.LexiconVersion()
	key := ev.ReviewID + "@" + strconv.FormatUint(version, 10)

	if _, ok := h.seen.Get(key); ok {
		h.skipped.Add(1)
		h.confirm(ctx, entryID)
		metrics.RecordEventHandled(HandlerClassifyReview, "duplicate", time.Since(start))
		return nil
	}

	label, polarity := classifier.Classify(ev.Text)
	if h.engine.Config().Aggregation.TrustProvidedSentiment && ev.Provided.Valid() {
		label, polarity = ev.Provided, ev.Provided.Polarity()
	}

	if err := h.store.UpdateReviewSentiment(ctx, ev.ReviewID, label, polarity, version); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.RecordEventHandled(HandlerClassifyReview, "dropped", time.Since(start))
			h.confirm(ctx, entryID)
			return NewPermanentError(ReasonReviewDeleted, fmt.Errorf("review %s: %w", ev.ReviewID, err))
		}
		metrics.RecordEventHandled(HandlerClassifyReview, "retry", time.Since(start))
		return err
	}

	if h.invalid != nil {
		h.invalid.Clear()
	}
	h.confirm(ctx, entryID)
	h.seen.Set(key, struct{}{})
	h.processed.Add(1)

	metrics.RecordClassification(label.String())
	metrics.RecordEventHandled(HandlerClassifyReview, "success", time.Since(start))
	logging.Ctx(ctx).Debug().
		Str("review_id", ev.ReviewID).
		Str("label", label.String()).
		Float64("polarity", polarity).
		Uint64("lexicon_version", version).
		Msg("Review classified")
	return nil
}

func (h *ClassificationHandler) confirm(ctx context.Context, entryID string) {
	if h.outbox == nil || entryID == "" {
		return
	}
	if err := h.outbox.Confirm(ctx, entryID); err != nil && !errors.Is(err, wal.ErrEntryNotFound) {
		logging.Ctx(ctx).Warn().Err(err).Str("entry_id", entryID).Msg("Failed to confirm outbox entry")
	}
}

// BackfillHandler consumes LexiconPublished events and runs a backfill.
type BackfillHandler struct {
	backfill *Backfill
}

// NewBackfillHandler wraps b.
func NewBackfillHandler(b *Backfill) *BackfillHandler {
	return &BackfillHandler{backfill: b}
}

// Handle runs the backfill against whatever lexicon is current. Events for
// superseded versions still trigger a run, which then finds nothing stale
// under the newer version or catches up to it.
func (h *BackfillHandler) Handle(msg *message.Message) error {
	start := time.Now()
	ctx := messageContext(msg)

	var ev LexiconPublished
	if err := DeserializeEvent(msg.Payload, &ev); err != nil {
		metrics.RecordEventHandled(HandlerLexiconBackfill, "dropped", time.Since(start))
		return err
	}

	n, err := h.backfill.Run(ctx)
	if err != nil {
		metrics.RecordEventHandled(HandlerLexiconBackfill, "retry", time.Since(start))
		return err
	}

	metrics.RecordEventHandled(HandlerLexiconBackfill, "success", time.Since(start))
	logging.Ctx(ctx).Info().
		Uint64("announced_version", ev.Version).
		Int("reclassified", n).
		Dur("duration", time.Since(start)).
		Msg("Lexicon backfill complete")
	return nil
}

// RegisterHandlers wires both handlers onto router. backfill may be nil.
func RegisterHandlers(router *Router, sub message.Subscriber, classify *ClassificationHandler, backfill *BackfillHandler) {
	router.AddConsumerHandler(HandlerClassifyReview, TopicReviewIngested, sub, classify.Handle)
	if backfill != nil {
		router.AddConsumerHandler(HandlerLexiconBackfill, TopicLexiconPublished, sub, backfill.Handle)
	}
}

// messageContext returns the message context carrying the publisher's
// correlation id, if any.
func messageContext(msg *message.Message) context.Context {
	ctx := msg.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cid := msg.Metadata.Get(MetadataCorrelationID); cid != "" {
		ctx = logging.ContextWithCorrelationID(ctx, cid)
	}
	return ctx
}
