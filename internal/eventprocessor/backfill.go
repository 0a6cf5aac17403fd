// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// BackfillStore is the review storage a backfill reads and writes.
type BackfillStore interface {
	SentimentStore
	StaleReviews(ctx context.Context, version uint64) ([]string, error)
	GetReview(ctx context.Context, id string) (*recommend.Review, error)
}

// BackfillStatus describes the current or most recent run.
type BackfillStatus struct {
	Running    bool      `json:"running"`
	Version    uint64    `json:"version"`
	Total      int       `json:"total"`
	Processed  int       `json:"processed"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
}

// Backfill reclassifies stored reviews whose label predates the current
// lexicon. Reviews are always reclassified from their text. Runs are
// serialized and paced by a token bucket.
type Backfill struct {
	store   BackfillStore
	engine  ClassifierSource
	limiter *rate.Limiter
	invalid Invalidator

	run    sync.Mutex
	mu     sync.RWMutex
	status BackfillStatus
}

// NewBackfill builds a backfill limited to perSecond reviews with the given
// burst. A non-positive perSecond disables pacing.
func NewBackfill(store BackfillStore, engine ClassifierSource, perSecond float64, burst int, invalidator Invalidator) *Backfill {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &Backfill{
		store:   store,
		engine:  engine,
		limiter: rate.NewLimiter(limit, burst),
		invalid: invalidator,
	}
}

// Status returns a copy of the current status.
func (b *Backfill) Status() BackfillStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// Run reclassifies every stale review and returns how many were updated.
// Reviews deleted mid-run are skipped.
func (b *Backfill) Run(ctx context.Context) (int, error) {
	b.run.Lock()
	defer b.run.Unlock()

	classifier := b.engine.Classifier()
	version := classifier.LexiconVersion()

	ids, err := b.store.StaleReviews(ctx, version)
	if err != nil {
		return 0, fmt.Errorf("list stale reviews: %w", err)
	}

	b.update(func(s *BackfillStatus) {
		*s = BackfillStatus{Running: true, Version: version, Total: len(ids), StartedAt: time.Now().UTC()}
	})

	processed, runErr := b.reclassify(ctx, classifier, version, ids)

	if processed > 0 && b.invalid != nil {
		b.invalid.Clear()
	}
	b.update(func(s *BackfillStatus) {
		s.Running = false
		s.Processed = processed
		s.FinishedAt = time.Now().UTC()
		if runErr != nil {
			s.LastError = runErr.Error()
		}
	})

	if runErr != nil {
		logging.Ctx(ctx).Warn().Err(runErr).
			Uint64("lexicon_version", version).
			Int("processed", processed).
			Int("total", len(ids)).
			Msg("Backfill stopped early")
	}
	return processed, runErr
}

func (b *Backfill) reclassify(ctx context.Context, classifier *recommend.SentimentClassifier, version uint64, ids []string) (int, error) {
	processed := 0
	for _, id := range ids {
		if err := b.limiter.Wait(ctx); err != nil {
			return processed, err
		}

		review, err := b.store.GetReview(ctx, id)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return processed, fmt.Errorf("load review %s: %w", id, err)
		}

		label, polarity := classifier.Classify(review.Text)
		err = b.store.UpdateReviewSentiment(ctx, id, label, polarity, version)
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return processed, fmt.Errorf("update review %s: %w", id, err)
		}

		processed++
		metrics.BackfillProcessed.Inc()
		metrics.RecordClassification(label.String())
		b.update(func(s *BackfillStatus) { s.Processed = processed })
	}
	return processed, nil
}

func (b *Backfill) update(fn func(*BackfillStatus)) {
	b.mu.Lock()
	fn(&b.status)
	b.mu.Unlock()
}
