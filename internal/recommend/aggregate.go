// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// NeutralQuality is the quality score of a movie without reviews.
const NeutralQuality = 0.5

// ReviewAggregator folds the reviews of a movie into a quality score in [0, 1].
type ReviewAggregator struct {
	classifier      *SentimentClassifier
	sentimentWeight float64
	ratingWeight    float64
	recency         bool
	halfLife        time.Duration
	trustProvided   bool
	parallelism     int
}

// NewReviewAggregator creates an aggregator. Weights are normalized to sum to 1.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func NewReviewAggregator(classifier *SentimentClassifier, cfg AggregationConfig, parallelism int) *ReviewAggregator {
	sw, rw := cfg.Normalize()
	if parallelism < 1 {
		parallelism = 1
	}
	return &ReviewAggregator{
		classifier:      classifier,
		sentimentWeight: sw,
		ratingWeight:    rw,
		recency:         cfg.RecencyWeighting,
		halfLife:        cfg.RecencyHalfLife,
		trustProvided:   cfg.TrustProvidedSentiment,
		parallelism:     parallelism,
	}
}

type weightedScore struct {
	score  float64
	weight float64
}

// Aggregate returns the quality score of movieID from reviews. Reviews for
// other movies are ignored. With no matching reviews the result is exactly
// NeutralQuality.
//
// The result does not depend on review order: per-review scores are sorted
// before summation so floating point rounding is identical for any
// permutation of the same set.
func (a *ReviewAggregator) Aggregate(movieID string, reviews []Review) float64 {
	matched := make([]*Review, 0, len(reviews))
	for i := range reviews {
		if reviews[i].MovieID == movieID {
			matched = append(matched, &reviews[i])
		}
	}
	if len(matched) == 0 {
		return NeutralQuality
	}

	var newest time.Time
	if a.recency {
		for _, r := range matched {
			if r.Timestamp.After(newest) {
				newest = r.Timestamp
			}
		}
	}

	scores := make([]weightedScore, len(matched))
	for i, r := range matched {
		w := 1.0
		if a.recency {
			w = a.decay(newest.Sub(r.Timestamp))
		}
		scores[i] = weightedScore{score: a.reviewScore(r), weight: w}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score < scores[j].score
		}
		return scores[i].weight < scores[j].weight
	})

	var sum, total float64
	for _, s := range scores {
		sum += s.score * s.weight
		total += s.weight
	}
	if total == 0 {
		return NeutralQuality
	}
	return clamp01(sum / total)
}

// AggregateAll computes quality scores for every movie id in parallel.
func (a *ReviewAggregator) AggregateAll(ctx context.Context, movieIDs []string, reviewsByMovie map[string][]Review) (map[string]float64, error) {
	scores := make([]float64, len(movieIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.parallelism)
	for i, id := range movieIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = a.Aggregate(id, reviewsByMovie[id])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(movieIDs))
	for i, id := range movieIDs {
		out[id] = scores[i]
	}
	return out, nil
}

// reviewScore blends mapped polarity and normalized rating for one review.
func (a *ReviewAggregator) reviewScore(r *Review) float64 {
	var polarity float64
	if a.trustProvided && r.Sentiment.Valid() {
		polarity = r.Sentiment.Polarity()
	} else {
		_, polarity = a.classifier.Classify(r.Text)
	}
	sentiment := clamp01((polarity + 1) / 2)
	rating := clamp01(r.Rating / 10)
	return a.sentimentWeight*sentiment + a.ratingWeight*rating
}

// decay halves a review's weight every halfLife of age. Age is measured from
// the newest review in the set, never from the wall clock.
func (a *ReviewAggregator) decay(age time.Duration) float64 {
	if age <= 0 || a.halfLife <= 0 {
		return 1
	}
	return math.Pow(0.5, float64(age)/float64(a.halfLife))
}
