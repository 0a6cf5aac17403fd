// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"math"
	"runtime"
	"time"
)

// Combine function names accepted by RankingConfig.CombineFn.
const (
	CombineMultiply     = "multiply"
	CombineWeightedMean = "weighted_mean"
	CombineSimilarity   = "similarity"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Sentiment holds the classifier thresholds.
	Sentiment SentimentConfig `json:"sentiment"`

	// Aggregation controls how reviews fold into a quality score.
	Aggregation AggregationConfig `json:"aggregation"`

	// Ranking controls score blending and result size.
	Ranking RankingConfig `json:"ranking"`

	// Diversity controls the optional MMR reranking pass.
	Diversity DiversityConfig `json:"diversity"`
}

// SentimentConfig contains classifier thresholds.
type SentimentConfig struct {
	// PositiveThreshold: polarity strictly above this is positive.
	// Default: 0.15.
	PositiveThreshold float64 `json:"positive_threshold"`

	// NegativeThreshold: polarity strictly below this is negative.
	// Default: -0.15.
	NegativeThreshold float64 `json:"negative_threshold"`
}

// AggregationConfig contains review aggregation parameters.
type AggregationConfig struct {
	// SentimentWeight is the weight of the mapped polarity in a review score.
	// Default: 0.5.
	SentimentWeight float64 `json:"sentiment_weight"`

	// RatingWeight is the weight of the normalized review rating.
	// Default: 0.5.
	RatingWeight float64 `json:"rating_weight"`

	// RecencyWeighting enables exponential decay by review age.
	// Default: false.
	RecencyWeighting bool `json:"recency_weighting"`

	// RecencyHalfLife is the age at which a review counts half as much as the
	// newest review in the same set.
	// Default: 720h.
	RecencyHalfLife time.Duration `json:"recency_half_life"`

	// TrustProvidedSentiment uses a valid label already present on a review
	// instead of classifying its text.
	// Default: false.
	TrustProvidedSentiment bool `json:"trust_provided_sentiment"`
}

// Normalize returns the sentiment and rating weights scaled to sum to 1.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (a AggregationConfig) Normalize() (sentiment, rating float64) {
	sum := a.SentimentWeight + a.RatingWeight
	if sum == 0 {
		return 0.5, 0.5
	}
	return a.SentimentWeight / sum, a.RatingWeight / sum
}

// RankingConfig contains ranking parameters.
type RankingConfig struct {
	// CombineFn selects how similarity and quality blend.
	// One of multiply, weighted_mean, similarity. Default: multiply.
	CombineFn string `json:"combine_fn"`

	// SimilarityWeight is the similarity share for weighted_mean.
	// Default: 0.7.
	SimilarityWeight float64 `json:"similarity_weight"`

	// TopK bounds the result length. Zero means unbounded.
	// Default: 0.
	TopK int `json:"top_k"`

	// Parallelism bounds the per-movie fan-out.
	// Default: GOMAXPROCS.
	Parallelism int `json:"parallelism"`
}

// DiversityConfig contains parameters for diversity reranking.
type DiversityConfig struct {
	// Enabled turns on MMR reranking after the sort. The reranked list is in
	// selection order, so scores are no longer guaranteed non-increasing.
	// Default: false.
	Enabled bool `json:"enabled"`

	// Lambda balances relevance vs. diversity.
	// 1.0 = pure relevance, 0.0 = pure diversity.
	// Default: 0.7.
	Lambda float64 `json:"lambda"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Sentiment: SentimentConfig{
			PositiveThreshold: 0.15,
			NegativeThreshold: -0.15,
		},
		Aggregation: AggregationConfig{
			SentimentWeight: 0.5,
			RatingWeight:    0.5,
			RecencyHalfLife: 720 * time.Hour,
		},
		Ranking: RankingConfig{
			CombineFn:        CombineMultiply,
			SimilarityWeight: 0.7,
			Parallelism:      runtime.GOMAXPROCS(0),
		},
		Diversity: DiversityConfig{
			Lambda: 0.7,
		},
	}
}

// Validate checks the configuration. Every failure wraps ErrInvalidConfiguration.
//
//nolint:gocyclo // validation needs to check many fields
func (c *Config) Validate() error {
	if isBad(c.Sentiment.PositiveThreshold) || isBad(c.Sentiment.NegativeThreshold) {
		return fmt.Errorf("%w: sentiment thresholds must be finite", ErrInvalidConfiguration)
	}
	if c.Sentiment.PositiveThreshold <= c.Sentiment.NegativeThreshold {
		return fmt.Errorf("%w: sentiment.positive_threshold (%g) must be greater than sentiment.negative_threshold (%g)",
			ErrInvalidConfiguration, c.Sentiment.PositiveThreshold, c.Sentiment.NegativeThreshold)
	}

	sw, rw := c.Aggregation.SentimentWeight, c.Aggregation.RatingWeight
	if isBad(sw) || isBad(rw) || sw < 0 || rw < 0 {
		return fmt.Errorf("%w: aggregation weights must be finite and non-negative, got %g/%g",
			ErrInvalidConfiguration, sw, rw)
	}
	if sw+rw == 0 {
		return fmt.Errorf("%w: aggregation weights cannot both be zero", ErrInvalidConfiguration)
	}
	if c.Aggregation.RecencyWeighting && c.Aggregation.RecencyHalfLife <= 0 {
		return fmt.Errorf("%w: aggregation.recency_half_life must be positive, got %v",
			ErrInvalidConfiguration, c.Aggregation.RecencyHalfLife)
	}

	switch c.Ranking.CombineFn {
	case CombineMultiply, CombineSimilarity:
	case CombineWeightedMean:
		if isBad(c.Ranking.SimilarityWeight) || c.Ranking.SimilarityWeight < 0 || c.Ranking.SimilarityWeight > 1 {
			return fmt.Errorf("%w: ranking.similarity_weight must be in [0, 1], got %g",
				ErrInvalidConfiguration, c.Ranking.SimilarityWeight)
		}
	default:
		return fmt.Errorf("%w: unknown ranking.combine_fn %q", ErrInvalidConfiguration, c.Ranking.CombineFn)
	}
	if c.Ranking.TopK < 0 {
		return fmt.Errorf("%w: ranking.top_k must be non-negative, got %d", ErrInvalidConfiguration, c.Ranking.TopK)
	}
	if c.Ranking.Parallelism < 1 {
		return fmt.Errorf("%w: ranking.parallelism must be positive, got %d", ErrInvalidConfiguration, c.Ranking.Parallelism)
	}

	if isBad(c.Diversity.Lambda) || c.Diversity.Lambda < 0 || c.Diversity.Lambda > 1 {
		return fmt.Errorf("%w: diversity.lambda must be in [0, 1], got %g", ErrInvalidConfiguration, c.Diversity.Lambda)
	}

	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

func isBad(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}
