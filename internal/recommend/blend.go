// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import "fmt"

// CombineFunc blends a pairwise similarity and a quality score, both in
// [0, 1], into a ranking score. Results are clamped to [0, 1] by the engine.
type CombineFunc func(similarity, quality float64) float64

// Multiply is the default blend.
func Multiply(similarity, quality float64) float64 {
	return similarity * quality
}

// SimilarityOnly ignores review quality.
func SimilarityOnly(similarity, _ float64) float64 {
	return similarity
}

// WeightedMean returns a blend giving similarity weight w and quality 1-w.
func WeightedMean(w float64) CombineFunc {
	return func(similarity, quality float64) float64 {
		return w*similarity + (1-w)*quality
	}
}

// CombineFuncFor resolves the configured combine function.
//
//nolint:gocritic // hugeParam: cfg passed by value for immutability
func CombineFuncFor(cfg RankingConfig) (CombineFunc, error) {
	switch cfg.CombineFn {
	case CombineMultiply, "":
		return Multiply, nil
	case CombineSimilarity:
		return SimilarityOnly, nil
	case CombineWeightedMean:
		return WeightedMean(cfg.SimilarityWeight), nil
	default:
		return nil, fmt.Errorf("%w: unknown combine function %q", ErrInvalidConfiguration, cfg.CombineFn)
	}
}
