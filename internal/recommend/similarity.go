// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"fmt"
	"math"
)

// Similarity returns the cosine similarity of a and b remapped from [-1, 1]
// to [0, 1]. Vectors from different vocabulary versions, or of different
// length, return ErrDimensionMismatch.
//
// Two zero vectors are identical and score 1. A zero vector against a
// non-zero vector has no direction, so its cosine is taken as 0 and it
// scores 0.5.
func Similarity(a, b FeatureVector) (float64, error) {
	if a.Len() != b.Len() || a.VocabularyVersion != b.VocabularyVersion {
		return 0, fmt.Errorf("%w: len %d (vocabulary v%d) vs len %d (vocabulary v%d)",
			ErrDimensionMismatch, a.Len(), a.VocabularyVersion, b.Len(), b.VocabularyVersion)
	}

	var dot, normA, normB float64
	for i := range a.Values {
		dot += a.Values[i] * b.Values[i]
		normA += a.Values[i] * a.Values[i]
		normB += b.Values[i] * b.Values[i]
	}

	switch {
	case normA == 0 && normB == 0:
		return 1, nil
	case normA == 0 || normB == 0:
		return 0.5, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return clamp01((cos + 1) / 2), nil
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
