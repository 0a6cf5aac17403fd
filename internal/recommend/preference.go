// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"math"
	"sort"
	"strings"
)

// PreferenceTerms splits text for preference matching: lowercased and split on
// whitespace, with punctuation kept. "sci-fi" and "scifi" are different terms.
func PreferenceTerms(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// MatchPreferences ranks catalog movies by term-frequency cosine between the
// free-text preferences and the concatenated text of each movie's reviews.
// Movies without review text score 0. Results are sorted by similarity
// descending then id ascending and truncated to n (n <= 0 means all).
func (e *Engine) MatchPreferences(ctx context.Context, text string, catalog []Movie, reviewsByMovie map[string][]Review, n int) ([]MovieRecommendation, error) {
	query := termFrequency(PreferenceTerms(text))
	recs := make([]MovieRecommendation, len(catalog))

	for i := range catalog {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var tokens []string
		for _, r := range reviewsByMovie[catalog[i].ID] {
			tokens = append(tokens, PreferenceTerms(r.Text)...)
		}
		recs[i] = MovieRecommendation{
			Movie:      catalog[i],
			Similarity: clamp01(tfCosine(query, termFrequency(tokens))),
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Similarity != recs[j].Similarity {
			return recs[i].Similarity > recs[j].Similarity
		}
		return recs[i].Movie.ID < recs[j].Movie.ID
	})
	if n > 0 && len(recs) > n {
		recs = recs[:n]
	}

	e.logger.Debug().
		Int("terms", len(query)).
		Int("returned", len(recs)).
		Msg("preference match complete")
	return recs, nil
}

func termFrequency(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// tfCosine is the cosine of two sparse term-frequency vectors. Terms are
// visited in sorted order so the sum is reproducible.
func tfCosine(a, b map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	terms := make([]string, 0, len(a))
	for t := range a {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	var dot, normA float64
	for _, t := range terms {
		x := float64(a[t])
		dot += x * float64(b[t])
		normA += x * x
	}

	others := make([]string, 0, len(b))
	for t := range b {
		others = append(others, t)
	}
	sort.Strings(others)
	var normB float64
	for _, t := range others {
		y := float64(b[t])
		normB += y * y
	}

	if dot == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
