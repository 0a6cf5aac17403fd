// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package reranking

import (
	"context"
	"strings"

	"github.com/tomtom215/marquee/internal/recommend"
)

// maxRerankSize bounds how many candidates are considered.
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking over genre sets:
//
//	next = argmax lambda*score(i) - (1-lambda)*max sim(i, s) for s in selected
//
// where sim is the Jaccard overlap of the two movies' genres.
//
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	lambda float64
}

// NewMMR creates a new MMR reranker. Lambda is clamped to [0, 1]; 1 keeps the
// input order.
func NewMMR(lambda float64) *MMR {
	switch {
	case lambda < 0:
		lambda = 0
	case lambda > 1:
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Rerank selects up to k candidates. Ties keep input order, so a
// deterministic input yields a deterministic output. A canceled ctx returns
// the selection made so far.
func (m *MMR) Rerank(ctx context.Context, items []recommend.Candidate, k int) []recommend.Candidate {
	if len(items) == 0 || k <= 0 {
		return items
	}
	if len(items) > maxRerankSize {
		items = items[:maxRerankSize]
	}
	k = min(k, len(items))

	if m.lambda >= 1.0 {
		return items[:k]
	}

	genres := make([]map[string]struct{}, len(items))
	for i := range items {
		genres[i] = genreSet(items[i].Movie.Genres)
	}

	// maxSim[i] is the highest overlap between i and anything selected.
	maxSim := make([]float64, len(items))
	taken := make([]bool, len(items))
	selected := make([]recommend.Candidate, 0, k)

	for len(selected) < k && ctx.Err() == nil {
		best, bestScore := -1, 0.0
		for i := range items {
			if taken[i] {
				continue
			}
			score := m.lambda*items[i].Score - (1-m.lambda)*maxSim[i]
			if best < 0 || score > bestScore {
				best, bestScore = i, score
			}
		}

		taken[best] = true
		selected = append(selected, items[best])

		for i := range items {
			if !taken[i] {
				maxSim[i] = max(maxSim[i], jaccard(genres[i], genres[best]))
			}
		}
	}

	return selected
}

func genreSet(genres []string) map[string]struct{} {
	set := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		set[strings.ToLower(g)] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	shared := 0
	for g := range a {
		if _, ok := b[g]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

var _ recommend.Reranker = (*MMR)(nil)
