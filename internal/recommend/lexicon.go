// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"sort"
	"strings"
)

// Lexicon maps normalized terms to signed polarity weights.
// A Lexicon is immutable after construction. Use With to publish a new version.
type Lexicon struct {
	version uint64
	weights map[string]float64
}

// NewLexicon builds a lexicon from entries. Keys are normalized with the same
// rules the tokenizer applies, so "Great!" and "great" land on one entry.
// Entries whose key normalizes to the empty string, or whose weight is not a
// finite number, are dropped. Weights are clamped to [-1, 1], which keeps a
// text's mean polarity in the same range.
func NewLexicon(version uint64, entries map[string]float64) *Lexicon {
	weights := make(map[string]float64, len(entries))
	for term, w := range entries {
		key := normalizeToken(term)
		if key == "" || isBad(w) {
			continue
		}
		weights[key] = max(-1, min(1, w))
	}
	return &Lexicon{version: version, weights: weights}
}

// DefaultLexicon returns version 1 of the built-in word list.
func DefaultLexicon() *Lexicon {
	return NewLexicon(1, map[string]float64{
		"great":     1.0,
		"amazing":   1.0,
		"excellent": 1.0,
		"good":      1.0,
		"wonderful": 1.0,
		"fantastic": 1.0,
		"bad":       -1.0,
		"poor":      -1.0,
		"terrible":  -1.0,
		"awful":     -1.0,
		"horrible":  -1.0,
	})
}

// Weight returns the polarity weight for a normalized term, or 0 when the
// term is not in the lexicon.
func (l *Lexicon) Weight(term string) float64 {
	if l == nil {
		return 0
	}
	return l.weights[term]
}

// Version returns the lexicon version.
func (l *Lexicon) Version() uint64 {
	if l == nil {
		return 0
	}
	return l.version
}

// Len returns the number of terms.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.weights)
}

// With returns a new lexicon holding the receiver's entries overlaid with
// entries, at version+1. The receiver is left untouched.
func (l *Lexicon) With(entries map[string]float64) *Lexicon {
	merged := make(map[string]float64, l.Len()+len(entries))
	if l != nil {
		for k, v := range l.weights {
			merged[k] = v
		}
	}
	for k, v := range entries {
		merged[k] = v
	}
	return NewLexicon(l.Version()+1, merged)
}

// Entries returns a copy of the term weights.
func (l *Lexicon) Entries() map[string]float64 {
	out := make(map[string]float64, l.Len())
	if l == nil {
		return out
	}
	for k, v := range l.weights {
		out[k] = v
	}
	return out
}

// Terms returns the sorted term list.
func (l *Lexicon) Terms() []string {
	terms := make([]string, 0, l.Len())
	if l == nil {
		return terms
	}
	for k := range l.weights {
		terms = append(terms, k)
	}
	sort.Strings(terms)
	return terms
}

// String returns a short description for logs.
func (l *Lexicon) String() string {
	var b strings.Builder
	b.WriteString("lexicon(v")
	b.WriteString(uitoa(l.Version()))
	b.WriteString(", ")
	b.WriteString(uitoa(uint64(l.Len())))
	b.WriteString(" terms)")
	return b.String()
}
