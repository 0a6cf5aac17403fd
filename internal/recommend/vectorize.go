// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

// YearRange is the observed release year span of a catalog.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// YearRangeOf returns the release year span of the catalog.
func YearRangeOf(catalog []Movie) (YearRange, error) {
	if len(catalog) == 0 {
		return YearRange{}, ErrEmptyCatalog
	}
	r := YearRange{Min: catalog[0].ReleaseYear, Max: catalog[0].ReleaseYear}
	for i := 1; i < len(catalog); i++ {
		y := catalog[i].ReleaseYear
		if y < r.Min {
			r.Min = y
		}
		if y > r.Max {
			r.Max = y
		}
	}
	return r, nil
}

// normalize maps year into [0, 1]. A single-year range maps to 0.5.
func (r YearRange) normalize(year int) float64 {
	if r.Max <= r.Min {
		return 0.5
	}
	return clamp01(float64(year-r.Min) / float64(r.Max-r.Min))
}

// FeatureVectorizer encodes movies against one vocabulary version and one
// year range.
type FeatureVectorizer struct {
	vocab *GenreVocabulary
	years YearRange
}

// NewFeatureVectorizer creates a vectorizer.
func NewFeatureVectorizer(vocab *GenreVocabulary, years YearRange) *FeatureVectorizer {
	return &FeatureVectorizer{vocab: vocab, years: years}
}

// Vocabulary returns the vocabulary the vectorizer encodes against.
func (f *FeatureVectorizer) Vocabulary() *GenreVocabulary {
	return f.vocab
}

// Dimension returns the vector length: one slot per genre plus rating and year.
func (f *FeatureVectorizer) Dimension() int {
	return f.vocab.Len() + 2
}

// Vectorize encodes a movie. Genres missing from the vocabulary are ignored.
// A movie with no genres gets an all-zero genre block.
//
//nolint:gocritic // hugeParam: movie passed by value, never mutated
func (f *FeatureVectorizer) Vectorize(m Movie) FeatureVector {
	n := f.vocab.Len()
	values := make([]float64, n+2)
	for _, g := range m.Genres {
		if i, ok := f.vocab.Index(g); ok {
			values[i] = 1
		}
	}
	values[n] = clamp01(m.Rating / 10)
	values[n+1] = f.years.normalize(m.ReleaseYear)

	return FeatureVector{Values: values, VocabularyVersion: f.vocab.Version()}
}
