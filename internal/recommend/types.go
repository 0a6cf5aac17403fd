// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"time"
)

// Label is the derived sentiment class of a review.
type Label string

const (
	// LabelPositive marks a review whose polarity exceeds the positive threshold.
	LabelPositive Label = "positive"
	// LabelNeutral marks a review between both thresholds, or with no tokens.
	LabelNeutral Label = "neutral"
	// LabelNegative marks a review whose polarity is below the negative threshold.
	LabelNegative Label = "negative"
)

// Valid reports whether l is one of the three known labels.
func (l Label) Valid() bool {
	switch l {
	case LabelPositive, LabelNeutral, LabelNegative:
		return true
	default:
		return false
	}
}

// Polarity returns the canonical polarity for a label: +1, 0 or -1.
// Used when a caller chooses to trust a label supplied with a review.
func (l Label) Polarity() float64 {
	switch l {
	case LabelPositive:
		return 1
	case LabelNegative:
		return -1
	default:
		return 0
	}
}

// String returns the label as a plain string.
func (l Label) String() string {
	return string(l)
}

// Movie is a catalog entry. Movies are immutable once admitted to the catalog;
// the engine only ever reads them.
type Movie struct {
	// ID is the stable unique identifier.
	ID string `json:"id"`

	// Title is the display title.
	Title string `json:"title"`

	// Overview is free text. Not used by ranking.
	Overview string `json:"overview"`

	// PosterURL is passed through untouched.
	PosterURL string `json:"posterUrl"`

	// Rating is the catalog rating in [0, 10].
	Rating float64 `json:"rating"`

	// Genres is the set of category tags.
	Genres []string `json:"genres"`

	// ReleaseYear is the year of first release.
	ReleaseYear int `json:"releaseYear"`
}

// Review is a user review of a single movie.
type Review struct {
	// ID is the unique review identifier.
	ID string `json:"id"`

	// MovieID must resolve to a Movie.ID in the catalog.
	MovieID string `json:"movieId"`

	// Text is the free-text body. May be empty.
	Text string `json:"text"`

	// Rating is the reviewer's numeric rating in [0, 10].
	Rating float64 `json:"rating"`

	// Sentiment is derived by the classifier. Incoming values are ignored
	// unless Config.TrustProvidedSentiment is set.
	Sentiment Label `json:"sentiment,omitempty"`

	// Timestamp is only consulted when recency weighting is enabled.
	Timestamp time.Time `json:"timestamp"`
}

// MovieRecommendation is a single ranked result.
type MovieRecommendation struct {
	Movie Movie `json:"movie"`

	// Similarity is the combined ranking score in [0, 1]. Higher is more relevant.
	Similarity float64 `json:"similarity"`
}

// Classification is the derived sentiment for one review, returned so callers
// can persist it back to their review store.
type Classification struct {
	ReviewID string  `json:"reviewId"`
	Label    Label   `json:"label"`
	Polarity float64 `json:"polarity"`
}

// FeatureVector is the numeric encoding of a movie against one vocabulary
// version: one slot per genre, then normalized rating, then normalized year.
type FeatureVector struct {
	Values            []float64
	VocabularyVersion uint64
}

// Len returns the vector dimension.
func (v FeatureVector) Len() int {
	return len(v.Values)
}
