// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import "fmt"

// SentimentClassifier labels free text using a Lexicon. It is a pure function
// of its inputs and safe for concurrent use.
type SentimentClassifier struct {
	lexicon  *Lexicon
	positive float64
	negative float64
}

// NewSentimentClassifier creates a classifier. Thresholds are checked here as
// well as at config load so a hand-built classifier cannot invert them.
func NewSentimentClassifier(lex *Lexicon, cfg SentimentConfig) (*SentimentClassifier, error) {
	if cfg.PositiveThreshold <= cfg.NegativeThreshold {
		return nil, fmt.Errorf("%w: positive threshold %g <= negative threshold %g",
			ErrInvalidConfiguration, cfg.PositiveThreshold, cfg.NegativeThreshold)
	}
	if lex == nil {
		lex = NewLexicon(0, nil)
	}
	return &SentimentClassifier{
		lexicon:  lex,
		positive: cfg.PositiveThreshold,
		negative: cfg.NegativeThreshold,
	}, nil
}

// Classify returns the label and mean polarity of text.
// Text without any tokens is neutral with polarity 0.
func (c *SentimentClassifier) Classify(text string) (Label, float64) {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return LabelNeutral, 0
	}

	var sum float64
	for _, tok := range tokens {
		sum += c.lexicon.Weight(tok)
	}
	polarity := sum / float64(len(tokens))

	return c.label(polarity), polarity
}

// ClassifyReview classifies the review text. The review itself is not modified.
//
//nolint:gocritic // hugeParam: review passed by value, never mutated
func (c *SentimentClassifier) ClassifyReview(r Review) Classification {
	label, polarity := c.Classify(r.Text)
	return Classification{ReviewID: r.ID, Label: label, Polarity: polarity}
}

// ClassifyAll classifies every review, in input order.
func (c *SentimentClassifier) ClassifyAll(reviews []Review) []Classification {
	out := make([]Classification, len(reviews))
	for i := range reviews {
		out[i] = c.ClassifyReview(reviews[i])
	}
	return out
}

// LexiconVersion returns the version of the lexicon backing the classifier.
func (c *SentimentClassifier) LexiconVersion() uint64 {
	return c.lexicon.Version()
}

func (c *SentimentClassifier) label(polarity float64) Label {
	switch {
	case polarity > c.positive:
		return LabelPositive
	case polarity < c.negative:
		return LabelNegative
	default:
		return LabelNeutral
	}
}
