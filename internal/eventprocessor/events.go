// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Topics.
const (
	TopicReviewIngested   = "reviews.ingested"
	TopicLexiconPublished = "lexicon.published"
)

// Message metadata keys.
const (
	MetadataWALEntryID    = "wal_entry_id"
	MetadataReviewID      = "review_id"
	MetadataCorrelationID = "correlation_id"
)

// CurrentSchemaVersion is stamped on every event written by this binary.
const CurrentSchemaVersion = 1

// ReviewIngested is published once a review is stored. The handler derives
// the sentiment label from Text with whatever lexicon is current when the
// event is consumed.
type ReviewIngested struct {
	EventID       string          `json:"event_id"`
	SchemaVersion int             `json:"schema_version"`
	ReviewID      string          `json:"review_id"`
	MovieID       string          `json:"movie_id"`
	Text          string          `json:"text"`
	Rating        float64         `json:"rating"`
	Provided      recommend.Label `json:"provided_sentiment,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewReviewIngested builds the event for a stored review.
func NewReviewIngested(r *recommend.Review) *ReviewIngested {
	occurred := r.Timestamp
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}
	return &ReviewIngested{
		EventID:       uuid.New().String(),
		SchemaVersion: CurrentSchemaVersion,
		ReviewID:      r.ID,
		MovieID:       r.MovieID,
		Text:          r.Text,
		Rating:        r.Rating,
		Provided:      r.Sentiment,
		OccurredAt:    occurred,
	}
}

// Validate checks the fields the handler depends on.
func (e *ReviewIngested) Validate() error {
	switch {
	case e.EventID == "":
		return &ValidationError{Field: "event_id", Message: "required"}
	case e.ReviewID == "":
		return &ValidationError{Field: "review_id", Message: "required"}
	case e.MovieID == "":
		return &ValidationError{Field: "movie_id", Message: "required"}
	case e.Provided != "" && !e.Provided.Valid():
		return &ValidationError{Field: "provided_sentiment", Message: fmt.Sprintf("unknown label %q", e.Provided)}
	}
	return nil
}

// LexiconPublished announces a new lexicon version. Reviews labelled under an
// older version are reclassified by the backfill handler.
type LexiconPublished struct {
	EventID       string    `json:"event_id"`
	SchemaVersion int       `json:"schema_version"`
	Version       uint64    `json:"version"`
	Terms         int       `json:"terms"`
	PublishedAt   time.Time `json:"published_at"`
}

// NewLexiconPublished builds the event for lex.
func NewLexiconPublished(lex *recommend.Lexicon) *LexiconPublished {
	return &LexiconPublished{
		EventID:       uuid.New().String(),
		SchemaVersion: CurrentSchemaVersion,
		Version:       lex.Version(),
		Terms:         lex.Len(),
		PublishedAt:   time.Now().UTC(),
	}
}

// Validate checks the fields the handler depends on.
func (e *LexiconPublished) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	return nil
}

// ValidationError reports a malformed event.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid event: " + e.Field + " " + e.Message
}

type validatable interface {
	Validate() error
}

// SerializeEvent encodes an event as JSON.
func SerializeEvent(event interface{}) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DeserializeEvent decodes data into event and validates it. Decode and
// validation failures are permanent.
func DeserializeEvent(data []byte, event validatable) error {
	if err := json.Unmarshal(data, event); err != nil {
		return NewPermanentError(ReasonMalformedPayload, err)
	}
	if err := event.Validate(); err != nil {
		return NewPermanentError(ReasonInvalidEvent, err)
	}
	return nil
}
