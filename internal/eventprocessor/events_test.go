// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

func TestNewReviewIngested(t *testing.T) {
	t.Parallel()
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	r := recommend.Review{ID: "r1", MovieID: "1", Text: "great", Rating: 9, Sentiment: recommend.LabelPositive, Timestamp: ts}

	ev := NewReviewIngested(&r)
	if ev.EventID == "" || ev.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("event header = %q/%d", ev.EventID, ev.SchemaVersion)
	}
	if ev.ReviewID != "r1" || ev.MovieID != "1" || ev.Text != "great" || ev.Rating != 9 {
		t.Errorf("event = %+v", ev)
	}
	if ev.Provided != recommend.LabelPositive || !ev.OccurredAt.Equal(ts) {
		t.Errorf("provided/occurred = %s/%v", ev.Provided, ev.OccurredAt)
	}

	noTime := NewReviewIngested(&recommend.Review{ID: "r2", MovieID: "1"})
	if noTime.OccurredAt.IsZero() {
		t.Error("OccurredAt not defaulted")
	}
}

func TestReviewIngested_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *ReviewIngested {
		return &ReviewIngested{EventID: "e", ReviewID: "r", MovieID: "m"}
	}

	tests := []struct {
		name      string
		mutate    func(*ReviewIngested)
		wantField string
	}{
		{"valid", func(*ReviewIngested) {}, ""},
		{"missing event id", func(e *ReviewIngested) { e.EventID = "" }, "event_id"},
		{"missing review id", func(e *ReviewIngested) { e.ReviewID = "" }, "review_id"},
		{"missing movie id", func(e *ReviewIngested) { e.MovieID = "" }, "movie_id"},
		{"unknown label", func(e *ReviewIngested) { e.Provided = "ecstatic" }, "provided_sentiment"},
		{"known label", func(e *ReviewIngested) { e.Provided = recommend.LabelNeutral }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := valid()
			tt.mutate(ev)
			err := ev.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.wantField {
				t.Errorf("Validate() error = %v, want field %s", err, tt.wantField)
			}
		})
	}
}

func TestDeserializeEvent(t *testing.T) {
	t.Parallel()

	ev := &LexiconPublished{EventID: "e1", Version: 3, Terms: 12}
	data, err := SerializeEvent(ev)
	if err != nil {
		t.Fatal(err)
	}

	var got LexiconPublished
	if err := DeserializeEvent(data, &got); err != nil {
		t.Fatalf("DeserializeEvent() error = %v", err)
	}
	if got.Version != 3 || got.Terms != 12 {
		t.Errorf("got %+v", got)
	}

	var bad LexiconPublished
	if err := DeserializeEvent([]byte(`{"version":1}`), &bad); !IsPermanentError(err) {
		t.Errorf("DeserializeEvent(no id) error = %v, want permanent", err)
	}
}

func TestPermanentError(t *testing.T) {
	t.Parallel()
	cause := errors.New("boom")
	err := fmt.Errorf("wrapped: %w", NewPermanentError(ReasonMalformedPayload, cause))

	if !IsPermanentError(err) {
		t.Error("IsPermanentError(wrapped) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if IsPermanentError(cause) {
		t.Error("IsPermanentError(plain) = true")
	}
	if reason, ok := PermanentReason(err); !ok || reason != ReasonMalformedPayload {
		t.Errorf("PermanentReason() = %q, %v", reason, ok)
	}
	if _, ok := PermanentReason(cause); ok {
		t.Error("PermanentReason(plain) ok = true")
	}
	if got := NewPermanentError(ReasonReviewDeleted, nil).Error(); got != "review_deleted" {
		t.Errorf("Error() = %q", got)
	}
	if got := err.Error(); got != "wrapped: malformed_payload: boom" {
		t.Errorf("Error() = %q", got)
	}
}
