// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordDBQuery(t *testing.T) {
	long := errors.New(strings.Repeat("x", 80))
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "reviews", strings.Repeat("x", 50)))

	RecordDBQuery("SELECT", "movies", 5*time.Millisecond, nil)
	RecordDBQuery("INSERT", "reviews", time.Millisecond, long)

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("INSERT", "reviews", strings.Repeat("x", 50)))
	if after-before != 1 {
		t.Errorf("error counter delta = %v, want 1 (truncated label)", after-before)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/api/v1/movies", "200")
	before := testutil.ToFloat64(c)
	RecordAPIRequest("GET", "/api/v1/movies", "200", 3*time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("request counter delta = %v, want 1", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - before; got != 1 {
		t.Errorf("active delta = %v, want 1", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	errs := RecommendErrors.WithLabelValues("profile", "unknown_movie")
	before := testutil.ToFloat64(errs)

	RecordRecommendation("movie", time.Millisecond, 3, "")
	RecordRecommendation("profile", time.Millisecond, 0, "unknown_movie")

	if got := testutil.ToFloat64(errs) - before; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestClassificationAndLexicon(t *testing.T) {
	c := ClassificationsTotal.WithLabelValues("positive")
	before := testutil.ToFloat64(c)
	RecordClassification("positive")
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("classification delta = %v", got)
	}

	SetLexicon(4, 120)
	if got := testutil.ToFloat64(LexiconVersion); got != 4 {
		t.Errorf("lexicon version = %v", got)
	}
	if got := testutil.ToFloat64(LexiconTerms); got != 120 {
		t.Errorf("lexicon terms = %v", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits, misses := testutil.ToFloat64(CacheHits), testutil.ToFloat64(CacheMisses)
	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)
	if got := testutil.ToFloat64(CacheHits) - hits; got != 1 {
		t.Errorf("hits delta = %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses) - misses; got != 2 {
		t.Errorf("misses delta = %v", got)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	tests := []struct {
		to   string
		want float64
	}{
		{"open", 2},
		{"half-open", 1},
		{"closed", 0},
	}
	for _, tt := range tests {
		t.Run(tt.to, func(t *testing.T) {
			RecordCircuitBreakerTransition("catalog", "closed", tt.to)
			if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("catalog")); got != tt.want {
				t.Errorf("state = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordEventHandled(t *testing.T) {
	c := EventsHandled.WithLabelValues("classify", "success")
	before := testutil.ToFloat64(c)
	RecordEventHandled("classify", "success", time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("handled delta = %v", got)
	}
}
