// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/marquee/internal/metrics"
)

func TestPrometheusMetrics_RoutePatternLabel(t *testing.T) {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return PrometheusMetrics(next.ServeHTTP)
	})
	r.Get("/test-metrics/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/test-metrics/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test-metrics/"+id, nil))
		if rec.Code != http.StatusTeapot {
			t.Fatalf("status = %d, want 418", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("requests counted under pattern = %v, want 3", got)
	}
}

func TestPrometheusMetrics_Unmatched(t *testing.T) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodDelete, unmatchedRoute, "404")
	before := testutil.ToFloat64(counter)

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/no/such/path", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched requests = %v, want 1", got)
	}
}

func TestStatusRecorder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		want  int
	}{
		{"implicit ok", func(w http.ResponseWriter) { _, _ = w.Write([]byte("x")) }, http.StatusOK},
		{"explicit status", func(w http.ResponseWriter) { w.WriteHeader(http.StatusCreated) }, http.StatusCreated},
		{"first status wins", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			w.WriteHeader(http.StatusOK)
		}, http.StatusBadRequest},
		{"status after body ignored", func(w http.ResponseWriter) {
			_, _ = w.Write([]byte("x"))
			w.WriteHeader(http.StatusInternalServerError)
		}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := newStatusRecorder(httptest.NewRecorder())
			tt.write(rec)
			if rec.statusCode != tt.want {
				t.Errorf("statusCode = %d, want %d", rec.statusCode, tt.want)
			}
		})
	}
}

func TestStatusRecorder_Unwrap(t *testing.T) {
	t.Parallel()
	inner := httptest.NewRecorder()
	if newStatusRecorder(inner).Unwrap() != inner {
		t.Error("Unwrap() did not return the wrapped writer")
	}
}
