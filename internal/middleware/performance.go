// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package middleware

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// CacheStatusHeader is set by handlers to "HIT" or "MISS" for cacheable routes.
const CacheStatusHeader = "X-Cache"

// RequestSample is one observed request.
type RequestSample struct {
	Route      string    `json:"route"`
	Method     string    `json:"method"`
	DurationMS int64     `json:"duration_ms"`
	StatusCode int       `json:"status_code"`
	CacheHit   bool      `json:"cache_hit"`
	Timestamp  time.Time `json:"timestamp"`
}

// RouteStats aggregates the samples for one method and route.
type RouteStats struct {
	Route        string  `json:"route"`
	RequestCount int     `json:"request_count"`
	CacheHitRate float64 `json:"cache_hit_rate"`
	AvgMS        float64 `json:"avg_ms"`
	P50MS        int64   `json:"p50_ms"`
	P95MS        int64   `json:"p95_ms"`
	P99MS        int64   `json:"p99_ms"`
	MinMS        int64   `json:"min_ms"`
	MaxMS        int64   `json:"max_ms"`
}

// LatencyMonitor keeps a fixed window of recent request samples.
type LatencyMonitor struct {
	mu      sync.RWMutex
	samples []RequestSample
	next    int
	full    bool
	slow    time.Duration
}

// NewLatencyMonitor keeps the last window samples and warns on requests
// slower than slow. A zero slow disables the warning.
func NewLatencyMonitor(window int, slow time.Duration) *LatencyMonitor {
	if window < 1 {
		window = 1
	}
	return &LatencyMonitor{samples: make([]RequestSample, window), slow: slow}
}

// Record adds a sample, overwriting the oldest once the window is full.
func (m *LatencyMonitor) Record(s RequestSample) {
	m.mu.Lock()
	m.samples[m.next] = s
	m.next = (m.next + 1) % len(m.samples)
	if m.next == 0 {
		m.full = true
	}
	m.mu.Unlock()
}

// Len returns the number of samples held.
func (m *LatencyMonitor) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.full {
		return len(m.samples)
	}
	return m.next
}

// Recent returns up to n samples, oldest first.
func (m *LatencyMonitor) Recent(n int) []RequestSample {
	all := m.ordered()
	if n < len(all) {
		all = all[len(all)-n:]
	}
	return all
}

// Stats aggregates the window per method and route, busiest first.
func (m *LatencyMonitor) Stats() []RouteStats {
	byRoute := make(map[string][]RequestSample)
	for _, s := range m.ordered() {
		key := s.Method + " " + s.Route
		byRoute[key] = append(byRoute[key], s)
	}

	stats := make([]RouteStats, 0, len(byRoute))
	for key, samples := range byRoute {
		durations := make([]int64, len(samples))
		var sum int64
		hits := 0
		for i, s := range samples {
			durations[i] = s.DurationMS
			sum += s.DurationMS
			if s.CacheHit {
				hits++
			}
		}
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		n := len(durations)
		stats = append(stats, RouteStats{
			Route:        key,
			RequestCount: n,
			CacheHitRate: float64(hits) / float64(n),
			AvgMS:        float64(sum) / float64(n),
			P50MS:        percentile(durations, 0.50),
			P95MS:        percentile(durations, 0.95),
			P99MS:        percentile(durations, 0.99),
			MinMS:        durations[0],
			MaxMS:        durations[n-1],
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].RequestCount != stats[j].RequestCount {
			return stats[i].RequestCount > stats[j].RequestCount
		}
		return stats[i].Route < stats[j].Route
	})
	return stats
}

// Middleware samples every request passing through next.
func (m *LatencyMonitor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := RoutePattern(r)
		m.Record(RequestSample{
			Route:      route,
			Method:     r.Method,
			DurationMS: elapsed.Milliseconds(),
			StatusCode: rec.statusCode,
			CacheHit:   rec.Header().Get(CacheStatusHeader) == "HIT",
			Timestamp:  start.UTC(),
		})

		if m.slow > 0 && elapsed > m.slow {
			logging.Ctx(r.Context()).Warn().
				Str("method", r.Method).
				Str("route", route).
				Dur("duration", elapsed).
				Dur("threshold", m.slow).
				Msg("Slow request detected")
		}
	})
}

func (m *LatencyMonitor) ordered() []RequestSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.full {
		return append([]RequestSample(nil), m.samples[:m.next]...)
	}
	out := make([]RequestSample, 0, len(m.samples))
	out = append(out, m.samples[m.next:]...)
	return append(out, m.samples[:m.next]...)
}

// percentile reads p from an ascending slice by nearest rank below.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}
