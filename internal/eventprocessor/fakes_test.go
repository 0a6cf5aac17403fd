// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/recommend"
)

type storedLabel struct {
	label    recommend.Label
	polarity float64
	version  uint64
}

// memStore is an in-memory review store for handler tests.
type memStore struct {
	mu        sync.Mutex
	reviews   map[string]recommend.Review
	labels    map[string]storedLabel
	updateErr error
	updates   int
}

func newMemStore(reviews ...recommend.Review) *memStore {
	s := &memStore{
		reviews: make(map[string]recommend.Review),
		labels:  make(map[string]storedLabel),
	}
	for _, r := range reviews {
		s.reviews[r.ID] = r
	}
	return s
}

func (s *memStore) UpdateReviewSentiment(_ context.Context, id string, label recommend.Label, polarity float64, version uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	if _, ok := s.reviews[id]; !ok {
		return database.ErrNotFound
	}
	s.labels[id] = storedLabel{label: label, polarity: polarity, version: version}
	s.updates++
	return nil
}

func (s *memStore) StaleReviews(_ context.Context, version uint64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.reviews {
		if l, ok := s.labels[id]; !ok || l.version != version {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memStore) GetReview(_ context.Context, id string) (*recommend.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &r, nil
}

func (s *memStore) label(id string) (storedLabel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.labels[id]
	return l, ok
}

// memOutbox records writes and confirmations.
type memOutbox struct {
	mu        sync.Mutex
	writes    []interface{}
	confirmed []string
	writeErr  error
}

func (o *memOutbox) Write(_ context.Context, event interface{}) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.writeErr != nil {
		return "", o.writeErr
	}
	o.writes = append(o.writes, event)
	return fmt.Sprintf("entry-%d", len(o.writes)), nil
}

func (o *memOutbox) Confirm(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.confirmed = append(o.confirmed, id)
	return nil
}

func (o *memOutbox) confirmedIDs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.confirmed...)
}

// countingCache counts Clear calls.
type countingCache struct {
	mu     sync.Mutex
	clears int
}

func (c *countingCache) Clear() {
	c.mu.Lock()
	c.clears++
	c.mu.Unlock()
}

func (c *countingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clears
}

func newTestEngine(t *testing.T, mutate func(*recommend.Config)) *recommend.Engine {
	t.Helper()
	cfg := recommend.DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	e, err := recommend.NewEngine(cfg, recommend.DefaultLexicon())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func sampleReviews() []recommend.Review {
	return []recommend.Review{
		{ID: "r1", MovieID: "1", Text: "This movie was great", Rating: 9},
		{ID: "r2", MovieID: "1", Text: "Terrible and awful", Rating: 2},
		{ID: "r3", MovieID: "2", Text: "It exists", Rating: 5},
	}
}
