// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
)

// BreakerConfig configures the read circuit breaker.
type BreakerConfig struct {
	// Name identifies the breaker in logs and metrics.
	Name string

	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts while closed.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// FailureThreshold is the consecutive failures that open the breaker.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "catalog",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
	}
}

// CatalogReader reads catalog snapshots through a circuit breaker.
type CatalogReader struct {
	db *DB
	cb *gobreaker.CircuitBreaker[interface{}]
}

// NewCatalogReader wraps db.
func NewCatalogReader(db *DB, cfg BreakerConfig) *CatalogReader {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrNotFound) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return &CatalogReader{
		db: db,
		cb: gobreaker.NewCircuitBreaker[interface{}](settings),
	}
}

// State returns the breaker state name: closed, half-open or open.
func (r *CatalogReader) State() string {
	return r.cb.State().String()
}

// DataVersion returns the database write counter.
func (r *CatalogReader) DataVersion() int64 {
	return r.db.DataVersion()
}

// Catalog returns every movie ordered by id.
func (r *CatalogReader) Catalog(ctx context.Context) ([]recommend.Movie, error) {
	v, err := r.execute(func() (interface{}, error) { return r.db.ListMovies(ctx) })
	if err != nil {
		return nil, err
	}
	return v.([]recommend.Movie), nil
}

// Movie returns one movie or ErrNotFound.
func (r *CatalogReader) Movie(ctx context.Context, id string) (*recommend.Movie, error) {
	v, err := r.execute(func() (interface{}, error) { return r.db.GetMovie(ctx, id) })
	if err != nil {
		return nil, err
	}
	return v.(*recommend.Movie), nil
}

// Reviews returns one movie's reviews.
func (r *CatalogReader) Reviews(ctx context.Context, movieID string) ([]recommend.Review, error) {
	v, err := r.execute(func() (interface{}, error) { return r.db.ListReviews(ctx, movieID) })
	if err != nil {
		return nil, err
	}
	return v.([]recommend.Review), nil
}

// ReviewsByMovie returns every review grouped by movie id.
func (r *CatalogReader) ReviewsByMovie(ctx context.Context) (map[string][]recommend.Review, error) {
	v, err := r.execute(func() (interface{}, error) { return r.db.ReviewsByMovie(ctx) })
	if err != nil {
		return nil, err
	}
	return v.(map[string][]recommend.Review), nil
}

// Snapshot returns the catalog and its reviews together.
func (r *CatalogReader) Snapshot(ctx context.Context) ([]recommend.Movie, map[string][]recommend.Review, error) {
	catalog, err := r.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	reviews, err := r.ReviewsByMovie(ctx)
	if err != nil {
		return nil, nil, err
	}
	return catalog, reviews, nil
}

func (r *CatalogReader) execute(fn func() (interface{}, error)) (interface{}, error) {
	v, err := r.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, err
}
