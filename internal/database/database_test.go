// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/recommend"
)

// testDBSemaphore serializes DuckDB instances across tests; concurrent CGO
// connections under CI load have been observed to hang.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { closeQuietly(db) })
	return db
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestMovieCRUD(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	m := recommend.Movie{
		ID: "27205", Title: "Inception", Overview: "Dreams.", PosterURL: "https://img/1.jpg",
		Rating: 8.8, Genres: []string{"Action", "Sci-Fi"}, ReleaseYear: 2010,
	}
	before := db.DataVersion()
	if err := db.InsertMovie(ctx, &m); err != nil {
		t.Fatalf("InsertMovie() error = %v", err)
	}
	if db.DataVersion() == before {
		t.Error("DataVersion should change after a write")
	}

	got, err := db.GetMovie(ctx, "27205")
	if err != nil {
		t.Fatalf("GetMovie() error = %v", err)
	}
	if !reflect.DeepEqual(*got, m) {
		t.Errorf("GetMovie() = %+v, want %+v", *got, m)
	}

	if err := db.InsertMovie(ctx, &m); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate InsertMovie() error = %v, want ErrDuplicate", err)
	}
	if _, err := db.GetMovie(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMovie(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListMoviesOrderedAndEmptyGenres(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	empty, err := db.ListMovies(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("ListMovies() on empty db = %v, %v; want empty non-nil", empty, err)
	}

	for _, id := range []string{"b", "c", "a"} {
		if err := db.InsertMovie(ctx, &recommend.Movie{ID: id, Title: id, ReleaseYear: 2000}); err != nil {
			t.Fatal(err)
		}
	}
	movies, err := db.ListMovies(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, m := range movies {
		ids = append(ids, m.ID)
		if m.Genres == nil {
			t.Errorf("movie %s has nil genres", m.ID)
		}
	}
	if !reflect.DeepEqual(ids, []string{"a", "b", "c"}) {
		t.Errorf("ids = %v, want sorted", ids)
	}
}

func TestInsertReview(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	if err := db.InsertMovie(ctx, &recommend.Movie{ID: "1", Title: "The Matrix", ReleaseYear: 1999}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		review  recommend.Review
		wantErr error
	}{
		{"accepted", recommend.Review{ID: "r1", MovieID: "1", Text: "great", Rating: 9}, nil},
		{"unknown movie", recommend.Review{ID: "r2", MovieID: "404", Text: "great"}, recommend.ErrUnknownMovieReference},
		{"duplicate id", recommend.Review{ID: "r1", MovieID: "1", Text: "again"}, ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.review
			err := db.InsertReview(ctx, &r)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("InsertReview() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := db.GetReview(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Timestamp.IsZero() {
		t.Error("zero timestamp should be filled in")
	}
	if got.Sentiment != "" {
		t.Errorf("Sentiment = %q, want empty before classification", got.Sentiment)
	}
}

func TestReviewsByMovieAndSentiment(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	seeded, err := db.Seed(ctx)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if len(seeded) != len(SeedReviews) {
		t.Fatalf("Seed() inserted %d reviews, want %d", len(seeded), len(SeedReviews))
	}

	grouped, err := db.ReviewsByMovie(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"1", "2", "3"} {
		if len(grouped[id]) != 2 {
			t.Errorf("movie %s has %d reviews, want 2", id, len(grouped[id]))
		}
	}

	reviews, err := db.ListReviews(ctx, "2")
	if err != nil {
		t.Fatal(err)
	}
	if reviews[0].ID != "r3" || reviews[1].ID != "r4" {
		t.Errorf("ListReviews order = %s, %s", reviews[0].ID, reviews[1].ID)
	}

	stale, err := db.StaleReviews(ctx, 1)
	if err != nil || len(stale) != 6 {
		t.Fatalf("StaleReviews() = %v, %v; want all 6", stale, err)
	}

	if err := db.UpdateReviewSentiment(ctx, "r3", recommend.LabelPositive, 0.4, 1); err != nil {
		t.Fatalf("UpdateReviewSentiment() error = %v", err)
	}
	got, err := db.GetReview(ctx, "r3")
	if err != nil {
		t.Fatal(err)
	}
	if got.Sentiment != recommend.LabelPositive {
		t.Errorf("Sentiment = %q, want positive", got.Sentiment)
	}

	stale, _ = db.StaleReviews(ctx, 1)
	if len(stale) != 5 {
		t.Errorf("StaleReviews(1) = %d ids, want 5", len(stale))
	}
	stale, _ = db.StaleReviews(ctx, 2)
	if len(stale) != 6 {
		t.Errorf("StaleReviews(2) = %d ids, want 6", len(stale))
	}

	if err := db.UpdateReviewSentiment(ctx, "nope", recommend.LabelNeutral, 0, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateReviewSentiment(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	if _, err := db.Seed(ctx); err != nil {
		t.Fatal(err)
	}
	again, err := db.Seed(ctx)
	if err != nil || again != nil {
		t.Fatalf("second Seed() = %v, %v; want nil, nil", again, err)
	}
	n, _ := db.CountMovies(ctx)
	if n != len(SeedMovies) {
		t.Errorf("CountMovies() = %d, want %d", n, len(SeedMovies))
	}
}

func TestCatalogReader(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)
	if _, err := db.Seed(ctx); err != nil {
		t.Fatal(err)
	}

	reader := NewCatalogReader(db, DefaultBreakerConfig())
	catalog, reviews, err := reader.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(catalog) != 3 || len(reviews) != 3 {
		t.Errorf("Snapshot() = %d movies, %d review groups", len(catalog), len(reviews))
	}

	// Not-found lookups must not trip the breaker.
	for i := 0; i < 10; i++ {
		if _, err := reader.Movie(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Movie(missing) error = %v", err)
		}
	}
	if reader.State() != "closed" {
		t.Errorf("State() = %q, want closed", reader.State())
	}
	if reader.DataVersion() != db.DataVersion() {
		t.Error("DataVersion mismatch")
	}
}

func TestCatalogReaderOpensOnFailures(t *testing.T) {
	db := setupTestDB(t)
	ctx := testContext(t)

	cfg := DefaultBreakerConfig()
	cfg.Name = "catalog-test"
	cfg.FailureThreshold = 2
	cfg.Timeout = time.Hour
	reader := NewCatalogReader(db, cfg)

	if err := db.Close(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := reader.Catalog(ctx); err == nil || errors.Is(err, ErrUnavailable) {
			t.Fatalf("call %d error = %v, want a database error", i, err)
		}
	}
	if _, err := reader.Catalog(ctx); !errors.Is(err, ErrUnavailable) {
		t.Errorf("open breaker error = %v, want ErrUnavailable", err)
	}
	if reader.State() != "open" {
		t.Errorf("State() = %q, want open", reader.State())
	}
}
