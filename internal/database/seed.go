// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
)

// SeedMovies is the demo catalog loaded into an empty database.
var SeedMovies = []recommend.Movie{
	{
		ID:          "1",
		Title:       "The Matrix",
		Overview:    "A computer programmer discovers a mysterious world of artificial reality.",
		Rating:      8.7,
		Genres:      []string{"sci-fi", "action"},
		ReleaseYear: 1999,
	},
	{
		ID:          "2",
		Title:       "Inception",
		Overview:    "A thief who enters the dreams of others to steal secrets.",
		Rating:      8.8,
		Genres:      []string{"sci-fi", "action", "thriller"},
		ReleaseYear: 2010,
	},
	{
		ID:          "3",
		Title:       "The Dark Knight",
		Overview:    "Batman faces his greatest challenge against the Joker.",
		Rating:      9.0,
		Genres:      []string{"action", "crime", "drama"},
		ReleaseYear: 2008,
	},
}

// SeedReviews are the demo reviews for SeedMovies. Labels are left empty so
// the classifier derives them on first ingestion.
var SeedReviews = []recommend.Review{
	{ID: "r1", MovieID: "1", Text: "Mind-blowing special effects and deep philosophical themes", Rating: 9},
	{ID: "r2", MovieID: "1", Text: "Revolutionary sci-fi that changed the genre", Rating: 9},
	{ID: "r3", MovieID: "2", Text: "Complex plot with amazing visuals", Rating: 8},
	{ID: "r4", MovieID: "2", Text: "Sometimes confusing but overall great", Rating: 7},
	{ID: "r5", MovieID: "3", Text: "Heath Ledger's performance is legendary", Rating: 10},
	{ID: "r6", MovieID: "3", Text: "Dark and intense superhero movie", Rating: 8},
}

// Seed loads the demo catalog when the movies table is empty. It returns the
// inserted reviews so the caller can queue them for classification.
func (db *DB) Seed(ctx context.Context) ([]recommend.Review, error) {
	n, err := db.CountMovies(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		logging.Debug().Int("movies", n).Msg("Catalog not empty, skipping seed")
		return nil, nil
	}

	for i := range SeedMovies {
		m := SeedMovies[i]
		if err := db.InsertMovie(ctx, &m); err != nil {
			return nil, fmt.Errorf("seed movie %s: %w", m.ID, err)
		}
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	inserted := make([]recommend.Review, 0, len(SeedReviews))
	for i := range SeedReviews {
		r := SeedReviews[i]
		r.Timestamp = base.Add(time.Duration(i) * 24 * time.Hour)
		if err := db.InsertReview(ctx, &r); err != nil {
			return nil, fmt.Errorf("seed review %s: %w", r.ID, err)
		}
		inserted = append(inserted, r)
	}

	logging.Info().Int("movies", len(SeedMovies)).Int("reviews", len(inserted)).Msg("Seeded demo catalog")
	return inserted, nil
}
