// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

const reviewColumns = `id, movie_id, text, rating, sentiment, created_at`

// InsertReview stores a review. A movie id missing from the catalog returns
// recommend.ErrUnknownMovieReference and an existing review id ErrDuplicate.
// A zero Timestamp is replaced with the current time.
func (db *DB) InsertReview(ctx context.Context, r *recommend.Review) (err error) {
	start := time.Now()
	defer func() { observe("INSERT", "reviews", start, err) }()

	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	known, err := rowExists(ctx, tx, `SELECT 1 FROM movies WHERE id = ?`, r.MovieID)
	if err != nil {
		return fmt.Errorf("failed to check movie %s: %w", r.MovieID, err)
	}
	if !known {
		return fmt.Errorf("review %s names movie %s: %w", r.ID, r.MovieID, recommend.ErrUnknownMovieReference)
	}

	dup, err := rowExists(ctx, tx, `SELECT 1 FROM reviews WHERE id = ?`, r.ID)
	if err != nil {
		return fmt.Errorf("failed to check review %s: %w", r.ID, err)
	}
	if dup {
		return fmt.Errorf("review %s: %w", r.ID, ErrDuplicate)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO reviews (`+reviewColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.MovieID, r.Text, r.Rating, nullLabel(r.Sentiment), r.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert review %s: %w", r.ID, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review %s: %w", r.ID, err)
	}
	db.bumpVersion()
	return nil
}

// GetReview returns one review or ErrNotFound.
func (db *DB) GetReview(ctx context.Context, id string) (review *recommend.Review, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "reviews", start, ignoreNotFound(err)) }()

	row := db.conn.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ?`, id)
	r, err := scanReview(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review %s: %w", id, err)
	}
	return r, nil
}

// ListReviews returns the reviews of one movie, oldest first.
func (db *DB) ListReviews(ctx context.Context, movieID string) ([]recommend.Review, error) {
	return db.queryReviews(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE movie_id = ? ORDER BY created_at, id`, movieID)
}

// AllReviews returns every stored review ordered by id.
func (db *DB) AllReviews(ctx context.Context) ([]recommend.Review, error) {
	return db.queryReviews(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY id`)
}

// ReviewsByMovie groups every stored review by movie id.
func (db *DB) ReviewsByMovie(ctx context.Context) (map[string][]recommend.Review, error) {
	all, err := db.queryReviews(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY movie_id, created_at, id`)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]recommend.Review)
	for i := range all {
		grouped[all[i].MovieID] = append(grouped[all[i].MovieID], all[i])
	}
	return grouped, nil
}

// UpdateReviewSentiment persists a derived label. lexiconVersion records which
// lexicon produced it.
func (db *DB) UpdateReviewSentiment(ctx context.Context, id string, label recommend.Label, polarity float64, lexiconVersion uint64) (err error) {
	start := time.Now()
	defer func() { observe("UPDATE", "reviews", start, ignoreNotFound(err)) }()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE reviews SET sentiment = ?, polarity = ?, lexicon_version = ? WHERE id = ?`,
		string(label), polarity, int64(lexiconVersion), id) //nolint:gosec // lexicon versions stay far below 2^63
	if err != nil {
		return fmt.Errorf("failed to update review %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update review %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("review %s: %w", id, ErrNotFound)
	}
	db.bumpVersion()
	return nil
}

// StaleReviews returns ids of reviews never classified or classified by a
// lexicon older than version.
func (db *DB) StaleReviews(ctx context.Context, version uint64) (ids []string, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "reviews", start, err) }()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id FROM reviews WHERE lexicon_version IS NULL OR lexicon_version < ? ORDER BY id`,
		int64(version)) //nolint:gosec // lexicon versions stay far below 2^63
	if err != nil {
		return nil, fmt.Errorf("failed to query stale reviews: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan review id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) queryReviews(ctx context.Context, query string, args ...any) (reviews []recommend.Review, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "reviews", start, err) }()

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer closeWithLog(rows, "rows")

	reviews = []recommend.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}
	return reviews, nil
}

func scanReview(s scanner) (*recommend.Review, error) {
	var (
		r         recommend.Review
		sentiment sql.NullString
	)
	if err := s.Scan(&r.ID, &r.MovieID, &r.Text, &r.Rating, &sentiment, &r.Timestamp); err != nil {
		return nil, err
	}
	if sentiment.Valid {
		r.Sentiment = recommend.Label(sentiment.String)
	}
	return &r, nil
}

func nullLabel(l recommend.Label) sql.NullString {
	return sql.NullString{String: string(l), Valid: l != ""}
}
