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

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/recommend"
)

const movieColumns = `id, title, overview, poster_url, rating, genres, release_year`

// InsertMovie adds a movie to the catalog. An existing id returns ErrDuplicate.
func (db *DB) InsertMovie(ctx context.Context, m *recommend.Movie) (err error) {
	start := time.Now()
	defer func() { observe("INSERT", "movies", start, err) }()

	genres, err := encodeGenres(m.Genres)
	if err != nil {
		return err
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

	exists, err := rowExists(ctx, tx, `SELECT 1 FROM movies WHERE id = ?`, m.ID)
	if err != nil {
		return fmt.Errorf("failed to check movie %s: %w", m.ID, err)
	}
	if exists {
		return fmt.Errorf("movie %s: %w", m.ID, ErrDuplicate)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO movies (`+movieColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Overview, m.PosterURL, m.Rating, genres, m.ReleaseYear)
	if err != nil {
		return fmt.Errorf("failed to insert movie %s: %w", m.ID, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit movie %s: %w", m.ID, err)
	}
	db.bumpVersion()
	return nil
}

// GetMovie returns one movie or ErrNotFound.
func (db *DB) GetMovie(ctx context.Context, id string) (movie *recommend.Movie, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "movies", start, ignoreNotFound(err)) }()

	row := db.conn.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)
	m, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("movie %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %s: %w", id, err)
	}
	return m, nil
}

// ListMovies returns the whole catalog ordered by id.
func (db *DB) ListMovies(ctx context.Context) (movies []recommend.Movie, err error) {
	start := time.Now()
	defer func() { observe("SELECT", "movies", start, err) }()

	rows, err := db.conn.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	defer closeWithLog(rows, "rows")

	movies = []recommend.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movies: %w", err)
	}
	return movies, nil
}

// CountMovies returns the catalog size.
func (db *DB) CountMovies(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(s scanner) (*recommend.Movie, error) {
	var (
		m      recommend.Movie
		genres string
	)
	if err := s.Scan(&m.ID, &m.Title, &m.Overview, &m.PosterURL, &m.Rating, &genres, &m.ReleaseYear); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(genres), &m.Genres); err != nil {
		return nil, fmt.Errorf("movie %s has malformed genres: %w", m.ID, err)
	}
	if m.Genres == nil {
		m.Genres = []string{}
	}
	return &m, nil
}

func encodeGenres(genres []string) (string, error) {
	if genres == nil {
		genres = []string{}
	}
	b, err := json.Marshal(genres)
	if err != nil {
		return "", fmt.Errorf("failed to encode genres: %w", err)
	}
	return string(b), nil
}

// rowExists reports whether query returns at least one row.
func rowExists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
