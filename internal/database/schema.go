// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// tableCreationQueries creates the schema. Statements are idempotent.
var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		overview TEXT NOT NULL DEFAULT '',
		poster_url TEXT NOT NULL DEFAULT '',
		rating DOUBLE NOT NULL DEFAULT 0,
		genres TEXT NOT NULL DEFAULT '[]',
		release_year INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		movie_id TEXT NOT NULL,
		text TEXT NOT NULL,
		rating DOUBLE NOT NULL DEFAULT 0,
		sentiment TEXT,
		polarity DOUBLE,
		lexicon_version BIGINT,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_movie_id ON reviews(movie_id)`,
}

// createTables creates the tables and indexes.
func (db *DB) createTables(ctx context.Context) error {
	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}
