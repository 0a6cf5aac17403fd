// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// DB wraps the DuckDB connection.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig

	// dataVersion increments on every committed write.
	dataVersion atomic.Int64
}

// New opens the database at cfg.Path and creates the schema. Use ":memory:"
// for an in-process database.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	maxMemory := cfg.MaxMemory
	if maxMemory == "" {
		maxMemory = "1GB"
	}

	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, maxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	db.configureConnectionPool()

	ctx, cancel := schemaContext()
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.createTables(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Int("threads", numThreads).Msg("Database ready")
	return db, nil
}

// configureConnectionPool sets pool limits for the embedded engine.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(runtime.NumCPU())
	db.conn.SetMaxIdleConns(2)
	db.conn.SetConnMaxLifetime(time.Hour)
	db.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping checks that the database answers queries.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// DataVersion returns a counter that changes whenever a write commits.
func (db *DB) DataVersion() int64 {
	return db.dataVersion.Load()
}

func (db *DB) bumpVersion() {
	db.dataVersion.Add(1)
}

// observe records a query's duration and outcome.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}
