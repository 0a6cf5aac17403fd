// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package database

import (
	"errors"
	"io"

	"github.com/tomtom215/marquee/internal/logging"
)

var (
	// ErrNotFound is returned when a movie or review id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when inserting an id that already exists.
	ErrDuplicate = errors.New("duplicate id")

	// ErrUnavailable is returned while the read circuit breaker is open.
	ErrUnavailable = errors.New("database unavailable")
)

// closeWithLog closes a resource and logs a failure.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource on an error path where the close error is not
// actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
