// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package wal

import "errors"

var (
	// ErrWALClosed is returned by every operation after Close.
	ErrWALClosed = errors.New("wal is closed")

	// ErrEntryNotFound is returned when no pending or confirmed entry has the id.
	ErrEntryNotFound = errors.New("wal entry not found")

	// ErrNilEvent is returned by Write for a nil event.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrEmptyEntryID is returned when an operation is given an empty id.
	ErrEmptyEntryID = errors.New("entry id cannot be empty")

	// ErrNilPublisher is returned by Replay without a publisher.
	ErrNilPublisher = errors.New("publisher cannot be nil")

	// ErrEmptyPath is returned by Open when no directory is configured.
	ErrEmptyPath = errors.New("wal path is required")
)
