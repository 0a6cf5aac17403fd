// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import "errors"

// ErrUnknownMovieReference is returned when a review or a profile names a
// movie id that is not in the catalog.
var ErrUnknownMovieReference = errors.New("unknown movie reference")

// ErrDimensionMismatch is returned when two feature vectors built against
// different vocabulary versions are compared.
var ErrDimensionMismatch = errors.New("feature vector dimension mismatch")

// ErrEmptyCatalog is returned by helpers that need at least one movie to derive
// state from. Ranking an empty catalog is not an error.
var ErrEmptyCatalog = errors.New("empty catalog")

// ErrInvalidConfiguration is returned when thresholds or weights cannot be used.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ErrEmptyProfile is returned when a profile recommendation names no liked movies.
var ErrEmptyProfile = errors.New("profile has no liked movies")
