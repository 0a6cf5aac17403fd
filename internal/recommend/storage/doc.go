// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package storage persists published lexicon versions.
//
// Each version is written once as lexicon_v{N}.json.gz: a JSON document
// holding metadata and the gzip-compressed term table. A SHA-256 checksum of
// the uncompressed table is verified on load. On startup the server loads the
// latest version so a republished lexicon survives restarts.
//
// # Thread Safety
//
// All operations are safe for concurrent use.
package storage
