// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package services adapts long-running components to suture.Service.
//
// Each wrapper blocks in Serve until its context is canceled, returns
// ctx.Err() on a clean stop and a wrapped error on failure so the supervisor
// restarts it. Components are taken through small interfaces so the wrappers
// can be tested without DuckDB, Badger or a broker.
package services
