// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package wal is the durable outbox for review events, backed by BadgerDB.
//
// A review is written to DuckDB first, then its ReviewIngested event is
// written here, then published. The classification handler confirms the
// entry once the derived label is persisted. Anything left unconfirmed, for
// example after a crash between insert and classification, is republished by
// Replay.
//
//	Insert review → WAL Write → Publish → Classify → WAL Confirm
//	                                    ↓ (on failure)
//	                              entry kept for Replay
//
// # Keys
//
// Entries live under two key prefixes: "pending:" until confirmed and
// "confirmed:" afterwards. Compact removes confirmed entries. Every key carries
// the configured EntryTTL so Badger drops abandoned entries on its own.
//
// # Claims
//
// TryClaim and Release guard against the replay loop and a live handler
// working the same entry concurrently inside one process.
package wal
