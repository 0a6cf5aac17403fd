// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package eventprocessor moves review sentiment classification off the
// request path using Watermill.
//
//	POST /reviews ──▶ DuckDB insert ──▶ WAL write ──▶ reviews.ingested
//	                                                        │
//	                                                        ▼
//	                                             ClassificationHandler
//	                                     classify ▸ persist label ▸ invalidate
//	                                     response cache ▸ confirm WAL entry
//
//	POST /lexicon ──▶ lexicon.published ──▶ BackfillHandler
//	                                  reclassify stale reviews at a bounded rate
//
// # Transports
//
// The default transport is an in-process GoChannel pub/sub. Binaries built
// with -tags nats can instead use NATS JetStream, optionally served by an
// embedded nats-server:
//
//	go build -tags nats ./cmd/server
//
// Without the tag, selecting the nats transport returns ErrNATSNotEnabled.
//
// # Delivery
//
// The Router wraps handlers in Recoverer and Retry middleware. Handlers
// return a PermanentError for input that can never succeed; those messages
// are acked and counted as dropped instead of being retried. Review events
// that never reach a successful classification stay pending in the WAL and
// are republished by wal.BadgerWAL.Replay through Publisher.PublishEntry.
package eventprocessor
