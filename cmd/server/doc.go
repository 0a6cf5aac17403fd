// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package main is the entry point for the Marquee server.

Marquee serves content-based movie recommendations. Each movie is encoded as a
genre, year and rating vector, scored by cosine similarity and weighted by the
quality score of its reviews. Review text is labelled by a lexicon-based
sentiment classifier that runs asynchronously after ingestion.

# Application Architecture

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   ├── OutboxReplayService (republishes unconfirmed review events)
	│   └── BackfillSweepService (labels reviews left stale)
	├── MessagingSupervisor ("messaging-layer")
	│   └── RouterService (classification and lexicon backfill handlers)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (chi router)

Startup order:

 1. Configuration: Koanf v2, defaults < config.yaml < environment
 2. Logging: zerolog, bridged to slog for the supervisor
 3. Database: DuckDB catalog, seeded with the demo movies when empty
 4. Outbox: BadgerDB write-ahead log for review events
 5. Lexicon: latest snapshot from disk, or the built-in default
 6. Events: watermill over GoChannel or NATS JetStream
 7. Supervisor tree and HTTP server

# Configuration

Common environment variables:

	HTTP_PORT=8080
	DUCKDB_PATH=/data/marquee.duckdb
	WAL_PATH=/data/wal
	EVENTS_TRANSPORT=gochannel        # or nats
	NATS_URL=nats://127.0.0.1:4222
	NATS_EMBEDDED=true
	LEXICON_DIR=/data/lexicon
	RECOMMEND_COMBINE_FN=multiply     # weighted_mean, similarity
	RECOMMEND_DIVERSITY_ENABLED=false
	LOG_LEVEL=info
	LOG_FORMAT=json

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, the event router stops its handlers, and the transport, outbox and
database are closed in that order.
*/
package main
