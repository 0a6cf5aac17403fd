// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package config loads Marquee configuration with Koanf v2.

Sources are layered, later layers win:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/marquee/config.yaml
 3. Environment variables from an explicit allow-list (envTransformFunc)

Unknown environment variables are ignored.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, ENVIRONMENT

Storage:
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS, SEED_CATALOG
  - WAL_PATH, WAL_SYNC_WRITES, WAL_REPLAY_INTERVAL, WAL_MAX_RETRIES, WAL_ENTRY_TTL

Events:
  - EVENTS_TRANSPORT (gochannel or nats), NATS_URL, NATS_EMBEDDED, NATS_STORE_DIR
  - EVENTS_RETRY_COUNT, EVENTS_RETRY_INTERVAL, EVENTS_CLOSE_TIMEOUT
  - BACKFILL_RATE, BACKFILL_BURST

HTTP surface:
  - CACHE_CAPACITY, CACHE_TTL
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT, CORS_ORIGINS

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Recommendation engine:
  - SENTIMENT_POSITIVE_THRESHOLD, SENTIMENT_NEGATIVE_THRESHOLD
  - AGGREGATION_SENTIMENT_WEIGHT, AGGREGATION_RATING_WEIGHT
  - AGGREGATION_RECENCY_WEIGHTING, AGGREGATION_RECENCY_HALF_LIFE
  - AGGREGATION_TRUST_PROVIDED_SENTIMENT
  - RECOMMEND_COMBINE_FN, RECOMMEND_SIMILARITY_WEIGHT, RECOMMEND_TOP_K
  - RECOMMEND_PARALLELISM, RECOMMEND_DIVERSITY_ENABLED, RECOMMEND_DIVERSITY_LAMBDA
  - LEXICON_DIR, LEXICON_KEEP

# Validation

Load calls Validate before returning. The recommend section is converted to
recommend.Config and validated by the engine's own rules, so a bad threshold or
combine function fails at startup with recommend.ErrInvalidConfiguration
instead of on the first request.
*/
package config
