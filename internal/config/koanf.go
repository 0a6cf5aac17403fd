// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
// The first file found is used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/marquee/config.yaml",
	"/etc/marquee/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. File and environment layers are
// applied on top.
func defaultConfig() *Config {
	engine := defaultEngineSettings()
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:      "/data/marquee.duckdb",
			MaxMemory: "1GB",
			Threads:   0,
			Seed:      true,
		},
		WAL: WALConfig{
			Path:           "/data/wal",
			SyncWrites:     true,
			ReplayInterval: 30 * time.Second,
			MaxRetries:     10,
			EntryTTL:       7 * 24 * time.Hour,
		},
		Events: EventsConfig{
			Transport:            TransportGoChannel,
			NATSURL:              "nats://127.0.0.1:4222",
			EmbeddedServer:       true,
			StoreDir:             "/data/nats",
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			CloseTimeout:         30 * time.Second,
			BackfillRate:         200,
			BackfillBurst:        50,
			BackfillInterval:     10 * time.Minute,
		},
		Cache: CacheConfig{
			Capacity: 1000,
			TTL:      5 * time.Minute,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Recommend: engine,
	}
}

// defaultEngineSettings mirrors recommend.DefaultConfig in flat form.
// Parallelism stays 0 so the value is resolved on the host that runs it.
func defaultEngineSettings() RecommendConfig {
	return RecommendConfig{
		PositiveThreshold: 0.15,
		NegativeThreshold: -0.15,
		SentimentWeight:   0.5,
		RatingWeight:      0.5,
		RecencyHalfLife:   720 * time.Hour,
		CombineFn:         "multiply",
		SimilarityWeight:  0.7,
		DiversityLambda:   0.7,
		LexiconDir:        "/data/lexicon",
		LexiconKeep:       10,
	}
}

// Load loads configuration from defaults, an optional YAML file and the
// environment, in that order of increasing priority, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are parsed from comma-separated env strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated strings for known slice fields.
// Values that are already slices (from YAML) are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_catalog":      "database.seed",

	// WAL
	"wal_path":            "wal.path",
	"wal_sync_writes":     "wal.sync_writes",
	"wal_replay_interval": "wal.replay_interval",
	"wal_max_retries":     "wal.max_retries",
	"wal_entry_ttl":       "wal.entry_ttl",

	// Events
	"events_transport":      "events.transport",
	"nats_url":              "events.nats_url",
	"nats_embedded":         "events.embedded_server",
	"nats_store_dir":        "events.store_dir",
	"events_retry_count":    "events.retry_count",
	"events_retry_interval": "events.retry_initial_interval",
	"events_close_timeout":  "events.close_timeout",
	"backfill_rate":         "events.backfill_rate",
	"backfill_burst":        "events.backfill_burst",
	"backfill_interval":     "events.backfill_interval",

	// Cache
	"cache_capacity": "cache.capacity",
	"cache_ttl":      "cache.ttl",

	// Security
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Recommendation engine
	"sentiment_positive_threshold":         "recommend.positive_threshold",
	"sentiment_negative_threshold":         "recommend.negative_threshold",
	"aggregation_sentiment_weight":         "recommend.sentiment_weight",
	"aggregation_rating_weight":            "recommend.rating_weight",
	"aggregation_recency_weighting":        "recommend.recency_weighting",
	"aggregation_recency_half_life":        "recommend.recency_half_life",
	"aggregation_trust_provided_sentiment": "recommend.trust_provided_sentiment",
	"recommend_combine_fn":                 "recommend.combine_fn",
	"recommend_similarity_weight":          "recommend.similarity_weight",
	"recommend_top_k":                      "recommend.top_k",
	"recommend_parallelism":                "recommend.parallelism",
	"recommend_diversity_enabled":          "recommend.diversity_enabled",
	"recommend_diversity_lambda":           "recommend.diversity_lambda",
	"lexicon_dir":                          "recommend.lexicon_dir",
	"lexicon_keep":                         "recommend.lexicon_keep",
}

// envTransformFunc maps an environment variable name to its koanf path.
// Unmapped names return "" so koanf skips them.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - DUCKDB_PATH -> database.path
//   - RECOMMEND_COMBINE_FN -> recommend.combine_fn
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
