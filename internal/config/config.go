// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"runtime"
	"time"

	"github.com/tomtom215/marquee/internal/recommend"
)

// Config holds all application configuration.
//
// Config is immutable after Load and safe for concurrent reads.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	WAL       WALConfig       `koanf:"wal"`
	Events    EventsConfig    `koanf:"events"`
	Cache     CacheConfig     `koanf:"cache"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development, staging, production
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = NumCPU
	Seed      bool   `koanf:"seed"`    // load the demo catalog into an empty database
}

// WALConfig holds the Badger review outbox settings.
type WALConfig struct {
	Path string `koanf:"path"`

	// SyncWrites fsyncs every write. Slower, survives power loss.
	SyncWrites bool `koanf:"sync_writes"`

	// ReplayInterval is how often unconfirmed entries are republished.
	ReplayInterval time.Duration `koanf:"replay_interval"`

	// MaxRetries is the number of replays before an entry is dropped.
	MaxRetries int `koanf:"max_retries"`

	// EntryTTL expires entries Badger-side regardless of state.
	EntryTTL time.Duration `koanf:"entry_ttl"`
}

// EventsConfig holds the watermill transport and router settings.
type EventsConfig struct {
	// Transport is gochannel (in-process) or nats.
	// nats requires a binary built with -tags nats.
	Transport string `koanf:"transport"`

	NATSURL        string `koanf:"nats_url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`

	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`

	// BackfillRate is the reclassification rate in reviews per second after a
	// lexicon republish.
	BackfillRate  float64 `koanf:"backfill_rate"`
	BackfillBurst int     `koanf:"backfill_burst"`

	// BackfillInterval is how often stored reviews are swept for labels
	// older than the current lexicon. Zero sweeps only at startup.
	BackfillInterval time.Duration `koanf:"backfill_interval"`
}

// Transport names accepted by EventsConfig.Transport.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

// SecurityConfig holds rate limit and CORS settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is trace, debug, info, warn or error.
	// Default: info
	Level string `koanf:"level"`

	// Format is json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes file:line in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds the engine settings in flat form for env and YAML.
type RecommendConfig struct {
	PositiveThreshold float64 `koanf:"positive_threshold"`
	NegativeThreshold float64 `koanf:"negative_threshold"`

	SentimentWeight        float64       `koanf:"sentiment_weight"`
	RatingWeight           float64       `koanf:"rating_weight"`
	RecencyWeighting       bool          `koanf:"recency_weighting"`
	RecencyHalfLife        time.Duration `koanf:"recency_half_life"`
	TrustProvidedSentiment bool          `koanf:"trust_provided_sentiment"`

	CombineFn        string  `koanf:"combine_fn"`
	SimilarityWeight float64 `koanf:"similarity_weight"`
	TopK             int     `koanf:"top_k"`
	Parallelism      int     `koanf:"parallelism"` // 0 = GOMAXPROCS

	DiversityEnabled bool    `koanf:"diversity_enabled"`
	DiversityLambda  float64 `koanf:"diversity_lambda"`

	// LexiconDir holds versioned lexicon snapshots. Empty disables persistence.
	LexiconDir  string `koanf:"lexicon_dir"`
	LexiconKeep int    `koanf:"lexicon_keep"`
}

// EngineConfig converts the flat settings into recommend.Config.
func (r *RecommendConfig) EngineConfig() *recommend.Config {
	parallelism := r.Parallelism
	if parallelism == 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	return &recommend.Config{
		Sentiment: recommend.SentimentConfig{
			PositiveThreshold: r.PositiveThreshold,
			NegativeThreshold: r.NegativeThreshold,
		},
		Aggregation: recommend.AggregationConfig{
			SentimentWeight:        r.SentimentWeight,
			RatingWeight:           r.RatingWeight,
			RecencyWeighting:       r.RecencyWeighting,
			RecencyHalfLife:        r.RecencyHalfLife,
			TrustProvidedSentiment: r.TrustProvidedSentiment,
		},
		Ranking: recommend.RankingConfig{
			CombineFn:        r.CombineFn,
			SimilarityWeight: r.SimilarityWeight,
			TopK:             r.TopK,
			Parallelism:      parallelism,
		},
		Diversity: recommend.DiversityConfig{
			Enabled: r.DiversityEnabled,
			Lambda:  r.DiversityLambda,
		},
	}
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
