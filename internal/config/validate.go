// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that the configuration is usable. All problems are reported
// together.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateWAL,
		c.validateEvents,
		c.validateCache,
		c.validateSecurity,
		c.validateLogging,
		c.validateRecommend,
	}

	var errs []error
	for _, validate := range validators {
		if err := validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
		return nil
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got %q", c.Server.Environment)
	}
}

func (c *Config) validateDatabase() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	return nil
}

func (c *Config) validateWAL() error {
	if strings.TrimSpace(c.WAL.Path) == "" {
		return errors.New("WAL_PATH is required")
	}
	if c.WAL.ReplayInterval < time.Second {
		return fmt.Errorf("WAL_REPLAY_INTERVAL must be at least 1s, got %v", c.WAL.ReplayInterval)
	}
	if c.WAL.MaxRetries < 1 {
		return fmt.Errorf("WAL_MAX_RETRIES must be positive, got %d", c.WAL.MaxRetries)
	}
	if c.WAL.EntryTTL < 0 {
		return fmt.Errorf("WAL_ENTRY_TTL must be non-negative, got %v", c.WAL.EntryTTL)
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Transport {
	case TransportGoChannel:
	case TransportNATS:
		if !c.Events.EmbeddedServer {
			if err := validateNATSURL(c.Events.NATSURL); err != nil {
				return fmt.Errorf("NATS_URL is invalid: %w", err)
			}
		}
	default:
		return fmt.Errorf("EVENTS_TRANSPORT must be %s or %s, got %q", TransportGoChannel, TransportNATS, c.Events.Transport)
	}
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must be non-negative, got %d", c.Events.RetryCount)
	}
	if c.Events.BackfillRate <= 0 {
		return fmt.Errorf("BACKFILL_RATE must be positive, got %g", c.Events.BackfillRate)
	}
	if c.Events.BackfillBurst < 1 {
		return fmt.Errorf("BACKFILL_BURST must be positive, got %d", c.Events.BackfillBurst)
	}
	if c.Events.BackfillInterval < 0 {
		return fmt.Errorf("BACKFILL_INTERVAL must be non-negative, got %v", c.Events.BackfillInterval)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("CACHE_CAPACITY must be non-negative, got %d", c.Cache.Capacity)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("CACHE_TTL must be non-negative, got %v", c.Cache.TTL)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

// ShouldWarnAboutCORS reports a wildcard origin in production.
func (c *Config) ShouldWarnAboutCORS() bool {
	if !c.IsProduction() {
		return false
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be trace, debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateRecommend() error {
	if c.Recommend.Parallelism < 0 {
		return fmt.Errorf("RECOMMEND_PARALLELISM must be non-negative, got %d", c.Recommend.Parallelism)
	}
	if c.Recommend.LexiconKeep < 0 {
		return fmt.Errorf("LEXICON_KEEP must be non-negative, got %d", c.Recommend.LexiconKeep)
	}
	return c.Recommend.EngineConfig().Validate()
}

// validateNATSURL accepts nats, tls, ws and wss URLs with a host.
func validateNATSURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	switch parsed.Scheme {
	case "nats", "tls", "ws", "wss":
	default:
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("host is required (e.g., localhost:4222)")
	}
	return nil
}
