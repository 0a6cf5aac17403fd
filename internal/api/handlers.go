// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/cache"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/eventprocessor"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/middleware"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/storage"
)

// Version is reported by the health endpoint. Set at build time with
// -ldflags "-X github.com/tomtom215/marquee/internal/api.Version=...".
var Version = "dev"

// CatalogReader serves catalog reads. *database.CatalogReader satisfies it.
type CatalogReader interface {
	Catalog(ctx context.Context) ([]recommend.Movie, error)
	Movie(ctx context.Context, id string) (*recommend.Movie, error)
	Reviews(ctx context.Context, movieID string) ([]recommend.Review, error)
	Snapshot(ctx context.Context) ([]recommend.Movie, map[string][]recommend.Review, error)
	DataVersion() int64
	State() string
}

// CatalogWriter serves catalog writes. *database.DB satisfies it.
type CatalogWriter interface {
	InsertMovie(ctx context.Context, m *recommend.Movie) error
	InsertReview(ctx context.Context, r *recommend.Review) error
	StaleReviews(ctx context.Context, version uint64) ([]string, error)
	Ping(ctx context.Context) error
}

// EventPublisher queues review classification and lexicon backfills.
// *eventprocessor.Publisher satisfies it.
type EventPublisher interface {
	PublishReviewIngested(ctx context.Context, ev *eventprocessor.ReviewIngested) (string, error)
	PublishLexicon(ctx context.Context, ev *eventprocessor.LexiconPublished) error
}

// LexiconStore persists published lexicons. *storage.Store satisfies it.
type LexiconStore interface {
	Save(ctx context.Context, lex *recommend.Lexicon) (*storage.SnapshotMetadata, error)
	Prune(ctx context.Context, keep int) error
}

// BackfillReporter exposes the reclassification status.
type BackfillReporter interface {
	Status() eventprocessor.BackfillStatus
}

// Handler serves every API endpoint.
type Handler struct {
	catalog   CatalogReader
	store     CatalogWriter
	engine    *recommend.Engine
	config    *config.Config
	cache     *cache.LRU[interface{}]
	latency   *middleware.LatencyMonitor
	startTime time.Time

	events   EventPublisher   // optional
	lexicons LexiconStore     // optional
	backfill BackfillReporter // optional
}

// NewHandler creates a handler. cfg may be nil in tests.
func NewHandler(catalog CatalogReader, store CatalogWriter, engine *recommend.Engine, cfg *config.Config) *Handler {
	capacity, ttl := 1000, 5*time.Minute
	if cfg != nil {
		capacity, ttl = cfg.Cache.Capacity, cfg.Cache.TTL
	}
	return &Handler{
		catalog:   catalog,
		store:     store,
		engine:    engine,
		config:    cfg,
		cache:     cache.NewLRU[interface{}](capacity, ttl),
		latency:   middleware.NewLatencyMonitor(1000, time.Second),
		startTime: time.Now(),
	}
}

// SetEventPublisher enables asynchronous classification and backfills.
func (h *Handler) SetEventPublisher(p EventPublisher) {
	h.events = p
}

// SetLexiconStore enables lexicon snapshots on publish.
func (h *Handler) SetLexiconStore(s LexiconStore) {
	h.lexicons = s
}

// SetBackfill enables GET /lexicon/backfill.
func (h *Handler) SetBackfill(b BackfillReporter) {
	h.backfill = b
}

// ResponseCache returns the response cache so event handlers can clear it.
func (h *Handler) ResponseCache() *cache.LRU[interface{}] {
	return h.cache
}

// LatencyMonitor returns the request sampler used by the router.
func (h *Handler) LatencyMonitor() *middleware.LatencyMonitor {
	return h.latency
}

// ClearCache drops every cached response.
func (h *Handler) ClearCache() {
	h.cache.Clear()
	logging.Debug().Msg("Response cache cleared")
}

func (h *Handler) lexiconKeep() int {
	if h.config == nil {
		return 0
	}
	return h.config.Recommend.LexiconKeep
}
