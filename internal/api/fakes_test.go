// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/eventprocessor"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/storage"
)

// memCatalog is an in-memory CatalogReader and CatalogWriter.
type memCatalog struct {
	mu       sync.Mutex
	movies   map[string]recommend.Movie
	reviews  []recommend.Review
	labels   map[string]uint64
	version  int64
	pingErr  error
	readErr  error
	snapshot int
}

func newMemCatalog() *memCatalog {
	c := &memCatalog{
		movies: make(map[string]recommend.Movie),
		labels: make(map[string]uint64),
	}
	for _, m := range database.SeedMovies {
		c.movies[m.ID] = m
	}
	c.reviews = append(c.reviews, database.SeedReviews...)
	return c
}

func (c *memCatalog) Catalog(_ context.Context) ([]recommend.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, c.readErr
	}
	return c.sortedMovies(), nil
}

func (c *memCatalog) sortedMovies() []recommend.Movie {
	movies := make([]recommend.Movie, 0, len(c.movies))
	for _, m := range c.movies {
		movies = append(movies, m)
	}
	sort.Slice(movies, func(i, j int) bool { return movies[i].ID < movies[j].ID })
	return movies
}

func (c *memCatalog) Movie(_ context.Context, id string) (*recommend.Movie, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return nil, c.readErr
	}
	m, ok := c.movies[id]
	if !ok {
		return nil, fmt.Errorf("movie %s: %w", id, database.ErrNotFound)
	}
	return &m, nil
}

func (c *memCatalog) Reviews(_ context.Context, movieID string) ([]recommend.Review, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []recommend.Review
	for _, r := range c.reviews {
		if r.MovieID == movieID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (c *memCatalog) Snapshot(_ context.Context) ([]recommend.Movie, map[string][]recommend.Review, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot++
	if c.readErr != nil {
		return nil, nil, c.readErr
	}
	byMovie := make(map[string][]recommend.Review)
	for _, r := range c.reviews {
		byMovie[r.MovieID] = append(byMovie[r.MovieID], r)
	}
	return c.sortedMovies(), byMovie, nil
}

func (c *memCatalog) DataVersion() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

func (c *memCatalog) State() string {
	if c.readErr != nil && errors.Is(c.readErr, database.ErrUnavailable) {
		return "open"
	}
	return "closed"
}

func (c *memCatalog) InsertMovie(_ context.Context, m *recommend.Movie) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.movies[m.ID]; ok {
		return fmt.Errorf("movie %s: %w", m.ID, database.ErrDuplicate)
	}
	c.movies[m.ID] = *m
	c.version++
	return nil
}

func (c *memCatalog) InsertReview(_ context.Context, r *recommend.Review) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.movies[r.MovieID]; !ok {
		return fmt.Errorf("review %s: %w", r.ID, recommend.ErrUnknownMovieReference)
	}
	for _, existing := range c.reviews {
		if existing.ID == r.ID {
			return fmt.Errorf("review %s: %w", r.ID, database.ErrDuplicate)
		}
	}
	c.reviews = append(c.reviews, *r)
	c.version++
	return nil
}

func (c *memCatalog) StaleReviews(_ context.Context, version uint64) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var ids []string
	for _, r := range c.reviews {
		if c.labels[r.ID] != version {
			ids = append(ids, r.ID)
		}
	}
	return ids, nil
}

func (c *memCatalog) Ping(_ context.Context) error {
	return c.pingErr
}

func (c *memCatalog) snapshots() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// recordingPublisher records published events.
type recordingPublisher struct {
	mu       sync.Mutex
	reviews  []*eventprocessor.ReviewIngested
	lexicons []*eventprocessor.LexiconPublished
	err      error
}

func (p *recordingPublisher) PublishReviewIngested(_ context.Context, ev *eventprocessor.ReviewIngested) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.reviews = append(p.reviews, ev)
	return fmt.Sprintf("entry-%d", len(p.reviews)), nil
}

func (p *recordingPublisher) PublishLexicon(_ context.Context, ev *eventprocessor.LexiconPublished) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.lexicons = append(p.lexicons, ev)
	return nil
}

type fixedBackfill struct {
	status eventprocessor.BackfillStatus
}

func (b fixedBackfill) Status() eventprocessor.BackfillStatus { return b.status }

// testEnv bundles a handler, its fakes and the router.
type testEnv struct {
	catalog *memCatalog
	events  *recordingPublisher
	handler *Handler
	server  http.Handler
}

func newTestEnv(t *testing.T, mutate func(*recommend.Config)) *testEnv {
	t.Helper()
	rc := recommend.DefaultConfig()
	if mutate != nil {
		mutate(rc)
	}
	engine, err := recommend.NewEngine(rc, recommend.DefaultLexicon())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	cfg := &config.Config{}
	cfg.Cache.Capacity = 100
	cfg.Security.RateLimitDisabled = true
	cfg.Recommend.LexiconKeep = 2

	catalog := newMemCatalog()
	events := &recordingPublisher{}
	h := NewHandler(catalog, catalog, engine, cfg)
	h.SetEventPublisher(events)

	lexicons, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	h.SetLexiconStore(lexicons)

	return &testEnv{
		catalog: catalog,
		events:  events,
		handler: h,
		server:  NewRouter(h, cfg).SetupChi(),
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope decodes the envelope, placing data into dst when non-nil.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) models.APIResponse {
	t.Helper()
	var raw struct {
		Status   string           `json:"status"`
		Data     json.RawMessage  `json:"data"`
		Metadata models.Metadata  `json:"metadata"`
		Error    *models.APIError `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if dst != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, dst); err != nil {
			t.Fatalf("decode data %s: %v", raw.Data, err)
		}
	}
	return models.APIResponse{Status: raw.Status, Metadata: raw.Metadata, Error: raw.Error}
}

func wantError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, status, rec.Body.String())
	}
	env := decodeEnvelope(t, rec, nil)
	if env.Status != "error" || env.Error == nil || env.Error.Code != code {
		t.Errorf("error = %+v, want code %s", env.Error, code)
	}
}
