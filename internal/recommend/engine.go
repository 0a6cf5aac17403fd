// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Note: This package performs no I/O and imports no other internal package.
// Storage and transport hand it immutable snapshots.

// Candidate is a movie scored against a reference during ranking.
type Candidate struct {
	Movie      Movie
	Vector     FeatureVector
	Similarity float64
	Quality    float64
	Score      float64
}

// Reranker post-processes a sorted candidate list.
type Reranker interface {
	// Name returns the reranker identifier.
	Name() string

	// Rerank returns at most k candidates.
	Rerank(ctx context.Context, items []Candidate, k int) []Candidate
}

// Engine ranks catalog movies against a reference movie or a profile.
// It is safe for concurrent use. The only mutable state is the published
// lexicon pointer, which is swapped atomically and never modified in place.
type Engine struct {
	config     *Config
	logger     zerolog.Logger
	combine    CombineFunc
	vocabulary *GenreVocabulary
	reranker   Reranker

	lexicon atomic.Pointer[Lexicon]
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards output.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.With().Str("component", "recommend").Logger()
	}
}

// WithVocabulary pins the genre vocabulary instead of deriving it per call.
// Catalog genres missing from the pinned vocabulary are ignored.
func WithVocabulary(v *GenreVocabulary) Option {
	return func(e *Engine) {
		e.vocabulary = v
	}
}

// WithCombineFunc overrides the configured combine function.
func WithCombineFunc(fn CombineFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.combine = fn
		}
	}
}

// WithReranker registers a reranker. It only runs when Diversity.Enabled is set.
func WithReranker(r Reranker) Option {
	return func(e *Engine) {
		e.reranker = r
	}
}

// NewEngine creates a recommendation engine. A nil cfg uses DefaultConfig and
// a nil lexicon uses DefaultLexicon. Invalid configuration is rejected here,
// never per request.
func NewEngine(cfg *Config, lex *Lexicon, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	combine, err := CombineFuncFor(cfg.Ranking)
	if err != nil {
		return nil, err
	}
	if lex == nil {
		lex = DefaultLexicon()
	}

	e := &Engine{
		config:  cfg.Clone(),
		logger:  zerolog.Nop(),
		combine: combine,
	}
	e.lexicon.Store(lex)
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Lexicon returns the currently published lexicon.
func (e *Engine) Lexicon() *Lexicon {
	return e.lexicon.Load()
}

// PublishLexicon publishes a new lexicon version holding the current entries
// overlaid with entries. Calls already in flight keep the version they started
// with.
func (e *Engine) PublishLexicon(entries map[string]float64) *Lexicon {
	for {
		cur := e.lexicon.Load()
		next := cur.With(entries)
		if e.lexicon.CompareAndSwap(cur, next) {
			e.logger.Info().
				Uint64("version", next.Version()).
				Int("terms", next.Len()).
				Msg("published lexicon")
			return next
		}
	}
}

// ReplaceLexicon publishes lex as-is, for example a snapshot loaded at startup.
func (e *Engine) ReplaceLexicon(lex *Lexicon) {
	if lex == nil {
		return
	}
	e.lexicon.Store(lex)
}

// Classifier returns a classifier bound to the current lexicon.
func (e *Engine) Classifier() *SentimentClassifier {
	return e.classifierFor(e.lexicon.Load())
}

// Aggregator returns an aggregator bound to the current lexicon.
func (e *Engine) Aggregator() *ReviewAggregator {
	return e.aggregatorFor(e.lexicon.Load())
}

func (e *Engine) classifierFor(lex *Lexicon) *SentimentClassifier {
	// thresholds were validated by NewEngine
	c, _ := NewSentimentClassifier(lex, e.config.Sentiment) //nolint:errcheck // validated config
	return c
}

func (e *Engine) aggregatorFor(lex *Lexicon) *ReviewAggregator {
	return NewReviewAggregator(e.classifierFor(lex), e.config.Aggregation, e.config.Ranking.Parallelism)
}

// Recommend ranks catalog movies by similarity to ref blended with review
// quality. The reference id is excluded. The result is sorted by score
// descending, then release year descending, then id ascending, and truncated
// to topK (zero falls back to the configured TopK; zero there means all).
//
// An empty catalog, or one holding only the reference, yields an empty slice
// and a nil error.
//
//nolint:gocritic // hugeParam: ref passed by value, never mutated
func (e *Engine) Recommend(ctx context.Context, ref Movie, catalog []Movie, reviewsByMovie map[string][]Review, topK int) ([]MovieRecommendation, error) {
	start := time.Now()
	logger := e.logger.With().
		Str("reference_id", ref.ID).
		Int("catalog_size", len(catalog)).
		Logger()

	candidates := excluding(catalog, map[string]struct{}{ref.ID: {}})
	if len(candidates) == 0 {
		logger.Debug().Msg("no eligible candidates")
		return []MovieRecommendation{}, nil
	}

	vec := e.vectorizerFor(append([]Movie{ref}, catalog...))
	refVec := vec.Vectorize(ref)

	recs, err := e.rank(ctx, refVec, vec, candidates, reviewsByMovie, topK)
	if err != nil {
		return nil, err
	}

	logger.Debug().
		Int("returned", len(recs)).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")
	return recs, nil
}

// RecommendForProfile ranks catalog movies against the mean feature vector of
// the liked movies. Liked movies are excluded from the result. Every liked id
// must be in the catalog.
func (e *Engine) RecommendForProfile(ctx context.Context, likedIDs []string, catalog []Movie, reviewsByMovie map[string][]Review, topK int) ([]MovieRecommendation, error) {
	if len(likedIDs) == 0 {
		return nil, ErrEmptyProfile
	}

	byID := make(map[string]*Movie, len(catalog))
	for i := range catalog {
		byID[catalog[i].ID] = &catalog[i]
	}
	liked := make(map[string]struct{}, len(likedIDs))
	for _, id := range likedIDs {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("liked movie %q: %w", id, ErrUnknownMovieReference)
		}
		liked[id] = struct{}{}
	}

	candidates := excluding(catalog, liked)
	if len(candidates) == 0 {
		return []MovieRecommendation{}, nil
	}

	vec := e.vectorizerFor(catalog)
	profile := FeatureVector{
		Values:            make([]float64, vec.Dimension()),
		VocabularyVersion: vec.Vocabulary().Version(),
	}
	// fixed summation order keeps the profile bit-identical across calls
	ids := make([]string, 0, len(liked))
	for id := range liked {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		v := vec.Vectorize(*byID[id])
		for i, x := range v.Values {
			profile.Values[i] += x
		}
	}
	for i := range profile.Values {
		profile.Values[i] /= float64(len(liked))
	}

	return e.rank(ctx, profile, vec, candidates, reviewsByMovie, topK)
}

// vectorizerFor builds the vectorizer for one ranking call. movies is never
// empty here.
func (e *Engine) vectorizerFor(movies []Movie) *FeatureVectorizer {
	vocab := e.vocabulary
	if vocab == nil {
		vocab = DeriveVocabulary(movies)
	}
	years, _ := YearRangeOf(movies) //nolint:errcheck // movies is non-empty
	return NewFeatureVectorizer(vocab, years)
}

// rank scores candidates in parallel, then sorts, reranks and truncates.
// The sort is the single join point.
func (e *Engine) rank(ctx context.Context, ref FeatureVector, vec *FeatureVectorizer, candidates []Movie, reviewsByMovie map[string][]Review, topK int) ([]MovieRecommendation, error) {
	agg := e.aggregatorFor(e.lexicon.Load())
	scored := make([]Candidate, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Ranking.Parallelism)
	for i := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m := candidates[i]
			v := vec.Vectorize(m)
			sim, err := Similarity(ref, v)
			if err != nil {
				return fmt.Errorf("compare %q: %w", m.ID, err)
			}
			quality := agg.Aggregate(m.ID, reviewsByMovie[m.ID])
			scored[i] = Candidate{
				Movie:      m,
				Vector:     v,
				Similarity: sim,
				Quality:    quality,
				Score:      clamp01(e.combine(sim, quality)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortCandidates(scored)

	k := e.resolveK(topK, len(scored))
	if e.reranker != nil && e.config.Diversity.Enabled {
		scored = e.reranker.Rerank(ctx, scored, k)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	if len(scored) > k {
		scored = scored[:k]
	}

	recs := make([]MovieRecommendation, len(scored))
	for i := range scored {
		recs[i] = MovieRecommendation{Movie: scored[i].Movie, Similarity: scored[i].Score}
	}
	return recs, nil
}

func (e *Engine) resolveK(topK, n int) int {
	if topK <= 0 {
		topK = e.config.Ranking.TopK
	}
	if topK <= 0 || topK > n {
		return n
	}
	return topK
}

// SortCandidates orders by score descending, release year descending, then id
// ascending.
func SortCandidates(items []Candidate) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Movie.ReleaseYear != b.Movie.ReleaseYear {
			return a.Movie.ReleaseYear > b.Movie.ReleaseYear
		}
		return a.Movie.ID < b.Movie.ID
	})
}

func excluding(catalog []Movie, exclude map[string]struct{}) []Movie {
	out := make([]Movie, 0, len(catalog))
	for i := range catalog {
		if _, skip := exclude[catalog[i].ID]; !skip {
			out = append(out, catalog[i])
		}
	}
	return out
}
