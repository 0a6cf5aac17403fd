// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/recommend/reranking"
	"github.com/tomtom215/marquee/internal/recommend/storage"
)

// initEngine builds the recommendation engine with the newest stored lexicon.
// The returned store is nil when lexicon persistence is disabled.
func initEngine(ctx context.Context, cfg *config.Config) (*recommend.Engine, *storage.Store, error) {
	logger := logging.WithComponent("recommend")

	opts := []recommend.Option{recommend.WithLogger(logger)}
	if cfg.Recommend.DiversityEnabled {
		opts = append(opts, recommend.WithReranker(reranking.NewMMR(cfg.Recommend.DiversityLambda)))
		logger.Info().Float64("lambda", cfg.Recommend.DiversityLambda).Msg("MMR diversity reranking enabled")
	}

	engine, err := recommend.NewEngine(cfg.Recommend.EngineConfig(), recommend.DefaultLexicon(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	if cfg.Recommend.LexiconDir == "" {
		logger.Info().Msg("Lexicon persistence disabled (LEXICON_DIR empty)")
		publishLexiconMetrics(engine.Lexicon())
		return engine, nil, nil
	}

	store, err := storage.NewStore(cfg.Recommend.LexiconDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open lexicon store: %w", err)
	}

	lex, meta, err := store.Load(ctx, 0)
	switch {
	case errors.Is(err, storage.ErrNoSnapshot):
		// first start: record the built-in lexicon as version 1
		if _, err := store.Save(ctx, engine.Lexicon()); err != nil {
			return nil, nil, fmt.Errorf("save default lexicon: %w", err)
		}
		logger.Info().Uint64("version", engine.Lexicon().Version()).Msg("Stored default lexicon")
	case err != nil:
		return nil, nil, fmt.Errorf("load lexicon: %w", err)
	default:
		engine.ReplaceLexicon(lex)
		logger.Info().
			Uint64("version", meta.Version).
			Int("terms", lex.Len()).
			Msg("Loaded lexicon snapshot")
	}

	publishLexiconMetrics(engine.Lexicon())
	return engine, store, nil
}

func publishLexiconMetrics(lex *recommend.Lexicon) {
	metrics.SetLexicon(lex.Version(), lex.Len())
}
