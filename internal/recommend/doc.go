// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package recommend implements content-based movie recommendation with
// sentiment-aware review scoring.
//
// # Architecture
//
// Ranking is a pipeline of pure stages over immutable snapshots:
//
//   - Lexicon: versioned term to polarity weight table
//   - SentimentClassifier: mean lexicon polarity of review text, thresholded
//     into positive, neutral or negative
//   - FeatureVectorizer: multi-hot genres, normalized rating and normalized
//     release year against one GenreVocabulary version
//   - ReviewAggregator: per-movie quality score in [0, 1], 0.5 without reviews
//   - Engine: cosine similarity remapped to [0, 1], blended with quality by a
//     pluggable CombineFunc, sorted deterministically
//
// # Determinism
//
// Recommend is a pure function of its inputs. Ties are broken by release year
// descending and then id ascending, and review scores are summed in sorted
// order, so identical inputs produce bit-identical output regardless of
// catalog or review order. Recency weighting measures age from the newest
// review in a set rather than the wall clock.
//
// # Versioning
//
// Vectors carry the version of the vocabulary they were built against.
// Comparing vectors from different versions returns ErrDimensionMismatch.
// Lexicons are republished with Engine.PublishLexicon; calls already running
// keep the lexicon they started with.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), recommend.DefaultLexicon(),
//	    recommend.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//
//	recs, err := engine.Recommend(ctx, reference, catalog, reviewsByMovie, 10)
//
// # Thread Safety
//
// Engine is safe for concurrent use. Per-movie scoring fans out with
// errgroup, bounded by Ranking.Parallelism.
package recommend
