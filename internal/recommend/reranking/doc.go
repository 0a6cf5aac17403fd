// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package reranking implements post-processing for recommendation diversity.
//
// Rerankers run after the engine's deterministic sort and may reorder the
// list, so when one is enabled the output is no longer ordered by score:
//
//	Similarity x Quality -> Sort -> Reranker -> Truncate
//
// # Maximal Marginal Relevance
//
// MMR greedily picks the candidate that maximizes
//
//	lambda * score(i) - (1 - lambda) * max(sim(i, s) for s in selected)
//
// where sim is the Jaccard similarity of the two genre sets. Lambda 1.0
// keeps the original order; 0.0 maximizes genre spread.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, lex,
//	    recommend.WithReranker(reranking.NewMMR(cfg.Diversity.Lambda)))
//
// The reranker only runs when cfg.Diversity.Enabled is true.
package reranking
