// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. cfg may be nil, which applies default CORS and
// rate limits.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	var sec *config.SecurityConfig
	if cfg != nil {
		sec = &cfg.Security
	}
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(ChiMiddlewareConfigFrom(sec)),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to chi's signature.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chiMiddleware(middleware.PrometheusMetrics))
	r.Use(h.latency.Middleware)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, codeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(5, "application/json"))

		r.Get("/health", h.Health)
		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)
		r.Get("/stats/performance", h.PerformanceStats)

		r.Get("/movies", h.ListMovies)
		r.Get("/movies/{id}", h.GetMovie)
		r.Get("/movies/{id}/reviews", h.MovieReviews)
		r.Get("/movies/{id}/quality", h.MovieQuality)
		r.Get("/movies/{id}/recommendations", h.MovieRecommendations)
		r.Get("/lexicon", h.GetLexicon)
		r.Get("/lexicon/backfill", h.BackfillStatus)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit("write"))

			r.Post("/movies", h.CreateMovie)
			r.Post("/reviews", h.CreateReview)
			r.Post("/lexicon", h.UpdateLexicon)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit("compute"))

			r.Post("/recommendations/profile", h.ProfileRecommendations)
			r.Post("/recommendations/preferences", h.PreferenceRecommendations)
			r.Post("/sentiment/classify", h.Classify)
		})
	})

	return r
}
