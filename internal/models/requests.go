// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import (
	"strings"

	"github.com/tomtom215/marquee/internal/recommend"
)

// CreateMovieRequest is the body of POST /movies.
type CreateMovieRequest struct {
	ID          string   `json:"id" validate:"required,max=64"`
	Title       string   `json:"title" validate:"required,max=256"`
	Overview    string   `json:"overview" validate:"max=4096"`
	PosterURL   string   `json:"posterUrl" validate:"omitempty,url"`
	Rating      float64  `json:"rating" validate:"gte=0,lte=10"`
	Genres      []string `json:"genres" validate:"min=1,max=32,dive,required,max=64"`
	ReleaseYear int      `json:"releaseYear" validate:"releaseyear"`
}

// Movie converts the request into a catalog entry with trimmed genre names.
func (r *CreateMovieRequest) Movie() recommend.Movie {
	genres := make([]string, 0, len(r.Genres))
	for _, g := range r.Genres {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}
	return recommend.Movie{
		ID:          strings.TrimSpace(r.ID),
		Title:       strings.TrimSpace(r.Title),
		Overview:    r.Overview,
		PosterURL:   r.PosterURL,
		Rating:      r.Rating,
		Genres:      genres,
		ReleaseYear: r.ReleaseYear,
	}
}

// CreateReviewRequest is the body of POST /reviews. ID is generated when empty.
// Empty text is accepted and classifies as neutral.
type CreateReviewRequest struct {
	ID        string          `json:"id" validate:"omitempty,max=64"`
	MovieID   string          `json:"movieId" validate:"required,max=64"`
	Text      string          `json:"text" validate:"max=10000"`
	Rating    float64         `json:"rating" validate:"gte=0,lte=10"`
	Sentiment recommend.Label `json:"sentiment" validate:"omitempty,sentiment"`
}

// ProfileRequest is the body of POST /recommendations/profile.
type ProfileRequest struct {
	LikedIDs []string `json:"likedIds" validate:"required,min=1,max=100,dive,required"`
	K        int      `json:"k" validate:"gte=0,lte=100"`
}

// PreferenceRequest is the body of POST /recommendations/preferences.
type PreferenceRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
	N    int    `json:"n" validate:"gte=0,lte=100"`
}

// ClassifyRequest is the body of POST /sentiment/classify.
type ClassifyRequest struct {
	Text string `json:"text" validate:"required,max=10000"`
}

// LexiconUpdateRequest is the body of POST /lexicon. Entries are merged into
// the current lexicon and published as the next version. Weights are bounded
// to [-1, 1] so polarity stays in the same range.
type LexiconUpdateRequest struct {
	Entries map[string]float64 `json:"entries" validate:"required,min=1,max=1000,dive,keys,required,max=64,endkeys,gte=-1,lte=1"`
}
