// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package reranking

import (
	"context"
	"testing"

	"github.com/tomtom215/marquee/internal/recommend"
)

func candidate(id string, score float64, genres ...string) recommend.Candidate {
	return recommend.Candidate{
		Movie: recommend.Movie{ID: id, Genres: genres},
		Score: score,
	}
}

func TestNewMMR(t *testing.T) {
	tests := []struct {
		name       string
		lambda     float64
		wantLambda float64
	}{
		{"normal value", 0.7, 0.7},
		{"zero value", 0.0, 0.0},
		{"one value", 1.0, 1.0},
		{"negative clamped to zero", -0.5, 0.0},
		{"above one clamped to one", 1.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mmr := NewMMR(tt.lambda)
			if mmr.lambda != tt.wantLambda {
				t.Errorf("lambda = %f, want %f", mmr.lambda, tt.wantLambda)
			}
		})
	}
}

func TestMMR_Name(t *testing.T) {
	if got := NewMMR(0.7).Name(); got != "mmr" {
		t.Errorf("Name() = %q, want %q", got, "mmr")
	}
}

func TestMMR_Rerank(t *testing.T) {
	items := []recommend.Candidate{
		candidate("m1", 1.0, "Action"),
		candidate("m2", 0.9, "Action"),
		candidate("m3", 0.85, "Comedy"),
		candidate("m4", 0.8, "Action"),
		candidate("m5", 0.75, "Drama"),
		candidate("m6", 0.7, "Comedy"),
	}

	tests := []struct {
		name    string
		lambda  float64
		k       int
		wantLen int
	}{
		{"pure relevance", 1.0, 3, 3},
		{"balanced", 0.7, 3, 3},
		{"k larger than items", 0.7, 10, 6},
		{"k zero returns input", 0.7, 0, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewMMR(tt.lambda).Rerank(context.Background(), items, tt.k)
			if len(result) != tt.wantLen {
				t.Errorf("len(result) = %d, want %d", len(result), tt.wantLen)
			}
		})
	}
}

func TestMMR_Rerank_DiversityEffect(t *testing.T) {
	items := []recommend.Candidate{
		candidate("m1", 1.0, "Action"),
		candidate("m2", 0.95, "Action"),
		candidate("m3", 0.9, "Action"),
		candidate("m4", 0.5, "Comedy"),
		candidate("m5", 0.4, "Drama"),
	}

	t.Run("pure relevance keeps input order", func(t *testing.T) {
		result := NewMMR(1.0).Rerank(context.Background(), items, 3)
		for i, want := range []string{"m1", "m2", "m3"} {
			if result[i].Movie.ID != want {
				t.Errorf("result[%d] = %s, want %s", i, result[i].Movie.ID, want)
			}
		}
	})

	t.Run("low lambda promotes diversity", func(t *testing.T) {
		result := NewMMR(0.3).Rerank(context.Background(), items, 3)

		genresSeen := make(map[string]bool)
		for _, item := range result {
			for _, g := range item.Movie.Genres {
				genresSeen[g] = true
			}
		}
		if len(genresSeen) < 2 {
			t.Errorf("expected genre diversity, only saw %v", genresSeen)
		}
		if result[0].Movie.ID != "m1" {
			t.Errorf("first pick = %s, want m1", result[0].Movie.ID)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := NewMMR(0.5).Rerank(context.Background(), items, 4)
		b := NewMMR(0.5).Rerank(context.Background(), items, 4)
		for i := range a {
			if a[i].Movie.ID != b[i].Movie.ID {
				t.Fatalf("run mismatch at %d: %s vs %s", i, a[i].Movie.ID, b[i].Movie.ID)
			}
		}
	})
}

func TestMMR_Rerank_EmptyInput(t *testing.T) {
	mmr := NewMMR(0.7)

	if result := mmr.Rerank(context.Background(), nil, 5); len(result) != 0 {
		t.Errorf("expected empty result for nil input, got %d items", len(result))
	}
	if result := mmr.Rerank(context.Background(), []recommend.Candidate{}, 5); len(result) != 0 {
		t.Errorf("expected empty result for empty slice, got %d items", len(result))
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name     string
		a        []string
		b        []string
		expected float64
	}{
		{"identical genres", []string{"Action", "Sci-Fi"}, []string{"Action", "Sci-Fi"}, 1.0},
		{"no overlap", []string{"Action"}, []string{"Comedy"}, 0.0},
		{"partial overlap", []string{"Action", "Sci-Fi"}, []string{"Action", "Drama"}, 1.0 / 3.0},
		{"both empty", nil, nil, 0.0},
		{"one empty", []string{"Action"}, nil, 0.0},
		{"case insensitive", []string{"ACTION"}, []string{"action"}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := jaccard(genreSet(tt.a), genreSet(tt.b))
			if result < tt.expected-0.01 || result > tt.expected+0.01 {
				t.Errorf("jaccard(%v, %v) = %f, want %f", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestMMR_Rerank_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []recommend.Candidate{
		candidate("m1", 1.0, "Action"),
		candidate("m2", 0.9, "Comedy"),
	}
	if got := NewMMR(0.5).Rerank(ctx, items, 2); len(got) != 0 {
		t.Errorf("len(result) = %d, want 0 for a canceled context", len(got))
	}
}
