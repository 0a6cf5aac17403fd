// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestDeriveVocabulary(t *testing.T) {
	catalog := []Movie{
		{ID: "3", Genres: []string{"Drama", "Crime"}},
		{ID: "1", Genres: []string{"Sci-Fi", "Action"}},
		{ID: "2", Genres: []string{"Action", "Thriller", ""}},
	}

	v := DeriveVocabulary(catalog)
	want := []string{"Sci-Fi", "Action", "Thriller", "Drama", "Crime"}
	if got := v.Genres(); !reflect.DeepEqual(got, want) {
		t.Errorf("Genres() = %v, want %v (first seen in id order)", got, want)
	}

	t.Run("order independent", func(t *testing.T) {
		reversed := []Movie{catalog[2], catalog[1], catalog[0]}
		other := DeriveVocabulary(reversed)
		if !reflect.DeepEqual(other.Genres(), v.Genres()) || other.Version() != v.Version() {
			t.Error("derivation depends on catalog order")
		}
	})

	t.Run("version tracks layout", func(t *testing.T) {
		other := DeriveVocabulary(append(catalog, Movie{ID: "4", Genres: []string{"Horror"}}))
		if other.Version() == v.Version() {
			t.Error("different layouts share a version")
		}
	})

	t.Run("input not reordered", func(t *testing.T) {
		if catalog[0].ID != "3" {
			t.Error("DeriveVocabulary sorted the caller's slice")
		}
	})
}

func TestGenreVocabulary_Extend(t *testing.T) {
	v := NewGenreVocabulary(7, []string{"Action", "Drama", "Action"})
	if v.Len() != 2 {
		t.Fatalf("Len() = %d, want 2 (duplicates skipped)", v.Len())
	}

	same := v.Extend("Drama")
	if same != v {
		t.Error("Extend with known genres should return the receiver")
	}

	next := v.Extend("Comedy", "Action")
	if next.Version() != 8 || next.Len() != 3 {
		t.Errorf("Extend() = v%d with %d genres, want v8 with 3", next.Version(), next.Len())
	}
	if v.Len() != 2 {
		t.Error("Extend mutated the original vocabulary")
	}
	if i, ok := next.Index("Comedy"); !ok || i != 2 {
		t.Errorf("Index(Comedy) = %d, %v; want 2, true", i, ok)
	}
}

func TestYearRangeOf(t *testing.T) {
	if _, err := YearRangeOf(nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("YearRangeOf(nil) error = %v, want ErrEmptyCatalog", err)
	}

	r, err := YearRangeOf([]Movie{{ReleaseYear: 2008}, {ReleaseYear: 1999}, {ReleaseYear: 2010}})
	if err != nil {
		t.Fatalf("YearRangeOf() error = %v", err)
	}
	if r.Min != 1999 || r.Max != 2010 {
		t.Errorf("YearRangeOf() = %+v, want {1999 2010}", r)
	}
}

func TestFeatureVectorizer_Vectorize(t *testing.T) {
	vocab := NewGenreVocabulary(1, []string{"Action", "Comedy", "Drama"})
	vec := NewFeatureVectorizer(vocab, YearRange{Min: 2000, Max: 2020})

	tests := []struct {
		name  string
		movie Movie
		want  []float64
	}{
		{
			name:  "multi-hot with rating and year",
			movie: Movie{Genres: []string{"Action", "Drama"}, Rating: 8, ReleaseYear: 2010},
			want:  []float64{1, 0, 1, 0.8, 0.5},
		},
		{
			name:  "unknown genre ignored",
			movie: Movie{Genres: []string{"Western"}, Rating: 5, ReleaseYear: 2000},
			want:  []float64{0, 0, 0, 0.5, 0},
		},
		{
			name:  "empty genres degrade to zero block",
			movie: Movie{Rating: 10, ReleaseYear: 2020},
			want:  []float64{0, 0, 0, 1, 1},
		},
		{
			name:  "year clamped below",
			movie: Movie{Genres: []string{"Comedy"}, Rating: 0, ReleaseYear: 1990},
			want:  []float64{0, 1, 0, 0, 0},
		},
		{
			name:  "year and rating clamped above",
			movie: Movie{Genres: []string{"Comedy"}, Rating: 12, ReleaseYear: 2030},
			want:  []float64{0, 1, 0, 1, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := vec.Vectorize(tt.movie)
			if got.Len() != vec.Dimension() {
				t.Fatalf("Len() = %d, want %d", got.Len(), vec.Dimension())
			}
			if got.VocabularyVersion != 1 {
				t.Errorf("VocabularyVersion = %d, want 1", got.VocabularyVersion)
			}
			for i := range tt.want {
				if math.Abs(got.Values[i]-tt.want[i]) > 1e-12 {
					t.Errorf("Values = %v, want %v", got.Values, tt.want)
					break
				}
			}
		})
	}
}

func TestFeatureVectorizer_SingleYear(t *testing.T) {
	vec := NewFeatureVectorizer(NewGenreVocabulary(1, nil), YearRange{Min: 2020, Max: 2020})
	got := vec.Vectorize(Movie{ReleaseYear: 2020})
	if got.Values[1] != 0.5 {
		t.Errorf("single-year catalog year slot = %v, want 0.5", got.Values[1])
	}
}
