// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"hash/fnv"
	"sort"
)

// GenreVocabulary is the ordered genre list that fixes feature vector layout.
// It is immutable; Extend returns a new version when genres are added.
type GenreVocabulary struct {
	version uint64
	genres  []string
	index   map[string]int
}

// NewGenreVocabulary builds a vocabulary in the given order. Duplicates and
// empty tags are skipped; the first occurrence wins.
func NewGenreVocabulary(version uint64, genres []string) *GenreVocabulary {
	v := &GenreVocabulary{
		version: version,
		genres:  make([]string, 0, len(genres)),
		index:   make(map[string]int, len(genres)),
	}
	for _, g := range genres {
		v.add(g)
	}
	return v
}

// DeriveVocabulary scans the catalog in id order and records each genre the
// first time it appears. The version is a fingerprint of the resulting order,
// so two derivations agree on the version exactly when they agree on layout.
func DeriveVocabulary(catalog []Movie) *GenreVocabulary {
	ordered := make([]Movie, len(catalog))
	copy(ordered, catalog)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	v := NewGenreVocabulary(0, nil)
	for i := range ordered {
		for _, g := range ordered[i].Genres {
			v.add(g)
		}
	}
	v.version = fingerprint(v.genres)
	return v
}

// Extend returns a vocabulary with any unseen genres appended at version+1.
// When nothing is new the receiver is returned unchanged.
func (v *GenreVocabulary) Extend(genres ...string) *GenreVocabulary {
	fresh := false
	for _, g := range genres {
		if _, ok := v.index[g]; !ok && g != "" {
			fresh = true
			break
		}
	}
	if !fresh {
		return v
	}

	next := NewGenreVocabulary(v.version+1, v.genres)
	for _, g := range genres {
		next.add(g)
	}
	return next
}

// Version returns the vocabulary version.
func (v *GenreVocabulary) Version() uint64 {
	return v.version
}

// Len returns the number of genres.
func (v *GenreVocabulary) Len() int {
	return len(v.genres)
}

// Genres returns a copy of the ordered genre list.
func (v *GenreVocabulary) Genres() []string {
	out := make([]string, len(v.genres))
	copy(out, v.genres)
	return out
}

// Index returns the vector slot for a genre.
func (v *GenreVocabulary) Index(genre string) (int, bool) {
	i, ok := v.index[genre]
	return i, ok
}

func (v *GenreVocabulary) add(g string) {
	if g == "" {
		return
	}
	if _, ok := v.index[g]; ok {
		return
	}
	v.index[g] = len(v.genres)
	v.genres = append(v.genres, g)
}

func fingerprint(genres []string) uint64 {
	h := fnv.New64a()
	for _, g := range genres {
		_, _ = h.Write([]byte(g))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}
