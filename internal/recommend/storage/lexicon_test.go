// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/recommend"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
	}{
		{
			name: "creates directory if not exists",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "new_dir")
			},
		},
		{
			name: "uses existing directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.setup(t))
			if err != nil {
				t.Fatalf("NewStore() error = %v", err)
			}
			if _, ok := store.LatestVersion(); ok {
				t.Error("LatestVersion() reported a version in an empty store")
			}
		})
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	lex := recommend.DefaultLexicon().With(map[string]float64{"masterpiece": 0.75})
	meta, err := store.Save(ctx, lex)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if meta.Version != 2 || meta.Terms != lex.Len() {
		t.Errorf("metadata = %+v, want version 2 with %d terms", meta, lex.Len())
	}
	if meta.Checksum == "" {
		t.Error("expected checksum to be set")
	}

	loaded, loadedMeta, err := store.Load(ctx, 0)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Version() != 2 {
		t.Errorf("loaded version = %d, want 2", loaded.Version())
	}
	if loaded.Weight("masterpiece") != 0.75 || loaded.Weight("terrible") != -1 {
		t.Errorf("loaded weights wrong: masterpiece=%v terrible=%v",
			loaded.Weight("masterpiece"), loaded.Weight("terrible"))
	}
	if loadedMeta.Checksum != meta.Checksum {
		t.Errorf("checksum = %s, want %s", loadedMeta.Checksum, meta.Checksum)
	}
}

func TestStore_LoadEmpty(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if _, _, err := store.Load(context.Background(), 0); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("Load() error = %v, want ErrNoSnapshot", err)
	}
}

func TestStore_RescanOnOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	lex := recommend.DefaultLexicon()
	for i := 0; i < 3; i++ {
		if _, err := first.Save(ctx, lex); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		lex = lex.With(map[string]float64{"dull": -0.5})
	}

	second, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	latest, ok := second.LatestVersion()
	if !ok || latest != 3 {
		t.Errorf("LatestVersion() = %d, %v; want 3, true", latest, ok)
	}

	list, err := second.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 3 || list[0].Version != 1 {
		t.Errorf("List() = %+v, want 3 snapshots oldest first", list)
	}
}

func TestStore_Prune(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()

	lex := recommend.DefaultLexicon()
	for i := 0; i < 4; i++ {
		if _, err := store.Save(ctx, lex); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		lex = lex.With(nil)
	}

	if err := store.Prune(ctx, 2); err != nil {
		t.Fatalf("Prune() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "lexicon_v1.json.gz")); !os.IsNotExist(err) {
		t.Error("expected v1 to be pruned")
	}
	if _, _, err := store.Load(ctx, 4); err != nil {
		t.Errorf("Load(4) error = %v", err)
	}
	list, _ := store.List(ctx)
	if len(list) != 2 {
		t.Errorf("len(List()) = %d, want 2", len(list))
	}
}

func TestStore_ChecksumMismatch(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	ctx := context.Background()
	if _, err := store.Save(ctx, recommend.DefaultLexicon()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	sf, err := store.readFile(1)
	if err != nil {
		t.Fatalf("readFile() error = %v", err)
	}
	sf.Metadata.Checksum = "deadbeef"
	corrupt := &Store{baseDir: dir, versions: []uint64{1}}
	if err := writeRaw(corrupt.path(1), sf); err != nil {
		t.Fatalf("writeRaw() error = %v", err)
	}

	if _, _, err := corrupt.Load(ctx, 1); err == nil {
		t.Error("expected checksum mismatch error")
	}
}

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name   string
		want   uint64
		wantOK bool
	}{
		{"lexicon_v1.json.gz", 1, true},
		{"lexicon_v42.json.gz", 42, true},
		{"lexicon_vx.json.gz", 0, false},
		{"model_v1.gob.gz", 0, false},
		{"lexicon_v1.json.gz.tmp", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseFilename(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("parseFilename(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func writeRaw(path string, sf *storedFile) error {
	body, err := json.Marshal(sf)
	if err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o600)
}
