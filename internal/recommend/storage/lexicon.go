// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/recommend"
)

const (
	filePrefix = "lexicon_v"
	fileSuffix = ".json.gz"
)

// ErrNoSnapshot is returned by Load when no snapshot exists.
var ErrNoSnapshot = errors.New("no lexicon snapshot found")

// SnapshotMetadata describes a stored lexicon version.
type SnapshotMetadata struct {
	// Version is the lexicon version.
	Version uint64 `json:"version"`

	// Terms is the number of entries.
	Terms int `json:"terms"`

	// SavedAt is when the snapshot was written.
	SavedAt time.Time `json:"saved_at"`

	// Checksum is the SHA-256 of the uncompressed term table.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed size.
	SizeBytes int64 `json:"size_bytes"`
}

// storedFile is the on-disk format.
type storedFile struct {
	Metadata       SnapshotMetadata `json:"metadata"`
	CompressedData []byte           `json:"data"`
}

// Store manages lexicon snapshots in a directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	versions []uint64 // sorted ascending
}

// NewStore creates a store at baseDir, creating the directory if needed.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for snapshot storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	s := &Store{baseDir: baseDir}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan existing snapshots: %w", err)
	}
	return s, nil
}

func (s *Store) scan() error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if v, ok := parseFilename(entry.Name()); ok {
			s.versions = append(s.versions, v)
		}
	}
	sort.Slice(s.versions, func(i, j int) bool { return s.versions[i] < s.versions[j] })
	return nil
}

// parseFilename extracts the version from a name like "lexicon_v3.json.gz".
func parseFilename(name string) (uint64, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return 0, false
	}
	v, err := strconv.ParseUint(name[len(filePrefix):len(name)-len(fileSuffix)], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Save writes lex as a new snapshot. Saving a version that already exists
// overwrites it.
func (s *Store) Save(ctx context.Context, lex *recommend.Lexicon) (*SnapshotMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(lex.Entries())
	if err != nil {
		return nil, fmt.Errorf("encode lexicon: %w", err)
	}
	hash := sha256.Sum256(raw)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(raw); err != nil {
		return nil, fmt.Errorf("compress lexicon: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	meta := SnapshotMetadata{
		Version:   lex.Version(),
		Terms:     lex.Len(),
		SavedAt:   time.Now().UTC(),
		Checksum:  hex.EncodeToString(hash[:]),
		SizeBytes: int64(compressed.Len()),
	}
	body, err := json.Marshal(storedFile{Metadata: meta, CompressedData: compressed.Bytes()})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write then rename so a crash never leaves a truncated snapshot.
	path := s.path(meta.Version)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0o600); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}

	s.track(meta.Version)
	return &meta, nil
}

// Load reads a snapshot. Version 0 loads the latest.
func (s *Store) Load(ctx context.Context, version uint64) (*recommend.Lexicon, *SnapshotMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		if len(s.versions) == 0 {
			return nil, nil, ErrNoSnapshot
		}
		version = s.versions[len(s.versions)-1]
	}

	sf, err := s.readFile(version)
	if err != nil {
		return nil, nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress lexicon: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	raw, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed data: %w", err)
	}

	hash := sha256.Sum256(raw)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum)
	}

	var entries map[string]float64
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, nil, fmt.Errorf("decode lexicon: %w", err)
	}

	return recommend.NewLexicon(sf.Metadata.Version, entries), &sf.Metadata, nil
}

// LatestVersion returns the newest stored version.
func (s *Store) LatestVersion() (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.versions) == 0 {
		return 0, false
	}
	return s.versions[len(s.versions)-1], true
}

// List returns metadata for all stored snapshots, oldest first. Unreadable
// files are skipped.
func (s *Store) List(ctx context.Context) ([]SnapshotMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SnapshotMetadata, 0, len(s.versions))
	for _, v := range s.versions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sf, err := s.readFile(v)
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	return out, nil
}

// Prune removes all but the newest keep snapshots.
func (s *Store) Prune(ctx context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}
	if len(s.versions) <= keep {
		return nil
	}

	cut := len(s.versions) - keep
	for _, v := range s.versions[:cut] {
		if err := ctx.Err(); err != nil {
			return err
		}
		_ = os.Remove(s.path(v)) //nolint:errcheck // best-effort cleanup of old versions
	}
	s.versions = append([]uint64(nil), s.versions[cut:]...)
	return nil
}

func (s *Store) readFile(version uint64) (*storedFile, error) {
	body, err := os.ReadFile(s.path(version))
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	var sf storedFile
	if err := json.Unmarshal(body, &sf); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return &sf, nil
}

func (s *Store) track(version uint64) {
	i := sort.Search(len(s.versions), func(i int) bool { return s.versions[i] >= version })
	if i < len(s.versions) && s.versions[i] == version {
		return
	}
	s.versions = append(s.versions, 0)
	copy(s.versions[i+1:], s.versions[i:])
	s.versions[i] = version
}

func (s *Store) path(version uint64) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s%d%s", filePrefix, version, fileSuffix))
}
