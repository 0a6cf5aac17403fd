// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package wal

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/config"
)

// testEvent stands in for a review event without importing eventprocessor.
type testEvent struct {
	ReviewID string `json:"review_id"`
	MovieID  string `json:"movie_id"`
}

func createTestConfig(t *testing.T) *config.WALConfig {
	t.Helper()
	return &config.WALConfig{
		Path:           filepath.Join(t.TempDir(), "wal"),
		SyncWrites:     false,
		ReplayInterval: time.Second,
		MaxRetries:     3,
		EntryTTL:       time.Hour,
	}
}

func openTestWAL(t *testing.T, cfg *config.WALConfig) *BadgerWAL {
	t.Helper()
	w, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := w.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return w
}

func TestOpen_EmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(&config.WALConfig{}); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Open(empty) error = %v, want ErrEmptyPath", err)
	}
	if _, err := Open(nil); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("Open(nil) error = %v, want ErrEmptyPath", err)
	}
}

func TestWriteConfirm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := openTestWAL(t, createTestConfig(t))

	id, err := w.Write(ctx, &testEvent{ReviewID: "r1", MovieID: "1"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if id == "" {
		t.Fatal("Write() returned empty id")
	}

	pending, err := w.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("Pending() = %+v, want one entry %s", pending, id)
	}

	var ev testEvent
	if err := pending[0].UnmarshalPayload(&ev); err != nil {
		t.Fatalf("UnmarshalPayload() error = %v", err)
	}
	if ev.ReviewID != "r1" || ev.MovieID != "1" {
		t.Errorf("payload = %+v", ev)
	}

	if err := w.Confirm(ctx, id); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	pending, err = w.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("Pending() after confirm = %d entries, want 0", len(pending))
	}

	got, err := w.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.Confirmed || got.ConfirmedAt == nil {
		t.Errorf("Get() = %+v, want confirmed", got)
	}

	stats := w.Stats()
	if stats.PendingCount != 0 || stats.ConfirmedCount != 1 {
		t.Errorf("Stats() pending=%d confirmed=%d, want 0/1", stats.PendingCount, stats.ConfirmedCount)
	}
	if stats.TotalWrites != 1 || stats.TotalConfirms != 1 {
		t.Errorf("Stats() writes=%d confirms=%d, want 1/1", stats.TotalWrites, stats.TotalConfirms)
	}
}

func TestWrite_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := openTestWAL(t, createTestConfig(t))

	if _, err := w.Write(ctx, nil); !errors.Is(err, ErrNilEvent) {
		t.Errorf("Write(nil) error = %v, want ErrNilEvent", err)
	}
	if _, err := w.Write(ctx, make(chan int)); err == nil {
		t.Error("Write(chan) expected marshal error")
	}
}

func TestConfirm_Errors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := openTestWAL(t, createTestConfig(t))

	tests := []struct {
		name string
		id   string
		want error
	}{
		{"empty id", "", ErrEmptyEntryID},
		{"unknown id", "does-not-exist", ErrEntryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := w.Confirm(ctx, tt.id); !errors.Is(err, tt.want) {
				t.Errorf("Confirm(%q) error = %v, want %v", tt.id, err, tt.want)
			}
		})
	}

	id, err := w.Write(ctx, &testEvent{ReviewID: "r1"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Confirm(ctx, id); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if err := w.Confirm(ctx, id); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("second Confirm() error = %v, want ErrEntryNotFound", err)
	}
}

func TestPending_OrderAndLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := openTestWAL(t, createTestConfig(t))

	var ids []string
	for _, r := range []string{"r1", "r2", "r3", "r4"} {
		id, err := w.Write(ctx, &testEvent{ReviewID: r})
		if err != nil {
			t.Fatalf("Write(%s) error = %v", r, err)
		}
		ids = append(ids, id)
	}

	all, err := w.Pending(ctx, 0)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(all) != len(ids) {
		t.Fatalf("Pending() = %d entries, want %d", len(all), len(ids))
	}
	for i, e := range all {
		if e.ID != ids[i] {
			t.Errorf("Pending()[%d] = %s, want %s", i, e.ID, ids[i])
		}
	}

	two, err := w.Pending(ctx, 2)
	if err != nil {
		t.Fatalf("Pending(2) error = %v", err)
	}
	if len(two) != 2 || two[0].ID != ids[0] || two[1].ID != ids[1] {
		t.Errorf("Pending(2) = %v, want first two entries", two)
	}
}

func TestUpdateAttempt(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := openTestWAL(t, createTestConfig(t))

	id, err := w.Write(ctx, &testEvent{ReviewID: "r1"})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := w.UpdateAttempt(ctx, id, "publish failed"); err != nil {
			t.Fatalf("UpdateAttempt() error = %v", err)
		}
	}

	e, err := w.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if e.Attempts != 2 || e.LastError != "publish failed" || e.LastAttemptAt.IsZero() {
		t.Errorf("entry = %+v, want 2 attempts with last error", e)
	}

	if err := w.UpdateAttempt(ctx, "missing", "x"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("UpdateAttempt(missing) error = %v, want ErrEntryNotFound", err)
	}
}

func TestDeleteAndCompact(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	w := openTestWAL(t, createTestConfig(t))

	keep, err := w.Write(ctx, &testEvent{ReviewID: "keep"})
	if err != nil {
		t.Fatal(err)
	}
	gone, err := w.Write(ctx, &testEvent{ReviewID: "gone"})
	if err != nil {
		t.Fatal(err)
	}
	done, err := w.Write(ctx, &testEvent{ReviewID: "done"})
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Delete(ctx, gone); err != nil {
		t.Fatalf("Delete(pending) error = %v", err)
	}
	if err := w.Delete(ctx, gone); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Delete(deleted) error = %v, want ErrEntryNotFound", err)
	}

	if err := w.Confirm(ctx, done); err != nil {
		t.Fatal(err)
	}
	removed, err := w.Compact(ctx)
	if err != nil {
		t.Fatalf("Compact() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Compact() removed %d, want 1", removed)
	}
	if _, err := w.Get(ctx, done); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Get(compacted) error = %v, want ErrEntryNotFound", err)
	}
	if _, err := w.Get(ctx, keep); err != nil {
		t.Errorf("Get(pending) error = %v", err)
	}
	if w.Stats().LastCompaction.IsZero() {
		t.Error("LastCompaction not set")
	}
}

func TestReopen_PreservesPending(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := createTestConfig(t)

	w, err := Open(cfg)
	if err != nil {
		t.Fatal(err)
	}
	id, err := w.Write(ctx, &testEvent{ReviewID: "r1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	w2 := openTestWAL(t, cfg)
	pending, err := w2.Pending(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Errorf("Pending() after reopen = %v, want [%s]", pending, id)
	}
}

func TestClosed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	w, err := Open(createTestConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	if _, err := w.Write(ctx, &testEvent{}); !errors.Is(err, ErrWALClosed) {
		t.Errorf("Write() error = %v, want ErrWALClosed", err)
	}
	if err := w.Confirm(ctx, "x"); !errors.Is(err, ErrWALClosed) {
		t.Errorf("Confirm() error = %v, want ErrWALClosed", err)
	}
	if _, err := w.Pending(ctx, 0); !errors.Is(err, ErrWALClosed) {
		t.Errorf("Pending() error = %v, want ErrWALClosed", err)
	}
	if s := w.Stats(); s != (Stats{}) {
		t.Errorf("Stats() = %+v, want zero", s)
	}
}

func TestTryClaim(t *testing.T) {
	t.Parallel()
	w := openTestWAL(t, createTestConfig(t))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if w.TryClaim("entry") {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("TryClaim winners = %d, want 1", wins.Load())
	}
	w.Release("entry")
	if !w.TryClaim("entry") {
		t.Error("TryClaim after Release = false, want true")
	}
}
