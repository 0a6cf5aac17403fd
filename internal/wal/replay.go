// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package wal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Publisher republishes a stored entry. Implementations decode Entry.Payload
// themselves.
type Publisher interface {
	PublishEntry(ctx context.Context, entry *Entry) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, entry *Entry) error

// PublishEntry implements Publisher.
func (f PublisherFunc) PublishEntry(ctx context.Context, entry *Entry) error {
	return f(ctx, entry)
}

// ReplayResult summarizes one Replay pass.
type ReplayResult struct {
	TotalPending int
	Republished  int
	Failed       int
	Expired      int
	Dropped      int // exceeded MaxRetries
	Skipped      int // claimed elsewhere
	Duration     time.Duration
}

// Replay republishes every pending entry once. Entries older than EntryTTL
// are deleted, as are entries that already failed MaxRetries times. A
// successful publish does not confirm the entry: confirmation belongs to the
// consumer that finished processing it.
//
// Replay is idempotent and safe to call while the outbox is live.
func (w *BadgerWAL) Replay(ctx context.Context, publisher Publisher) (*ReplayResult, error) {
	if publisher == nil {
		return nil, ErrNilPublisher
	}

	start := time.Now()
	entries, err := w.Pending(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	result := &ReplayResult{TotalPending: len(entries)}
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		w.replayOne(ctx, publisher, entry, result)
	}
	result.Duration = time.Since(start)

	if result.Republished+result.Failed+result.Expired+result.Dropped > 0 {
		logging.Info().
			Int("pending", result.TotalPending).
			Int("republished", result.Republished).
			Int("failed", result.Failed).
			Int("expired", result.Expired).
			Int("dropped", result.Dropped).
			Int("skipped", result.Skipped).
			Dur("duration", result.Duration).
			Msg("WAL replay complete")
	}
	return result, ctx.Err()
}

func (w *BadgerWAL) replayOne(ctx context.Context, publisher Publisher, entry *Entry, result *ReplayResult) {
	if !w.TryClaim(entry.ID) {
		result.Skipped++
		return
	}
	defer w.Release(entry.ID)

	if w.cfg.EntryTTL > 0 && w.now().Sub(entry.CreatedAt) > w.cfg.EntryTTL {
		w.drop(ctx, entry, "expire")
		result.Expired++
		return
	}
	if w.cfg.MaxRetries > 0 && entry.Attempts >= w.cfg.MaxRetries {
		logging.Warn().
			Str("entry_id", entry.ID).
			Int("attempts", entry.Attempts).
			Str("last_error", entry.LastError).
			Msg("WAL entry exceeded max retries, dropping")
		w.drop(ctx, entry, "drop")
		result.Dropped++
		return
	}

	metrics.WALOperations.WithLabelValues("replay").Inc()
	if err := publisher.PublishEntry(ctx, entry); err != nil {
		result.Failed++
		if uerr := w.UpdateAttempt(ctx, entry.ID, err.Error()); uerr != nil {
			logging.Warn().Err(uerr).Str("entry_id", entry.ID).Msg("WAL failed to record attempt")
		}
		return
	}
	// Count the republish as an attempt so an entry whose consumer keeps
	// failing still reaches MaxRetries.
	if err := w.UpdateAttempt(ctx, entry.ID, ""); err != nil && !errors.Is(err, ErrEntryNotFound) {
		logging.Warn().Err(err).Str("entry_id", entry.ID).Msg("WAL failed to record attempt")
	}
	result.Republished++
}

func (w *BadgerWAL) drop(ctx context.Context, entry *Entry, op string) {
	if err := w.Delete(ctx, entry.ID); err != nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Str("reason", op).Msg("WAL failed to delete entry")
		return
	}
	metrics.WALOperations.WithLabelValues(op).Inc()
}
