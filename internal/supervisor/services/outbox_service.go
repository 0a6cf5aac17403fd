// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/wal"
)

// Outbox is the durable event log the replay loop drains.
// *wal.BadgerWAL satisfies it.
type Outbox interface {
	Replay(ctx context.Context, publisher wal.Publisher) (*wal.ReplayResult, error)
	Compact(ctx context.Context) (int, error)
}

// OutboxReplayService republishes unconfirmed outbox entries on an interval
// and compacts the log after each pass.
type OutboxReplayService struct {
	outbox    Outbox
	publisher wal.Publisher
	interval  time.Duration
	name      string
}

// NewOutboxReplayService builds the service. A non-positive interval uses 30s.
func NewOutboxReplayService(outbox Outbox, publisher wal.Publisher, interval time.Duration) *OutboxReplayService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &OutboxReplayService{
		outbox:    outbox,
		publisher: publisher,
		interval:  interval,
		name:      "outbox-replay",
	}
}

// Serve implements suture.Service. The first pass runs immediately so
// entries left over from a crash are delivered at startup.
func (s *OutboxReplayService) Serve(ctx context.Context) error {
	s.pass(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *OutboxReplayService) pass(ctx context.Context) {
	result, err := s.outbox.Replay(ctx, s.publisher)
	if err != nil {
		if ctx.Err() == nil {
			logging.Warn().Err(err).Msg("Outbox replay failed")
		}
		return
	}
	if result.TotalPending > 0 {
		logging.Info().
			Int("pending", result.TotalPending).
			Int("republished", result.Republished).
			Int("failed", result.Failed).
			Int("expired", result.Expired).
			Int("dropped", result.Dropped).
			Dur("duration", result.Duration).
			Msg("Outbox replay pass")
	}

	if n, err := s.outbox.Compact(ctx); err != nil {
		logging.Warn().Err(err).Msg("Outbox compaction failed")
	} else if n > 0 {
		logging.Debug().Int("removed", n).Msg("Outbox compacted")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *OutboxReplayService) String() string {
	return s.name
}
