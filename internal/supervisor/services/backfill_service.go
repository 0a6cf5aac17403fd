// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// Backfiller reclassifies reviews labelled under an older lexicon.
// *eventprocessor.Backfill satisfies it.
type Backfiller interface {
	Run(ctx context.Context) (int, error)
}

// BackfillSweepService runs a backfill at startup and then on an interval.
// It labels seeded reviews and any review whose ingestion event was lost.
type BackfillSweepService struct {
	backfill Backfiller
	interval time.Duration
	name     string
}

// NewBackfillSweepService builds the service. An interval of zero sweeps once
// at startup only.
func NewBackfillSweepService(backfill Backfiller, interval time.Duration) *BackfillSweepService {
	return &BackfillSweepService{
		backfill: backfill,
		interval: interval,
		name:     "backfill-sweep",
	}
}

// Serve implements suture.Service.
func (s *BackfillSweepService) Serve(ctx context.Context) error {
	s.sweep(ctx)

	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *BackfillSweepService) sweep(ctx context.Context) {
	n, err := s.backfill.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Warn().Err(err).Int("reclassified", n).Msg("Backfill sweep failed")
		}
		return
	}
	if n > 0 {
		logging.Info().Int("reclassified", n).Msg("Backfill sweep labelled stale reviews")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *BackfillSweepService) String() string {
	return s.name
}
