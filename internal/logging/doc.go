// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package logging provides the process-wide zerolog logger.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("server starting")
//	logging.Error().Err(err).Msg("ingest failed")
//	logging.Ctx(ctx).Info().Str("movie_id", id).Msg("review stored")
//
// Ctx adds request_id and correlation_id fields when the context carries them.
//
// # Adapters
//
// Some dependencies bring their own logger interface. Both adapters forward to
// zerolog so every line shares one format:
//
//   - NewSlogLogger: log/slog, used by the suture supervisor via sutureslog
//   - NewWatermillLogger: watermill.LoggerAdapter for the event router
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event is
// never written.
package logging
