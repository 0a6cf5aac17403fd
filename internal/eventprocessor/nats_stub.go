// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//go:build !nats

package eventprocessor

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/marquee/internal/config"
)

func newNATSTransport(_ *config.EventsConfig, _ watermill.LoggerAdapter) (*Transport, error) {
	return nil, ErrNATSNotEnabled
}
