// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/marquee/internal/logging"
)

// Runner is an event router. *eventprocessor.Router satisfies it.
type Runner interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a router with its handlers registered.
type RouterFactory func() (Runner, error)

// RouterService runs an event router under supervision. A closed router
// cannot be run again, so every restart builds a fresh one from the factory.
type RouterService struct {
	factory RouterFactory
	name    string
}

// NewRouterService wraps factory.
func NewRouterService(factory RouterFactory) *RouterService {
	return &RouterService{factory: factory, name: "event-router"}
}

// Serve implements suture.Service.
func (s *RouterService) Serve(ctx context.Context) error {
	router, err := s.factory()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}
	defer func() {
		if cerr := router.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Event router close failed")
		}
	}()

	logging.Info().Msg("Event router starting")
	runErr := router.Run(ctx)

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr != nil {
		return fmt.Errorf("event router failed: %w", runErr)
	}
	return errors.New("event router stopped unexpectedly")
}

// String implements fmt.Stringer for supervisor logs.
func (s *RouterService) String() string {
	return s.name
}
