// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"fmt"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/eventprocessor"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/recommend"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/wal"
)

// EventComponents holds the event pipeline.
type EventComponents struct {
	Transport *eventprocessor.Transport
	Publisher *eventprocessor.Publisher
	Backfill  *eventprocessor.Backfill
	Classify  *eventprocessor.ClassificationHandler
}

// Close releases the publisher and then the transport.
func (c *EventComponents) Close() error {
	_ = c.Publisher.Close()
	return c.Transport.Close()
}

// initEvents builds the transport, the outbox-backed publisher and both
// consumers, and wires them into handler.
func initEvents(cfg *config.Config, db *database.DB, outbox *wal.BadgerWAL, engine *recommend.Engine, handler *api.Handler) (*EventComponents, error) {
	transport, err := eventprocessor.NewTransport(&cfg.Events, logging.NewWatermillLogger(logging.WithComponent("watermill")))
	if err != nil {
		return nil, fmt.Errorf("create event transport: %w", err)
	}

	publisher, err := eventprocessor.NewPublisher(transport.Publisher, outbox, nil)
	if err != nil {
		_ = transport.Close()
		return nil, fmt.Errorf("create event publisher: %w", err)
	}

	invalidator := handler.ResponseCache()
	backfill := eventprocessor.NewBackfill(db, engine, cfg.Events.BackfillRate, cfg.Events.BackfillBurst, invalidator)
	classify := eventprocessor.NewClassificationHandler(db, engine, outbox, invalidator)

	handler.SetEventPublisher(publisher)
	handler.SetBackfill(backfill)

	logging.Info().
		Str("transport", transport.Name).
		Float64("backfill_rate", cfg.Events.BackfillRate).
		Msg("Event pipeline initialized")

	return &EventComponents{
		Transport: transport,
		Publisher: publisher,
		Backfill:  backfill,
		Classify:  classify,
	}, nil
}

// routerFactory builds a fresh router with both handlers on every call.
func (c *EventComponents) routerFactory(cfg *config.Config) services.RouterFactory {
	routerCfg := eventprocessor.RouterConfigFrom(&cfg.Events)
	backfillHandler := eventprocessor.NewBackfillHandler(c.Backfill)

	return func() (services.Runner, error) {
		router, err := eventprocessor.NewRouter(&routerCfg, logging.NewWatermillLogger(logging.WithComponent("router")))
		if err != nil {
			return nil, err
		}
		eventprocessor.RegisterHandlers(router, c.Transport.SharedSubscriber(), c.Classify, backfillHandler)
		return router, nil
	}
}

// addEventServices registers the event router, outbox replay and backfill
// sweep with the supervisor.
func (c *EventComponents) addEventServices(cfg *config.Config, tree *supervisor.SupervisorTree, outbox *wal.BadgerWAL) {
	tree.AddMessagingService(services.NewRouterService(c.routerFactory(cfg)))
	tree.AddDataService(services.NewOutboxReplayService(outbox, c.Publisher, cfg.WAL.ReplayInterval))
	tree.AddDataService(services.NewBackfillSweepService(c.Backfill, cfg.Events.BackfillInterval))

	logging.Info().
		Dur("replay_interval", cfg.WAL.ReplayInterval).
		Dur("backfill_interval", cfg.Events.BackfillInterval).
		Msg("Event services added to supervisor tree")
}
