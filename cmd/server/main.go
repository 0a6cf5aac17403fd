// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/database"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/wal"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   "marquee",
	})

	logging.Info().Str("version", api.Version).Msg("Starting Marquee with supervisor tree")
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("wal_path", cfg.WAL.Path).
		Str("transport", cfg.Events.Transport).
		Str("environment", cfg.Server.Environment).
		Msg("Configuration loaded")
	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Strs("cors_origins", cfg.Security.CORSOrigins).Msg("CORS allows any origin in production")
	}

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

// run owns every resource so deferred closes happen before main exits.
//
//nolint:gocyclo // sequential setup steps
func run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer closeWithLog("database", db.Close)
	logging.Info().Msg("Database initialized successfully")

	if cfg.Database.Seed {
		seeded, err := db.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		if len(seeded) > 0 {
			// labelled by the startup backfill sweep
			logging.Info().Int("reviews", len(seeded)).Msg("Demo catalog seeded")
		}
	}
	catalog := database.NewCatalogReader(db, database.DefaultBreakerConfig())

	outbox, err := wal.Open(&cfg.WAL)
	if err != nil {
		return fmt.Errorf("open outbox: %w", err)
	}
	defer closeWithLog("outbox", outbox.Close)

	engine, lexicons, err := initEngine(ctx, cfg)
	if err != nil {
		return err
	}

	handler := api.NewHandler(catalog, db, engine, cfg)
	if lexicons != nil {
		handler.SetLexiconStore(lexicons)
	}

	events, err := initEvents(cfg, db, outbox, engine, handler)
	if err != nil {
		return err
	}
	defer closeWithLog("event transport", events.Close)

	// Bridge zerolog to slog for sutureslog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	router := api.NewRouter(handler, cfg)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	events.addEventServices(cfg, tree, outbox)
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, 10*time.Second))
	logging.Info().Interface("services", tree.Services()).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return nil
}

func closeWithLog(name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logging.Error().Err(err).Str("component", name).Msg("Error during shutdown")
	}
}
