// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs the long-lived services of the server under a suture
v4 supervisor tree.

# Overview

Services are grouped into three layers so a failing layer restarts without
taking the others down:

	RootSupervisor ("marquee")
	├── DataSupervisor ("data-layer")
	│   ├── OutboxReplayService    republish unconfirmed review events
	│   └── BackfillSweepService   reclassify reviews with stale labels
	├── MessagingSupervisor ("messaging-layer")
	│   └── RouterService          watermill router with classification handlers
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (service failures, restarts, backoff) are logged through
log/slog via the sutureslog adapter, which the caller bridges to zerolog with
logging.NewSlogLogger.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(services.NewOutboxReplayService(walStore, publisher, cfg.WAL.ReplayInterval))
	tree.AddMessagingService(services.NewRouterService(newRouter))
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, 10*time.Second))

	errCh := tree.ServeBackground(ctx)

# Restart Semantics

A service returning an error is restarted after FailureBackoff once the
failure count passes FailureThreshold; the count decays every FailureDecay
seconds. Returning ctx.Err() after cancellation is a clean stop.
*/
package supervisor
