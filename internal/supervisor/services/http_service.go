// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService binds addr, serves on it and shuts the server down
// gracefully when the supervisor stops it. Binding happens inside Serve so an
// address in use is reported as a service failure and retried.
type HTTPServerService struct {
	server          HTTPServer
	addr            string
	shutdownTimeout time.Duration

	mu    sync.Mutex
	bound net.Addr
}

// NewHTTPServerService wraps server. A non-positive shutdownTimeout uses 10s.
func NewHTTPServerService(server HTTPServer, addr string, shutdownTimeout time.Duration) *HTTPServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server:          server,
		addr:            addr,
		shutdownTimeout: shutdownTimeout,
	}
}

// Addr returns the bound address, or nil before the first successful bind.
func (h *HTTPServerService) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bound
}

// Serve implements suture.Service.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", h.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", h.addr, err)
	}

	h.mu.Lock()
	h.bound = ln.Addr()
	h.mu.Unlock()
	logging.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- h.server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return errors.New("http server stopped unexpectedly")
		}
		return fmt.Errorf("http server failed: %w", err)

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-serveErr
		return ctx.Err()
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *HTTPServerService) String() string {
	return "http-server"
}
