// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/marquee/internal/config"
)

// RouterConfig holds router and middleware settings.
type RouterConfig struct {
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultRouterConfig returns production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// RouterConfigFrom maps application settings onto RouterConfig.
func RouterConfigFrom(cfg *config.EventsConfig) RouterConfig {
	rc := DefaultRouterConfig()
	if cfg.CloseTimeout > 0 {
		rc.CloseTimeout = cfg.CloseTimeout
	}
	if cfg.RetryCount >= 0 {
		rc.RetryMaxRetries = cfg.RetryCount
	}
	if cfg.RetryInitialInterval > 0 {
		rc.RetryInitialInterval = cfg.RetryInitialInterval
	}
	return rc
}

// Router wraps a Watermill router with the middleware chain every handler
// shares: Recoverer, then Retry, then acking of permanent errors.
type Router struct {
	router   *message.Router
	config   RouterConfig
	logger   watermill.LoggerAdapter
	handlers map[string]*message.Handler
	running  atomic.Bool
}

// NewRouter creates a router. A nil cfg uses DefaultRouterConfig.
func NewRouter(cfg *RouterConfig, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if cfg == nil {
		defaultCfg := DefaultRouterConfig()
		cfg = &defaultCfg
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Outermost first.
	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)
	wmRouter.AddMiddleware(ackPermanent(logger))

	return &Router{
		router:   wmRouter,
		config:   *cfg,
		logger:   logger,
		handlers: make(map[string]*message.Handler),
	}, nil
}

// ackPermanent turns a PermanentError into an ack so the message is neither
// retried nor redelivered.
func ackPermanent(logger watermill.LoggerAdapter) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			out, err := h(msg)
			if reason, ok := PermanentReason(err); ok {
				logger.Error("Dropping message with permanent error", err, watermill.LogFields{
					"message_uuid": msg.UUID,
					"handler":      message.HandlerNameFromCtx(msg.Context()),
					"reason":       string(reason),
				})
				return nil, nil
			}
			return out, err
		}
	}
}

// AddConsumerHandler registers a handler that publishes nothing.
func (r *Router) AddConsumerHandler(
	name string,
	subscribeTopic string,
	subscriber message.Subscriber,
	handler message.NoPublishHandlerFunc,
) *message.Handler {
	h := r.router.AddConsumerHandler(name, subscribeTopic, subscriber, handler)
	r.handlers[name] = h
	return h
}

// Handlers returns the registered handler names.
func (r *Router) Handlers() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Run blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running is closed once every handler has subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// IsRunning reports whether Run is active.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}

// Close stops the router, waiting up to CloseTimeout for handlers.
func (r *Router) Close() error {
	return r.router.Close()
}
