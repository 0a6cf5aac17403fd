// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	requestIDKey     contextKey = "request_id"
)

// GenerateRequestID returns a new UUID string.
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateCorrelationID returns a short id for tying an event to the request
// that produced it.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// ContextWithRequestID stores an HTTP request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request id or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithCorrelationID stores a correlation id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation id or "".
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with request_id and correlation_id added
// when ctx carries them.
//
//	logging.Ctx(ctx).Info().Msg("processing request")
func Ctx(ctx context.Context) *zerolog.Logger {
	c := With()
	if id := CorrelationIDFromContext(ctx); id != "" {
		c = c.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		c = c.Str("request_id", id)
	}
	l := c.Logger()
	return &l
}
