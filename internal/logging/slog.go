// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler is a slog.Handler that writes through zerolog.
type SlogHandler struct {
	logger zerolog.Logger
	attrs  []slog.Attr
	group  string
}

// NewSlogHandler wraps logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSlogHandler(logger zerolog.Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// NewSlogLogger returns a *slog.Logger backed by the global zerolog logger.
func NewSlogLogger() *slog.Logger {
	return slog.New(NewSlogHandler(Logger()))
}

// Enabled implements slog.Handler.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.GetLevel() <= slogToZerolog(level)
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Record is passed by value by the slog.Handler contract
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	event := h.logger.WithLevel(slogToZerolog(r.Level))
	if event == nil {
		return nil
	}
	for _, a := range h.attrs {
		event = addAttr(event, a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		event = addAttr(event, h.qualify(a.Key), a.Value)
		return true
	})
	event.Msg(r.Message)
	return nil
}

// WithAttrs implements slog.Handler. Keys are qualified with the group open
// at the time of the call.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	for _, a := range attrs {
		merged = append(merged, slog.Attr{Key: h.qualify(a.Key), Value: a.Value})
	}
	return &SlogHandler{logger: h.logger, attrs: merged, group: h.group}
}

// WithGroup implements slog.Handler. Groups become dotted key prefixes.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &SlogHandler{logger: h.logger, attrs: h.attrs, group: group}
}

func (h *SlogHandler) qualify(key string) string {
	if h.group == "" {
		return key
	}
	return h.group + "." + key
}

func addAttr(event *zerolog.Event, key string, value slog.Value) *zerolog.Event {
	v := value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return event.Str(key, v.String())
	case slog.KindInt64:
		return event.Int64(key, v.Int64())
	case slog.KindUint64:
		return event.Uint64(key, v.Uint64())
	case slog.KindFloat64:
		return event.Float64(key, v.Float64())
	case slog.KindBool:
		return event.Bool(key, v.Bool())
	case slog.KindDuration:
		return event.Dur(key, v.Duration())
	case slog.KindTime:
		return event.Time(key, v.Time())
	case slog.KindGroup:
		for _, ga := range v.Group() {
			event = addAttr(event, key+"."+ga.Key, ga.Value)
		}
		return event
	default:
		if err, ok := v.Any().(error); ok {
			return event.AnErr(key, err)
		}
		return event.Interface(key, v.Any())
	}
}

func slogToZerolog(level slog.Level) zerolog.Level {
	switch {
	case level >= slog.LevelError:
		return zerolog.ErrorLevel
	case level >= slog.LevelWarn:
		return zerolog.WarnLevel
	case level >= slog.LevelInfo:
		return zerolog.InfoLevel
	default:
		return zerolog.DebugLevel
	}
}
