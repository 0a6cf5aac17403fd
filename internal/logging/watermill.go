// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillLogger adapts zerolog to watermill.LoggerAdapter.
type WatermillLogger struct {
	logger zerolog.Logger
	fields watermill.LogFields
}

var _ watermill.LoggerAdapter = (*WatermillLogger)(nil)

// NewWatermillLogger wraps logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewWatermillLogger(logger zerolog.Logger) *WatermillLogger {
	return &WatermillLogger{logger: logger}
}

// Error implements watermill.LoggerAdapter.
func (l *WatermillLogger) Error(msg string, err error, fields watermill.LogFields) {
	l.write(l.logger.Error().Err(err), msg, fields)
}

// Info implements watermill.LoggerAdapter.
func (l *WatermillLogger) Info(msg string, fields watermill.LogFields) {
	l.write(l.logger.Info(), msg, fields)
}

// Debug implements watermill.LoggerAdapter.
func (l *WatermillLogger) Debug(msg string, fields watermill.LogFields) {
	l.write(l.logger.Debug(), msg, fields)
}

// Trace implements watermill.LoggerAdapter.
func (l *WatermillLogger) Trace(msg string, fields watermill.LogFields) {
	l.write(l.logger.Trace(), msg, fields)
}

// With implements watermill.LoggerAdapter.
func (l *WatermillLogger) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &WatermillLogger{logger: l.logger, fields: l.fields.Add(fields)}
}

func (l *WatermillLogger) write(event *zerolog.Event, msg string, fields watermill.LogFields) {
	if event == nil {
		return
	}
	event.Fields(map[string]interface{}(l.fields)).
		Fields(map[string]interface{}(fields)).
		Msg(msg)
}
