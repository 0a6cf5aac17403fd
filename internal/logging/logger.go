// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	Level     string    // trace, debug, info (default), warn, error, fatal, panic, disabled
	Format    string    // json (default) or console
	Caller    bool      // add file:line
	Timestamp bool      // add a time field
	Service   string    // optional service field on every entry
	Output    io.Writer // default os.Stderr
}

// DefaultConfig returns the configuration used before Init runs.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var global atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // logging must work before Init is called
func init() {
	Init(DefaultConfig())
}

// Init builds a logger from cfg and installs it globally. Safe to call more
// than once; loggers already derived from the old one keep its settings.
func Init(cfg Config) {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	c := zerolog.New(out).With()
	if cfg.Timestamp {
		c = c.Timestamp()
	}
	if cfg.Caller {
		c = c.Caller()
	}
	if cfg.Service != "" {
		c = c.Str("service", cfg.Service)
	}
	l := c.Logger()
	global.Store(&l)
}

var levelNames = map[string]zerolog.Level{
	"trace":    zerolog.TraceLevel,
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"fatal":    zerolog.FatalLevel,
	"panic":    zerolog.PanicLevel,
	"disabled": zerolog.Disabled,
	"off":      zerolog.Disabled,
}

// ParseLevel converts a level name to a zerolog.Level. Unknown names map to info.
func ParseLevel(level string) zerolog.Level {
	if l, ok := levelNames[strings.ToLower(strings.TrimSpace(level))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	return *global.Load()
}

// SetLogger replaces the global logger, mainly for tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	global.Store(&l)
}

// With starts a child logger context.
func With() zerolog.Context {
	return global.Load().With()
}

// WithComponent returns a child logger tagged with a component field.
//
//	logger := logging.WithComponent("recommend")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// Debug starts a debug message.
func Debug() *zerolog.Event { return global.Load().Debug() }

// Info starts an info message.
func Info() *zerolog.Event { return global.Load().Info() }

// Warn starts a warning message.
func Warn() *zerolog.Event { return global.Load().Warn() }

// Error starts an error message.
func Error() *zerolog.Event { return global.Load().Error() }

// Fatal starts a fatal message. os.Exit(1) runs after it is written.
func Fatal() *zerolog.Event { return global.Load().Fatal() }

// Err starts an error-level message carrying err, or info when err is nil.
func Err(err error) *zerolog.Event { return global.Load().Err(err) }

// NewTestLogger returns a JSON logger writing to w.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
