// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package supervisor

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// ErrNilLogger is returned when the tree is built without a logger.
var ErrNilLogger = errors.New("supervisor logger cannot be nil")

// Layer selects the child supervisor a service runs under. Layers restart
// independently, so a crashing event router never bounces the HTTP server.
type Layer int

const (
	// LayerData holds storage upkeep: outbox replay and backfill sweeps.
	LayerData Layer = iota
	// LayerMessaging holds the event router.
	LayerMessaging
	// LayerAPI holds the HTTP server.
	LayerAPI
)

var layerNames = [...]string{"data-layer", "messaging-layer", "api-layer"}

func (l Layer) String() string {
	if l < 0 || int(l) >= len(layerNames) {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// TreeConfig controls restart behavior for every supervisor in the tree.
type TreeConfig struct {
	FailureThreshold float64       // failures before backoff
	FailureDecay     float64       // failure half-life in seconds
	FailureBackoff   time.Duration // pause once over the threshold
	ShutdownTimeout  time.Duration // per-service stop deadline
}

// DefaultTreeConfig returns the production defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	return TreeConfig{
		FailureThreshold: cmp.Or(c.FailureThreshold, d.FailureThreshold),
		FailureDecay:     cmp.Or(c.FailureDecay, d.FailureDecay),
		FailureBackoff:   cmp.Or(c.FailureBackoff, d.FailureBackoff),
		ShutdownTimeout:  cmp.Or(c.ShutdownTimeout, d.ShutdownTimeout),
	}
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is the root "marquee" supervisor with one child per Layer.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers [len(layerNames)]*suture.Supervisor
	config TreeConfig

	mu    sync.Mutex
	names map[Layer][]string
}

// NewSupervisorTree builds the tree. Zero config fields take defaults.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		return nil, ErrNilLogger
	}
	config = config.withDefaults()

	hook := (&sutureslog.Handler{Logger: logger}).MustHook()
	t := &SupervisorTree{
		root:   suture.New("marquee", config.spec(hook)),
		config: config,
		names:  make(map[Layer][]string),
	}
	// layers pick up the root hook when added
	for i := range t.layers {
		t.layers[i] = suture.New(Layer(i).String(), config.spec(nil))
		t.root.Add(t.layers[i])
	}
	return t, nil
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor {
	return t.root
}

// Add runs svc under layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	if layer < 0 || int(layer) >= len(t.layers) {
		return suture.ServiceToken{}, fmt.Errorf("unknown supervisor %s", layer)
	}
	t.mu.Lock()
	t.names[layer] = append(t.names[layer], serviceName(svc))
	t.mu.Unlock()
	return t.layers[layer].Add(svc), nil
}

// AddDataService runs svc under LayerData.
func (t *SupervisorTree) AddDataService(svc suture.Service) suture.ServiceToken {
	tok, _ := t.Add(LayerData, svc)
	return tok
}

// AddMessagingService runs svc under LayerMessaging.
func (t *SupervisorTree) AddMessagingService(svc suture.Service) suture.ServiceToken {
	tok, _ := t.Add(LayerMessaging, svc)
	return tok
}

// AddAPIService runs svc under LayerAPI.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	tok, _ := t.Add(LayerAPI, svc)
	return tok
}

// Services returns the names of the services added to each layer, in the
// order they were added.
func (t *SupervisorTree) Services() map[string][]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string][]string, len(t.names))
	for layer, names := range t.names {
		out[layer.String()] = append([]string(nil), names...)
	}
	return out
}

// Serve blocks until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the tree and returns its exit channel.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services that ignored shutdown.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}

func serviceName(svc suture.Service) string {
	if s, ok := svc.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", svc)
}
