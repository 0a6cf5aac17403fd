// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/wal"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startRouter(t *testing.T, r *Router) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := r.Run(ctx); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-r.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}
}

func TestRouterConfigFrom(t *testing.T) {
	t.Parallel()
	rc := RouterConfigFrom(&config.EventsConfig{
		RetryCount:           7,
		RetryInitialInterval: 5 * time.Millisecond,
		CloseTimeout:         2 * time.Second,
	})
	if rc.RetryMaxRetries != 7 || rc.RetryInitialInterval != 5*time.Millisecond || rc.CloseTimeout != 2*time.Second {
		t.Errorf("RouterConfigFrom() = %+v", rc)
	}
	if rc.RetryMultiplier != DefaultRouterConfig().RetryMultiplier {
		t.Error("unset fields lost their defaults")
	}
}

func TestRouter_PermanentErrorsAreAcked(t *testing.T) {
	t.Parallel()
	ps := NewGoChannelPubSub(nil)
	defer ps.Close()

	cfg := DefaultRouterConfig()
	cfg.RetryMaxRetries = 3
	cfg.RetryInitialInterval = time.Millisecond
	r, err := NewRouter(&cfg, logging.NewWatermillLogger(logging.Logger()))
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	r.AddConsumerHandler("perm", "perm.topic", ps, func(*message.Message) error {
		calls.Add(1)
		return NewPermanentError(ReasonInvalidEvent, nil)
	})
	var retried atomic.Int32
	r.AddConsumerHandler("flaky", "flaky.topic", ps, func(*message.Message) error {
		if retried.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if len(r.Handlers()) != 2 {
		t.Errorf("Handlers() = %v", r.Handlers())
	}
	startRouter(t, r)

	if err := ps.Publish("perm.topic", message.NewMessage("p1", nil)); err != nil {
		t.Fatal(err)
	}
	if err := ps.Publish("flaky.topic", message.NewMessage("f1", nil)); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "flaky handler to succeed", func() bool { return retried.Load() == 3 })
	waitFor(t, "permanent handler call", func() bool { return calls.Load() >= 1 })
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 1 {
		t.Errorf("permanent handler calls = %d, want 1 (no retries)", calls.Load())
	}
	if !r.IsRunning() {
		t.Error("IsRunning() = false")
	}
}

func TestPipeline_ReviewToLabel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	w, err := wal.Open(&config.WALConfig{
		Path:       filepath.Join(t.TempDir(), "wal"),
		MaxRetries: 5,
		EntryTTL:   time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Close() })

	ps := NewGoChannelPubSub(nil)
	defer ps.Close()

	store := newMemStore(sampleReviews()...)
	engine := newTestEngine(t, nil)
	c := &countingCache{}

	classify := NewClassificationHandler(store, engine, w, c)
	backfill := NewBackfillHandler(NewBackfill(store, engine, 0, 10, c))

	r, err := NewRouter(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	RegisterHandlers(r, ps, classify, backfill)
	startRouter(t, r)

	pub, err := NewPublisher(ps, w, nil)
	if err != nil {
		t.Fatal(err)
	}

	review := sampleReviews()[1]
	entryID, err := pub.PublishReviewIngested(ctx, NewReviewIngested(&review))
	if err != nil {
		t.Fatalf("PublishReviewIngested() error = %v", err)
	}

	waitFor(t, "review r2 to be labelled", func() bool {
		_, ok := store.label("r2")
		return ok
	})
	waitFor(t, "outbox entry confirmation", func() bool {
		e, err := w.Get(ctx, entryID)
		return err == nil && e.Confirmed
	})

	lex := engine.PublishLexicon(map[string]float64{"exists": 1})
	if err := pub.PublishLexicon(ctx, NewLexiconPublished(lex)); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "backfill to relabel r3", func() bool {
		l, ok := store.label("r3")
		return ok && l.version == lex.Version()
	})
}

func TestPipeline_ReplayAfterLostPublish(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	w, err := wal.Open(&config.WALConfig{
		Path:       filepath.Join(t.TempDir(), "wal"),
		MaxRetries: 5,
		EntryTTL:   time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Close() })

	// Publish fails: the entry is written but never delivered.
	down, err := NewPublisher(&failingPublisher{}, w, nil)
	if err != nil {
		t.Fatal(err)
	}
	review := sampleReviews()[0]
	entryID, err := down.PublishReviewIngested(ctx, NewReviewIngested(&review))
	if err == nil {
		t.Fatal("expected publish failure")
	}

	ps := NewGoChannelPubSub(nil)
	defer ps.Close()
	store := newMemStore(sampleReviews()...)
	r, err := NewRouter(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	RegisterHandlers(r, ps, NewClassificationHandler(store, newTestEngine(t, nil), w, nil), nil)
	startRouter(t, r)

	up, err := NewPublisher(ps, w, nil)
	if err != nil {
		t.Fatal(err)
	}
	result, err := w.Replay(ctx, up)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if result.Republished != 1 {
		t.Errorf("Replay() = %+v, want one republished", result)
	}

	waitFor(t, "replayed entry confirmation", func() bool {
		e, err := w.Get(ctx, entryID)
		return err == nil && e.Confirmed
	})
	if _, ok := store.label("r1"); !ok {
		t.Error("replayed review not labelled")
	}
}
