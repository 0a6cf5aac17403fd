// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/wal"
)

// Outbox persists an event before it is published.
type Outbox interface {
	Write(ctx context.Context, event interface{}) (string, error)
}

// CircuitBreakerConfig configures the publish circuit breaker.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultCircuitBreakerConfig returns production defaults.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             "event-publisher",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// NewCircuitBreaker builds a breaker that opens after FailureThreshold
// consecutive failures and reports transitions to metrics.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[interface{}] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

// Publisher writes review events to the outbox and then publishes them.
// A failed publish leaves the outbox entry pending for replay.
type Publisher struct {
	publisher      message.Publisher
	outbox         Outbox
	circuitBreaker *gobreaker.CircuitBreaker[interface{}]

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub. outbox may be nil, in which case events are
// published without durability.
func NewPublisher(pub message.Publisher, outbox Outbox, cb *gobreaker.CircuitBreaker[interface{}]) (*Publisher, error) {
	if pub == nil {
		return nil, ErrNilPublisher
	}
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCircuitBreakerConfig())
	}
	return &Publisher{publisher: pub, outbox: outbox, circuitBreaker: cb}, nil
}

// BreakerState returns the publish breaker state name.
func (p *Publisher) BreakerState() string {
	return p.circuitBreaker.State().String()
}

// Publish sends msg on topic through the circuit breaker.
func (p *Publisher) Publish(ctx context.Context, topic string, msg *message.Message) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrPublisherClosed
	}

	if cid := logging.CorrelationIDFromContext(ctx); cid != "" && msg.Metadata.Get(MetadataCorrelationID) == "" {
		msg.Metadata.Set(MetadataCorrelationID, cid)
	}

	_, err := p.circuitBreaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(topic, msg)
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// PublishReviewIngested writes ev to the outbox and publishes it. The
// returned entry id is set whenever the outbox write succeeded, even if the
// publish failed.
func (p *Publisher) PublishReviewIngested(ctx context.Context, ev *ReviewIngested) (string, error) {
	var entryID string
	if p.outbox != nil {
		id, err := p.outbox.Write(ctx, ev)
		if err != nil {
			return "", fmt.Errorf("write outbox: %w", err)
		}
		entryID = id
	}

	msg, err := reviewMessage(ev, entryID)
	if err != nil {
		return entryID, err
	}
	return entryID, p.Publish(ctx, TopicReviewIngested, msg)
}

// PublishEntry republishes an outbox entry. It implements wal.Publisher.
func (p *Publisher) PublishEntry(ctx context.Context, entry *wal.Entry) error {
	var ev ReviewIngested
	if err := entry.UnmarshalPayload(&ev); err != nil {
		return NewPermanentError(ReasonCorruptEntry, fmt.Errorf("entry %s: %w", entry.ID, err))
	}
	msg, err := reviewMessage(&ev, entry.ID)
	if err != nil {
		return err
	}
	return p.Publish(ctx, TopicReviewIngested, msg)
}

// PublishLexicon announces a lexicon republish.
func (p *Publisher) PublishLexicon(ctx context.Context, ev *LexiconPublished) error {
	data, err := SerializeEvent(ev)
	if err != nil {
		return err
	}
	return p.Publish(ctx, TopicLexiconPublished, message.NewMessage(uuid.New().String(), data))
}

// Close stops further publishes. The underlying transport is owned and
// closed by Transport.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// reviewMessage uses a fresh message UUID on every call so broker-side
// deduplication never swallows a replay.
func reviewMessage(ev *ReviewIngested, entryID string) (*message.Message, error) {
	data, err := SerializeEvent(ev)
	if err != nil {
		return nil, err
	}
	msg := message.NewMessage(uuid.New().String(), data)
	msg.Metadata.Set(MetadataReviewID, ev.ReviewID)
	if entryID != "" {
		msg.Metadata.Set(MetadataWALEntryID, entryID)
	}
	return msg, nil
}
