// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package eventprocessor

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/marquee/internal/config"
)

// Transport is a publisher/subscriber pair plus whatever must be shut down
// with them.
type Transport struct {
	Name       string
	Publisher  message.Publisher
	Subscriber message.Subscriber

	closers []func() error
}

// Close closes the publisher, the subscriber, then any extra resources in
// reverse order of registration.
func (t *Transport) Close() error {
	var errs []error
	if t.Publisher != nil {
		if err := t.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	// GoChannel serves as both sides.
	if t.Subscriber != nil && any(t.Subscriber) != any(t.Publisher) {
		if err := t.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	for i := len(t.closers) - 1; i >= 0; i-- {
		if err := t.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewGoChannelPubSub returns the in-process pub/sub used by default and in
// tests. Messages are not persisted; the WAL covers crash recovery.
func NewGoChannelPubSub(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		Persistent:                     false,
		BlockPublishUntilSubscriberAck: false,
	}, logger)
}

// NewTransport builds the transport named by cfg.Transport.
func NewTransport(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	switch cfg.Transport {
	case "", config.TransportGoChannel:
		ps := NewGoChannelPubSub(logger)
		return &Transport{Name: config.TransportGoChannel, Publisher: ps, Subscriber: ps}, nil
	case config.TransportNATS:
		return newNATSTransport(cfg, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, cfg.Transport)
	}
}

// sharedSubscriber ignores Close. A watermill router closes its subscribers
// when it stops; the transport owns them so a rebuilt router can resubscribe.
type sharedSubscriber struct {
	message.Subscriber
}

func (sharedSubscriber) Close() error { return nil }

// SharedSubscriber returns a view of the transport subscriber that survives a
// router shutdown.
func (t *Transport) SharedSubscriber() message.Subscriber {
	return sharedSubscriber{Subscriber: t.Subscriber}
}
