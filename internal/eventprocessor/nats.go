// Marquee - Movie Recommendation and Review Sentiment Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

//go:build nats

package eventprocessor

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/marquee/internal/config"
)

// EmbeddedServer is an in-process NATS server with JetStream enabled.
type EmbeddedServer struct {
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer starts a loopback-only server storing streams under
// storeDir and waits until it accepts connections.
func NewEmbeddedServer(storeDir string) (*EmbeddedServer, error) {
	opts := &server.Options{
		ServerName: "marquee-events",
		Host:       "127.0.0.1",
		Port:       server.RANDOM_PORT,
		JetStream:  true,
		StoreDir:   storeDir,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 1024 * 1024,
	}

	ns, err := server.NewServer(opts)
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return nil, errors.New("NATS server not ready within timeout")
	}

	return &EmbeddedServer{server: ns, clientURL: ns.ClientURL()}, nil
}

// ClientURL returns the URL clients should dial.
func (s *EmbeddedServer) ClientURL() string {
	return s.clientURL
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() error {
	s.server.Shutdown()
	s.server.WaitForShutdown()
	return nil
}

func natsOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

func newNATSTransport(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	t := &Transport{Name: config.TransportNATS}
	url := cfg.NATSURL
	if cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		t.closers = append(t.closers, srv.Shutdown)
		url = srv.ClientURL()
		logger.Info("Embedded NATS server started", watermill.LogFields{"url": url})
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOptions(logger),
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	t.Publisher = pub

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: "marquee",
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOptions(logger),
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			DurablePrefix: "marquee",
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.DeliverAll(),
				natsgo.AckExplicit(),
			},
		},
	}, logger)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	t.Subscriber = sub

	return t, nil
}
