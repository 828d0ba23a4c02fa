// Guildstats - Guild Message Analytics Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/guildstats

package ingest

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/guildstats/internal/config"
	"github.com/tomtom215/guildstats/internal/logging"
)

// Transport names accepted by config.
const (
	TransportGoChannel = "gochannel"
	TransportNATS      = "nats"
)

// Transport bundles the publisher and subscriber the router runs on, plus
// the embedded NATS server when one was started.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	server *server.Server
	url    string
}

// NewTransport builds the configured transport.
func NewTransport(cfg *config.IngestConfig) (*Transport, error) {
	switch cfg.Transport {
	case "", TransportGoChannel:
		return newGoChannelTransport(cfg), nil
	case TransportNATS:
		return newNATSTransport(cfg)
	default:
		return nil, fmt.Errorf("unknown ingest transport %q", cfg.Transport)
	}
}

func newGoChannelTransport(cfg *config.IngestConfig) *Transport {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: int64(cfg.SubscribersCount) * 64,
	}, logging.NewWatermillLogger("ingest-gochannel"))
	return &Transport{Publisher: pubsub, Subscriber: pubsub}
}

func newNATSTransport(cfg *config.IngestConfig) (*Transport, error) {
	t := &Transport{url: cfg.NATSURL}
	if cfg.EmbeddedNATS {
		ns, err := startEmbeddedServer(cfg.EmbeddedNATSHost, cfg.EmbeddedNATSPort)
		if err != nil {
			return nil, err
		}
		t.server = ns
		t.url = ns.ClientURL()
	}

	logger := logging.NewWatermillLogger("ingest-nats")
	natsOpts := natsOptions(logger)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         t.url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		t.shutdownServer()
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              t.url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: cfg.SubscribersCount,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = pub.Close()
		t.shutdownServer()
		return nil, fmt.Errorf("create nats subscriber: %w", err)
	}

	t.Publisher = pub
	t.Subscriber = sub
	return t, nil
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

// startEmbeddedServer runs an in-process NATS server without JetStream.
// Port -1 picks a free port.
func startEmbeddedServer(host string, port int) (*server.Server, error) {
	ns, err := server.NewServer(&server.Options{
		ServerName: "guildstats-ingest",
		Host:       host,
		Port:       port,
		NoLog:      true,
		NoSigs:     true,
		MaxPayload: 8 * 1024 * 1024,
	})
	if err != nil {
		return nil, fmt.Errorf("create NATS server: %w", err)
	}

	go ns.Start()

	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		return nil, fmt.Errorf("NATS server not ready within timeout")
	}
	logging.Info().Str("url", ns.ClientURL()).Msg("Embedded NATS server started")
	return ns, nil
}

// URL returns the NATS URL in use, or "" for the in-process transport.
func (t *Transport) URL() string {
	return t.url
}

// Close closes the publisher and subscriber, then stops the embedded
// server if there is one.
func (t *Transport) Close() error {
	var errs []error
	if t.Subscriber != nil {
		if err := t.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	// gochannel uses one value for both sides.
	if t.Publisher != nil && any(t.Publisher) != any(t.Subscriber) {
		if err := t.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	t.shutdownServer()
	return errors.Join(errs...)
}

func (t *Transport) shutdownServer() {
	if t.server == nil {
		return
	}
	t.server.Shutdown()
	t.server.WaitForShutdown()
	t.server = nil
}
