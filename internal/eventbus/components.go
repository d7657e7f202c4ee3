// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build nats

package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jellybridge/jellybridge/internal/config"
)

// Components holds the assembled event pipeline: optional embedded server,
// stream, publisher, subscriber and the router with the WebSocket forwarder.
type Components struct {
	Server     *EmbeddedServer
	Publisher  *Publisher
	Subscriber *Subscriber
	Router     *Router
	Forwarder  *WebSocketForwarder

	streamConn *natsgo.Conn
	logger     watermill.LoggerAdapter
}

// Setup assembles and starts the event pipeline from bridge configuration.
// When hub is nil no forwarder is registered and the pipeline only persists
// events into the stream for external consumers.
//
// Assembly order matters: the embedded server must be ready before any
// client connects, and the stream must exist before the publisher (which
// does not auto-provision) sends its first message.
func Setup(ctx context.Context, cfg *config.NATSConfig, hub Broadcaster) (*Components, error) {
	opts := FromNATSConfig(cfg)
	logger := NewWatermillLogger()

	c := &Components{logger: logger}

	if opts.Embedded {
		srv, err := NewEmbeddedServer(&opts.Server)
		if err != nil {
			return nil, fmt.Errorf("start embedded server: %w", err)
		}
		c.Server = srv
		opts.WithURL(srv.ClientURL())
	}

	if err := c.assemble(ctx, &opts, hub); err != nil {
		c.Shutdown(ctx)
		return nil, err
	}

	return c, nil
}

func (c *Components) assemble(ctx context.Context, opts *Options, hub Broadcaster) error {
	nc, err := natsgo.Connect(opts.URL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(opts.Publisher.MaxReconnects),
		natsgo.ReconnectWait(opts.Publisher.ReconnectWait),
	)
	if err != nil {
		return fmt.Errorf("connect for stream management: %w", err)
	}
	c.streamConn = nc

	streamMgr, err := NewStreamManager(nc, &opts.Stream)
	if err != nil {
		return fmt.Errorf("create stream manager: %w", err)
	}
	if _, err := streamMgr.EnsureStream(ctx); err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}

	pub, err := NewPublisher(opts.Publisher, c.logger)
	if err != nil {
		return fmt.Errorf("create publisher: %w", err)
	}
	pub.SetCircuitBreaker(newPublishBreaker(c.logger))
	c.Publisher = pub

	sub, err := NewSubscriber(&opts.Subscriber, c.logger)
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	c.Subscriber = sub

	router, err := NewRouter(&opts.Router, pub.WatermillPublisher(), c.logger)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}
	c.Router = router

	if hub != nil {
		forwarder, err := NewWebSocketForwarder(hub, c.logger)
		if err != nil {
			return fmt.Errorf("create websocket forwarder: %w", err)
		}
		c.Forwarder = forwarder

		router.AddConsumerHandler(
			"websocket-forwarder",
			TopicPrefix+">",
			sub.WatermillSubscriber(),
			forwarder.Handle,
		)
	}

	select {
	case <-router.RunAsync(ctx):
	case <-ctx.Done():
		return ctx.Err()
	}

	c.logger.Info("Event pipeline started", watermill.LogFields{
		"url":      opts.URL,
		"embedded": opts.Embedded,
		"stream":   opts.Stream.Name,
	})

	return nil
}

// newPublishBreaker creates the circuit breaker guarding publishes. Five
// consecutive failures open the circuit for 30 seconds so a dead broker does
// not stall every poll cycle on publish retries.
func newPublishBreaker(logger watermill.LoggerAdapter) *gobreaker.CircuitBreaker[interface{}] {
	return gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "nats-publisher",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Publisher circuit state changed", watermill.LogFields{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})
}

// Shutdown stops the pipeline in reverse assembly order. Each component gets
// its own close attempt; the first error is returned after all have run.
func (c *Components) Shutdown(ctx context.Context) error {
	var firstErr error

	if c.Router != nil {
		if err := c.Router.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close router: %w", err)
		}
	}
	if c.Subscriber != nil {
		if err := c.Subscriber.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close subscriber: %w", err)
		}
	}
	if c.Publisher != nil {
		if err := c.Publisher.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close publisher: %w", err)
		}
	}
	if c.streamConn != nil {
		c.streamConn.Close()
	}
	if c.Server != nil {
		if err := c.Server.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown embedded server: %w", err)
		}
	}

	if c.logger != nil {
		c.logger.Info("Event pipeline stopped", nil)
	}

	return firstErr
}

// IsRunning reports whether the router is processing messages.
func (c *Components) IsRunning() bool {
	return c.Router != nil && c.Router.IsRunning()
}
