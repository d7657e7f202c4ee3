// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package eventbus

import (
	"time"

	"github.com/jellybridge/jellybridge/internal/config"
)

// StreamName is the JetStream stream holding playback events. Subscribers
// bind to it by name because the playback.> wildcard cannot be a stream name.
const StreamName = "PLAYBACK_EVENTS"

// TopicPrefix is the subject prefix for playback event topics.
const TopicPrefix = "playback."

// ServerConfig holds embedded NATS server settings.
type ServerConfig struct {
	Host              string
	Port              int
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// DefaultServerConfig returns production defaults for the embedded server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          "/data/jellybridge/nats",
		JetStreamMaxMem:   256 << 20,
		JetStreamMaxStore: 2 << 30,
	}
}

// PublisherConfig holds publisher connection settings.
type PublisherConfig struct {
	URL              string
	MaxReconnects    int
	ReconnectWait    time.Duration
	ReconnectBuffer  int
	EnableTrackMsgID bool
}

// DefaultPublisherConfig returns production defaults for the publisher.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:              url,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		ReconnectBuffer:  8 * 1024 * 1024,
		EnableTrackMsgID: true,
	}
}

// SubscriberConfig holds durable JetStream consumer settings.
type SubscriberConfig struct {
	URL              string
	DurableName      string
	QueueGroup       string
	SubscribersCount int
	AckWaitTimeout   time.Duration
	MaxDeliver       int
	MaxAckPending    int
	CloseTimeout     time.Duration
	MaxReconnects    int
	ReconnectWait    time.Duration

	// StreamName binds the consumer to an existing stream. Required for
	// wildcard topics because AutoProvision cannot name a stream after them.
	StreamName string
}

// DefaultSubscriberConfig returns production defaults for the subscriber.
func DefaultSubscriberConfig(url string) SubscriberConfig {
	return SubscriberConfig{
		URL:              url,
		DurableName:      "jellybridge-events",
		QueueGroup:       "bridge",
		SubscribersCount: 2,
		AckWaitTimeout:   30 * time.Second,
		MaxDeliver:       5,
		MaxAckPending:    1000,
		CloseTimeout:     30 * time.Second,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		StreamName:       StreamName,
	}
}

// StreamConfig defines the playback event stream.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// DefaultStreamConfig returns production stream settings.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:            StreamName,
		Subjects:        []string{TopicPrefix + ">"},
		MaxAge:          7 * 24 * time.Hour,
		MaxBytes:        2 << 30,
		MaxMsgs:         -1,
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1,
	}
}

// RouterConfig controls the Watermill router middleware stack.
type RouterConfig struct {
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// ThrottlePerSecond limits processed messages per second. 0 disables.
	ThrottlePerSecond int64

	// PoisonQueueTopic receives messages that fail every retry. Empty
	// disables the poison queue.
	PoisonQueueTopic string

	DeduplicationEnabled bool
	DeduplicationTTL     time.Duration
}

// DefaultRouterConfig returns production defaults for the router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     30 * time.Second,
		RetryMultiplier:      2.0,
		ThrottlePerSecond:    0,
		PoisonQueueTopic:     "playback.poison",
		DeduplicationEnabled: false,
		DeduplicationTTL:     5 * time.Minute,
	}
}

// Options bundles the per-component configs derived from the bridge NATS
// settings. Setup consumes it whole; tests may tweak individual parts.
type Options struct {
	Embedded   bool
	URL        string
	Server     ServerConfig
	Publisher  PublisherConfig
	Subscriber SubscriberConfig
	Stream     StreamConfig
	Router     RouterConfig
}

// FromNATSConfig maps the bridge configuration onto component options.
// The publisher and subscriber URLs are resolved later when the embedded
// server reports its client URL.
func FromNATSConfig(cfg *config.NATSConfig) Options {
	opts := Options{
		Embedded:   cfg.EmbeddedServer,
		URL:        cfg.URL,
		Server:     DefaultServerConfig(),
		Publisher:  DefaultPublisherConfig(cfg.URL),
		Subscriber: DefaultSubscriberConfig(cfg.URL),
		Stream:     DefaultStreamConfig(),
		Router:     DefaultRouterConfig(),
	}

	if cfg.StoreDir != "" {
		opts.Server.StoreDir = cfg.StoreDir
	}
	if cfg.MaxMemory > 0 {
		opts.Server.JetStreamMaxMem = cfg.MaxMemory
	}
	if cfg.MaxStore > 0 {
		opts.Server.JetStreamMaxStore = cfg.MaxStore
		opts.Stream.MaxBytes = cfg.MaxStore
	}
	if cfg.StreamRetentionDays > 0 {
		opts.Stream.MaxAge = time.Duration(cfg.StreamRetentionDays) * 24 * time.Hour
	}
	if cfg.SubscribersCount > 0 {
		opts.Subscriber.SubscribersCount = cfg.SubscribersCount
	}
	if cfg.DurableName != "" {
		opts.Subscriber.DurableName = cfg.DurableName
	}
	if cfg.QueueGroup != "" {
		opts.Subscriber.QueueGroup = cfg.QueueGroup
	}

	if cfg.RouterRetryCount > 0 {
		opts.Router.RetryMaxRetries = cfg.RouterRetryCount
	}
	if cfg.RouterRetryInitialInterval > 0 {
		opts.Router.RetryInitialInterval = cfg.RouterRetryInitialInterval
	}
	opts.Router.ThrottlePerSecond = int64(cfg.RouterThrottlePerSecond)
	opts.Router.DeduplicationEnabled = cfg.RouterDeduplicationEnabled
	if cfg.RouterDeduplicationTTL > 0 {
		opts.Router.DeduplicationTTL = cfg.RouterDeduplicationTTL
	}
	if cfg.RouterCloseTimeout > 0 {
		opts.Router.CloseTimeout = cfg.RouterCloseTimeout
	}
	if cfg.RouterPoisonQueueEnabled {
		if cfg.RouterPoisonQueueTopic != "" {
			opts.Router.PoisonQueueTopic = cfg.RouterPoisonQueueTopic
		}
	} else {
		opts.Router.PoisonQueueTopic = ""
	}

	return opts
}

// WithURL rewrites the connection URL on every component. Used after the
// embedded server starts and reports the address it actually bound.
func (o *Options) WithURL(url string) {
	o.URL = url
	o.Publisher.URL = url
	o.Subscriber.URL = url
}
