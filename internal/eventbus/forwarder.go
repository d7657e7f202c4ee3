// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build nats

package eventbus

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/jellybridge/jellybridge/internal/logging"
	"github.com/jellybridge/jellybridge/internal/metrics"
)

// WebSocketForwarder pushes consumed playback events to WebSocket clients.
// It always returns nil from Handle: a broadcast has no outcome worth
// retrying, and a malformed payload will not improve on redelivery.
type WebSocketForwarder struct {
	hub        Broadcaster
	serializer *Serializer
	logger     watermill.LoggerAdapter
	events     *logging.EventLogger

	messagesReceived  atomic.Int64
	messagesBroadcast atomic.Int64
}

// NewWebSocketForwarder creates a forwarder for the given hub.
func NewWebSocketForwarder(hub Broadcaster, logger watermill.LoggerAdapter) (*WebSocketForwarder, error) {
	if hub == nil {
		return nil, fmt.Errorf("hub required")
	}
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	return &WebSocketForwarder{
		hub:        hub,
		serializer: NewSerializer(),
		logger:     logger,
		events:     logging.NewEventLogger(),
	}, nil
}

// Handle broadcasts one consumed message to WebSocket clients.
func (f *WebSocketForwarder) Handle(msg *message.Message) error {
	start := time.Now()
	f.messagesReceived.Add(1)
	metrics.RecordNATSConsume()

	event, err := f.serializer.Unmarshal(msg.Payload)
	if err != nil {
		metrics.RecordNATSParseFailed()
		f.logger.Error("Dropping unparseable event", err, watermill.LogFields{
			"message_uuid": msg.UUID,
		})
		return nil
	}
	f.events.LogEventReceived(msg.Context(), event.ID, event.Type)

	f.hub.BroadcastRaw(msg.Payload)
	f.messagesBroadcast.Add(1)

	metrics.RecordNATSProcessed()
	metrics.RecordNATSProcessingDuration(time.Since(start))
	return nil
}

// Stats returns current forwarder counters.
func (f *WebSocketForwarder) Stats() (received, broadcast int64) {
	return f.messagesReceived.Load(), f.messagesBroadcast.Load()
}
