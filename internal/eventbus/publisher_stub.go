// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build !nats

package eventbus

import (
	"context"
	"fmt"

	"github.com/jellybridge/jellybridge/internal/media"
)

// Publisher is a stub when NATS dependencies are not compiled in.
type Publisher struct{}

// NewPublisher returns an error when NATS support is not compiled in.
func NewPublisher(cfg PublisherConfig, logger interface{}) (*Publisher, error) {
	return nil, fmt.Errorf("NATS publisher not available: build with -tags=nats")
}

// PublishSessionEvent is a no-op stub.
func (p *Publisher) PublishSessionEvent(ctx context.Context, event media.SessionEvent) error {
	return fmt.Errorf("NATS publisher not available: build with -tags=nats")
}

// Close is a no-op stub.
func (p *Publisher) Close() error {
	return nil
}
