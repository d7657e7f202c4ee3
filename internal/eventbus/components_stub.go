// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build !nats

package eventbus

import (
	"context"
	"fmt"

	"github.com/jellybridge/jellybridge/internal/config"
)

// Components is a stub when NATS dependencies are not compiled in.
type Components struct {
	Publisher *Publisher
}

// Setup returns an error when NATS support is not compiled in.
func Setup(ctx context.Context, cfg *config.NATSConfig, hub Broadcaster) (*Components, error) {
	return nil, fmt.Errorf("event pipeline not available: build with -tags=nats")
}

// Shutdown is a no-op stub.
func (c *Components) Shutdown(ctx context.Context) error {
	return nil
}

// IsRunning always returns false for the stub.
func (c *Components) IsRunning() bool {
	return false
}
