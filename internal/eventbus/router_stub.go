// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build !nats

package eventbus

import (
	"context"
	"fmt"
)

// Router is a stub when NATS dependencies are not compiled in.
type Router struct{}

// NewRouter returns an error when NATS support is not compiled in.
func NewRouter(cfg *RouterConfig, poisonPublisher interface{}, logger interface{}) (*Router, error) {
	return nil, fmt.Errorf("NATS router not available: build with -tags=nats")
}

// Run is a no-op stub.
func (r *Router) Run(ctx context.Context) error {
	return fmt.Errorf("NATS router not available: build with -tags=nats")
}

// Close is a no-op stub.
func (r *Router) Close() error {
	return nil
}

// IsRunning always returns false for the stub.
func (r *Router) IsRunning() bool {
	return false
}
