// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build !nats

package main

import (
	"testing"

	"github.com/jellybridge/jellybridge/internal/config"
)

// The stub must be a safe no-op whether or not NATS_ENABLED is set; it only
// logs a warning when event fan-out is requested on a build without it.
func TestInitEventBusStub(t *testing.T) {
	cfg := &config.Config{}
	initEventBus(cfg, nil, nil, nil)

	cfg.NATS.Enabled = true
	initEventBus(cfg, nil, nil, nil)
}
