// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build !nats

package main

import (
	"github.com/jellybridge/jellybridge/internal/config"
	"github.com/jellybridge/jellybridge/internal/logging"
	"github.com/jellybridge/jellybridge/internal/media"
	"github.com/jellybridge/jellybridge/internal/supervisor"
	ws "github.com/jellybridge/jellybridge/internal/websocket"
)

// initEventBus is a no-op stub for non-NATS builds.
func initEventBus(cfg *config.Config, _ *supervisor.Tree, _ *ws.Hub, _ *media.Coordinator) {
	if cfg.NATS.Enabled {
		logging.Warn().Msg("NATS_ENABLED=true but NATS support not compiled (build with -tags nats)")
	}
}
