// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build nats

package main

import (
	"context"

	"github.com/jellybridge/jellybridge/internal/config"
	"github.com/jellybridge/jellybridge/internal/eventbus"
	"github.com/jellybridge/jellybridge/internal/logging"
	"github.com/jellybridge/jellybridge/internal/media"
	"github.com/jellybridge/jellybridge/internal/supervisor"
	"github.com/jellybridge/jellybridge/internal/supervisor/services"
	ws "github.com/jellybridge/jellybridge/internal/websocket"
)

// initEventBus registers the NATS event pipeline with the supervisor when
// event fan-out is enabled.
//
// The pipeline is assembled inside the supervised service rather than here,
// so a supervisor restart rebuilds every component (embedded server, stream,
// publisher, subscriber, router) instead of reusing closed ones. The start
// closure also rewires the coordinator's event publisher on each restart.
func initEventBus(cfg *config.Config, tree *supervisor.Tree, wsHub *ws.Hub, coordinator *media.Coordinator) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("NATS event fan-out disabled (NATS_ENABLED=false)")
		return
	}

	start := func(ctx context.Context) (services.EventPipeline, error) {
		components, err := eventbus.Setup(ctx, &cfg.NATS, wsHub)
		if err != nil {
			return nil, err
		}
		coordinator.SetPublisher(components.Publisher)
		return components, nil
	}

	tree.AddMessagingService(services.NewEventBusService(start, cfg.NATS.RouterCloseTimeout))
	logging.Info().
		Bool("embedded", cfg.NATS.EmbeddedServer).
		Str("durable", cfg.NATS.DurableName).
		Msg("NATS event pipeline added to supervisor tree")
}
