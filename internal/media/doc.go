// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
Package media talks to the Jellyfin/Emby server and maintains the
normalized snapshot everything else consumes.

This package implements the core business logic of the bridge: fetching
server state over the REST API, normalizing wire responses into snapshot
models, and refreshing on a fixed interval with circuit breaker protection.
Entity adapters, the HTTP API, the WebSocket hub and the event bus all read
snapshots; nothing downstream touches the server API directly.

Key Components:

  - Client: HTTP client for the Jellyfin/Emby REST API (reads + remote control)
  - BreakerClient: Client wrapped with sony/gobreaker fault protection
  - Coordinator: Fixed-interval poll loop owning the current snapshot
  - Normalizer: Wire model to snapshot model conversion (defensive, never errors)
  - ValidateConnection: Startup probe separating bad credentials from an
    unreachable server

Architecture:

The coordinator implements an all-or-nothing snapshot pipeline:

 1. Fetch: system info, active sessions, library items, users, upcoming
    episodes and three recently-added lists, sequentially under one deadline
 2. Normalize: raw responses become one immutable Snapshot
 3. Swap: the snapshot pointer is replaced atomically; a failed cycle keeps
    the previous snapshot current and flips Healthy() until the next success
 4. Notify: listeners run synchronously in registration order, then session
    diffs are published as playback lifecycle events

Remote control commands are fire-and-forget: the server acks before
applying, so ExecCommand nudges the poll loop twice (100ms, 500ms) to
converge the snapshot instead of trusting the ack.

Usage Example:

	import (
	    "context"

	    "github.com/jellybridge/jellybridge/internal/media"
	)

	client := media.NewBreakerClient(media.ClientConfig{
	    BaseURL: cfg.MediaServer.URL,
	    APIKey:  cfg.MediaServer.APIKey,
	})

	if _, err := media.ValidateConnection(ctx, client); err != nil {
	    log.Fatal(err)
	}

	coord := media.NewCoordinator(client, media.CoordinatorConfig{
	    Interval:      cfg.Poll.Interval,
	    Timeout:       cfg.Poll.Timeout,
	    ServerAddress: cfg.MediaServer.URL,
	})
	coord.AddListener(hub.BroadcastSnapshot)

	if err := coord.Start(ctx); err != nil {
	    log.Fatal(err) // wraps media.ErrSetupFailed
	}
	defer coord.Stop()

	// Remote control with snapshot convergence
	err := coord.ExecCommand(ctx, media.CommandPlayPause, func(ctx context.Context) error {
	    return client.PlayPause(ctx, sessionID)
	})

Fault Tolerance:

  - Circuit Breaker: opens at a 60% failure rate over at least 10 requests,
    2-minute open state before half-open probing
  - Rate Limiting: optional client-side request budget (golang.org/x/time)
    protects low-power servers
  - All-or-nothing cycles: consumers never observe a half-updated snapshot
  - Error taxonomy: ErrRemoteUnavailable, ErrInvalidAuth,
    ErrMalformedResponse and ErrSetupFailed stay inspectable through
    errors.Is across every wrap

Thread Safety:

The Coordinator is fully thread-safe: an RWMutex guards the snapshot,
health state and listener registry, and the poll loop is the only writer.
Client and BreakerClient methods are goroutine-safe.

Metrics:

Prometheus metrics are exported for observability:

  - poll_cycles_total, poll_cycle_duration_seconds: Cycle outcomes and latency
  - poll_fetch_errors_total: Failed sub-fetches by endpoint
  - media_server_requests_total: Upstream request outcomes by endpoint/status
  - commands_executed_total: Remote control command outcomes
  - circuit_breaker_state: Breaker state (closed/half-open/open)

See Also:

  - internal/models: Wire and snapshot data structures
  - internal/entity: Sensor/player/button projections over snapshots
  - internal/eventbus: NATS fan-out of playback lifecycle events
  - internal/metrics: Prometheus metrics
*/
package media
