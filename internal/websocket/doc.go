// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
Package websocket pushes state changes to connected dashboards.

The Hub fans typed messages out to every connected client using the
hub-and-spoke pattern from gorilla/websocket. Clients receive:

  - "snapshot" after each poll cycle that produced a new snapshot
  - "playback" for each session transition (started, stopped, paused,
    resumed)
  - "pong" in answer to a client "ping"

Each client runs two goroutines: readPump (reads frames, answers
pings, detects dead connections via pong deadline) and writePump
(writes hub messages, sends protocol pings on pingPeriod). A slow
client whose send buffer fills is disconnected rather than allowed to
stall the hub, and clients are addressed in connection order so
delivery order is deterministic.

The hub runs under the supervision tree via RunWithContext; cancelling
the context closes all clients and returns.

See internal/api for the HTTP upgrade endpoint.
*/
package websocket
