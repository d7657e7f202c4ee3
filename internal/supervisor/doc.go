// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
Package supervisor builds the suture/v4 supervision tree for the bridge.

The tree has three child supervisors under one root:

  - data: snapshot cache GC
  - messaging: WebSocket hub, poll coordinator, event pipeline
  - api: HTTP server

Each layer restarts its own services independently, so a crashing poll loop
cannot take down the HTTP API and vice versa. Services that exceed the
failure threshold enter backoff instead of hot-looping.

Service wrappers live in the services subpackage; they adapt the lifecycle
shapes used elsewhere in the bridge (Start/Stop managers, RunWithContext
loops, blocking ListenAndServe) onto suture's Serve(ctx) contract.
*/
package supervisor
