// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

// Package eventbus fans playback lifecycle events out over NATS JetStream.
//
// The coordinator publishes one message per session transition (started,
// stopped, paused, resumed) to the playback.> subject hierarchy. A Watermill
// router consumes the stream and forwards events to the WebSocket hub, with
// retry, optional throttling and deduplication, and a poison queue for
// messages that fail every retry. The embedded NATS server makes the whole
// pipeline self-contained for single-instance deployments; pointing URL at an
// external server works the same way.
//
// The full pipeline requires the nats build tag. Without it the package
// compiles to stubs whose constructors return an error, so the rest of the
// bridge runs with event fan-out disabled.
package eventbus
