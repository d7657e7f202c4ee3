// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package eventbus

// Broadcaster receives serialized playback events for fan-out to connected
// WebSocket clients. The hub in internal/websocket satisfies it.
type Broadcaster interface {
	// BroadcastRaw hands over raw JSON event bytes. It must not block.
	BroadcastRaw(data []byte)
}
