// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
Package cache provides an in-process LRU cache with TTL support.

Its main consumer is the event bus deduplicator, which remembers recently
seen message IDs so redelivered events are dropped instead of broadcast
twice. The cache bounds memory with LRU eviction and expires entries lazily
on access, so no background sweeper is required.

All operations are safe for concurrent use and run in O(1).
*/
package cache
