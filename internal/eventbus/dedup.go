// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package eventbus

import (
	"context"
	"time"

	"github.com/jellybridge/jellybridge/internal/cache"
)

// dedupCapacity bounds memory for remembered message IDs.
const dedupCapacity = 10000

// InMemoryDeduplicator tracks recently seen message IDs for the router's
// deduplication middleware. It satisfies Watermill's ExpiringKeyRepository.
//
// The LRU cache keeps operations O(1) and evicts the oldest entries when the
// capacity is reached, so memory stays bounded under sustained load.
type InMemoryDeduplicator struct {
	cache *cache.LRUCache
}

// NewInMemoryDeduplicator creates a deduplicator with the given TTL.
func NewInMemoryDeduplicator(ttl time.Duration) *InMemoryDeduplicator {
	return &InMemoryDeduplicator{
		cache: cache.NewLRUCache(dedupCapacity, ttl),
	}
}

// IsDuplicate reports whether the key was seen within the TTL, recording it
// when new.
func (d *InMemoryDeduplicator) IsDuplicate(_ context.Context, key string) (bool, error) {
	return d.cache.IsDuplicate(key), nil
}

// Len returns the number of remembered keys.
func (d *InMemoryDeduplicator) Len() int {
	return d.cache.Len()
}
