// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRUCacheBasicOperations(t *testing.T) {
	c := NewLRUCache(3, time.Minute)

	c.Add("a", time.Now())
	c.Add("b", time.Now())

	if _, found := c.Get("a"); !found {
		t.Error("expected to find key a")
	}
	if _, found := c.Get("missing"); found {
		t.Error("did not expect to find missing key")
	}
	if !c.Contains("b") {
		t.Error("Contains(b) = false")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}

	if !c.Remove("a") {
		t.Error("Remove(a) = false, want true")
	}
	if c.Remove("a") {
		t.Error("second Remove(a) = true, want false")
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache(3, time.Minute)

	c.Add("a", time.Now())
	c.Add("b", time.Now())
	c.Add("c", time.Now())

	// Touch a so b becomes the coldest entry.
	c.Get("a")
	c.Add("d", time.Now())

	if c.Len() != 3 {
		t.Fatalf("Len = %d, want 3", c.Len())
	}
	if c.Contains("b") {
		t.Error("b should have been evicted as least recently used")
	}
	if !c.Contains("a") || !c.Contains("c") || !c.Contains("d") {
		t.Error("unexpected eviction victim")
	}
}

func TestLRUCacheTTLExpiry(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Add("a", time.Now())
	time.Sleep(20 * time.Millisecond)

	if _, found := c.Get("a"); found {
		t.Error("expired entry must not be returned")
	}
	if c.Contains("a") {
		t.Error("Contains must treat expired entries as missing")
	}
}

func TestLRUCacheIsDuplicate(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	if c.IsDuplicate("x") {
		t.Error("first sighting must not be a duplicate")
	}
	if !c.IsDuplicate("x") {
		t.Error("second sighting must be a duplicate")
	}
}

func TestLRUCacheIsDuplicateAfterExpiry(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.IsDuplicate("x")
	time.Sleep(20 * time.Millisecond)

	if c.IsDuplicate("x") {
		t.Error("expired key must count as new")
	}
}

func TestLRUCacheClear(t *testing.T) {
	c := NewLRUCache(10, time.Minute)

	c.Add("a", time.Now())
	c.Add("b", time.Now())
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", c.Len())
	}
	if c.Contains("a") {
		t.Error("Clear must drop all entries")
	}
}

func TestLRUCacheCleanupExpired(t *testing.T) {
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Add("a", time.Now())
	c.Add("b", time.Now())
	time.Sleep(20 * time.Millisecond)
	c.Add("c", time.Now())

	if removed := c.CleanupExpired(); removed != 2 {
		t.Errorf("CleanupExpired = %d, want 2", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestLRUCacheConcurrentAccess(t *testing.T) {
	c := NewLRUCache(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key-%d-%d", n, j%20)
				c.IsDuplicate(key)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() == 0 || c.Len() > 100 {
		t.Errorf("Len = %d, want within capacity", c.Len())
	}
}
