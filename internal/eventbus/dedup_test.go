// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package eventbus

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryDeduplicator(t *testing.T) {
	d := NewInMemoryDeduplicator(time.Minute)
	ctx := context.Background()

	dup, err := d.IsDuplicate(ctx, "msg-1")
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if dup {
		t.Error("first sighting must not be a duplicate")
	}

	dup, err = d.IsDuplicate(ctx, "msg-1")
	if err != nil {
		t.Fatalf("IsDuplicate: %v", err)
	}
	if !dup {
		t.Error("second sighting must be a duplicate")
	}

	dup, _ = d.IsDuplicate(ctx, "msg-2")
	if dup {
		t.Error("distinct key must not be a duplicate")
	}

	if d.Len() != 2 {
		t.Errorf("Len = %d, want 2", d.Len())
	}
}

func TestInMemoryDeduplicatorExpiry(t *testing.T) {
	d := NewInMemoryDeduplicator(10 * time.Millisecond)
	ctx := context.Background()

	if dup, _ := d.IsDuplicate(ctx, "msg-1"); dup {
		t.Fatal("first sighting must not be a duplicate")
	}

	time.Sleep(20 * time.Millisecond)

	if dup, _ := d.IsDuplicate(ctx, "msg-1"); dup {
		t.Error("expired key must be treated as new")
	}
}
