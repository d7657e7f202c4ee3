// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package services

import (
	"context"
	"time"
)

// GCRunner matches the snapshot cache's value-log GC loop.
type GCRunner interface {
	RunGC(ctx context.Context, interval time.Duration)
}

// CacheGCService runs the snapshot cache garbage collector as a supervised
// service in the data layer.
type CacheGCService struct {
	store    GCRunner
	interval time.Duration
	name     string
}

// NewCacheGCService creates a cache GC service wrapper.
func NewCacheGCService(store GCRunner, interval time.Duration) *CacheGCService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &CacheGCService{
		store:    store,
		interval: interval,
		name:     "snapshot-cache-gc",
	}
}

// Serve implements suture.Service. RunGC blocks until the context is
// canceled.
func (s *CacheGCService) Serve(ctx context.Context) error {
	s.store.RunGC(ctx, s.interval)
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *CacheGCService) String() string {
	return s.name
}
