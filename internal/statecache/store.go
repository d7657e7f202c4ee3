// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
store.go - Snapshot Warm Cache

Persists the latest normalized snapshot to BadgerDB so a restart can
serve state immediately instead of waiting out the first poll cycle. A
cached snapshot is only a warm start: the coordinator's startup poll
replaces it as soon as the media server answers.

The store keeps exactly one snapshot under a fixed key. Badger value-log
garbage collection runs on a configurable interval; see RunGC.
*/

package statecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/jellybridge/jellybridge/internal/logging"
	"github.com/jellybridge/jellybridge/internal/metrics"
	"github.com/jellybridge/jellybridge/internal/models"
)

const (
	snapshotKey = "snapshot:latest"
	cacheType   = "snapshot"

	// gcDiscardRatio is Badger's recommended default for value-log GC.
	gcDiscardRatio = 0.5
)

// ErrNoSnapshot is returned by LoadSnapshot when the cache holds nothing.
var ErrNoSnapshot = errors.New("statecache: no cached snapshot")

// Store is a single-snapshot BadgerDB cache.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty; errors surface via returns

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot cache at %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// SaveSnapshot replaces the cached snapshot.
func (s *Store) SaveSnapshot(snap *models.Snapshot) error {
	if snap == nil {
		return errors.New("statecache: nil snapshot")
	}

	data, err := json.Marshal(snap)
	if err != nil {
		metrics.RecordCacheError(cacheType, "marshal")
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(snapshotKey), data)
	})
	if err != nil {
		metrics.RecordCacheError(cacheType, "write")
		return fmt.Errorf("write snapshot: %w", err)
	}

	metrics.RecordCacheWrite(cacheType)
	return nil
}

// LoadSnapshot returns the cached snapshot, or ErrNoSnapshot when the
// cache is empty. A corrupt entry also reports ErrNoSnapshot so callers
// fall through to a cold start instead of failing.
func (s *Store) LoadSnapshot() (*models.Snapshot, error) {
	var snap models.Snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(snapshotKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNoSnapshot
		}
		if err != nil {
			return fmt.Errorf("get snapshot: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})

	if errors.Is(err, ErrNoSnapshot) {
		metrics.RecordCacheMiss(cacheType)
		return nil, ErrNoSnapshot
	}
	if err != nil {
		metrics.RecordCacheError(cacheType, "read")
		logging.Warn().Err(err).Msg("Cached snapshot unreadable, starting cold")
		return nil, ErrNoSnapshot
	}

	metrics.RecordCacheHit(cacheType)
	return &snap, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunGC runs Badger value-log garbage collection every interval until
// the context is cancelled. badger.ErrNoRewrite just means there was
// nothing to reclaim.
func (s *Store) RunGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(gcDiscardRatio)
			if err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				metrics.RecordCacheError(cacheType, "gc")
				logging.Warn().Err(err).Msg("Snapshot cache GC failed")
			}
		}
	}
}
