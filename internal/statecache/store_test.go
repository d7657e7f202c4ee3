// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package statecache

import (
	"errors"
	"testing"
	"time"

	"github.com/jellybridge/jellybridge/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestLoadEmptyCache(t *testing.T) {
	store := openTestStore(t)

	_, err := store.LoadSnapshot()
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)

	want := &models.Snapshot{
		Server: models.ServerInfo{Name: "Test Server", Version: "10.9.2", ID: "srv-1"},
		Sessions: []models.PlaybackSession{
			{ID: "sess-1", UserName: "alice", State: models.PlaybackState{Paused: true}},
		},
		Library: models.LibraryStats{Movies: 42, Episodes: 300},
		Taken:   time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}

	if err := store.SaveSnapshot(want); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}

	got, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}

	if got.Server.Name != "Test Server" {
		t.Errorf("server name = %q, want Test Server", got.Server.Name)
	}
	if len(got.Sessions) != 1 || got.Sessions[0].ID != "sess-1" {
		t.Errorf("sessions did not survive round trip: %+v", got.Sessions)
	}
	if !got.Sessions[0].State.Paused {
		t.Error("paused flag lost in round trip")
	}
	if got.Library.Movies != 42 {
		t.Errorf("movie count = %d, want 42", got.Library.Movies)
	}
	if !got.Taken.Equal(want.Taken) {
		t.Errorf("taken = %v, want %v", got.Taken, want.Taken)
	}
}

func TestSaveReplacesPrevious(t *testing.T) {
	store := openTestStore(t)

	first := &models.Snapshot{Library: models.LibraryStats{Movies: 1}}
	second := &models.Snapshot{Library: models.LibraryStats{Movies: 2}}

	if err := store.SaveSnapshot(first); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.SaveSnapshot(second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if got.Library.Movies != 2 {
		t.Errorf("expected latest snapshot, got movie count %d", got.Library.Movies)
	}
}

func TestSaveNilSnapshot(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveSnapshot(nil); err == nil {
		t.Error("expected error saving nil snapshot")
	}
}

func TestSnapshotSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	snap := &models.Snapshot{Server: models.ServerInfo{ID: "srv-persist"}}
	if err := store.SaveSnapshot(snap); err != nil {
		t.Fatalf("save snapshot: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.LoadSnapshot()
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if got.Server.ID != "srv-persist" {
		t.Errorf("server id = %q, want srv-persist", got.Server.ID)
	}
}
