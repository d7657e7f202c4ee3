// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package media

import (
	"testing"
	"time"

	"github.com/jellybridge/jellybridge/internal/models"
)

func playbackSession(id, itemID string, paused bool) models.PlaybackSession {
	return models.PlaybackSession{
		ID:    id,
		Item:  models.MediaItem{ID: itemID, Title: "Title " + itemID},
		State: models.PlaybackState{Paused: paused},
	}
}

func TestDiffSessionsStarted(t *testing.T) {
	now := time.Now()
	curr := []models.PlaybackSession{playbackSession("s1", "i1", false)}

	events := diffSessions(nil, curr, now)

	checkSliceLen(t, "events", len(events), 1)
	checkStringEqual(t, "type", events[0].Type, EventStarted)
	checkStringEqual(t, "session ID", events[0].Session.ID, "s1")
	checkTrue(t, "event ID assigned", events[0].ID != "")
	checkTrue(t, "timestamp recorded", events[0].At.Equal(now))
}

func TestDiffSessionsStopped(t *testing.T) {
	prev := []models.PlaybackSession{playbackSession("s1", "i1", false)}

	events := diffSessions(prev, nil, time.Now())

	checkSliceLen(t, "events", len(events), 1)
	checkStringEqual(t, "type", events[0].Type, EventStopped)
	// Stopped events carry the last known session state
	checkStringEqual(t, "item ID", events[0].Session.Item.ID, "i1")
}

func TestDiffSessionsPauseResume(t *testing.T) {
	playing := []models.PlaybackSession{playbackSession("s1", "i1", false)}
	paused := []models.PlaybackSession{playbackSession("s1", "i1", true)}

	events := diffSessions(playing, paused, time.Now())
	checkSliceLen(t, "pause events", len(events), 1)
	checkStringEqual(t, "type", events[0].Type, EventPaused)

	events = diffSessions(paused, playing, time.Now())
	checkSliceLen(t, "resume events", len(events), 1)
	checkStringEqual(t, "type", events[0].Type, EventResumed)
}

func TestDiffSessionsUnchanged(t *testing.T) {
	sessions := []models.PlaybackSession{
		playbackSession("s1", "i1", false),
		playbackSession("s2", "i2", true),
	}

	events := diffSessions(sessions, sessions, time.Now())
	checkSliceLen(t, "events", len(events), 0)
}

func TestDiffSessionsItemChange(t *testing.T) {
	prev := []models.PlaybackSession{playbackSession("s1", "i1", false)}
	curr := []models.PlaybackSession{playbackSession("s1", "i2", false)}

	events := diffSessions(prev, curr, time.Now())

	// Content change closes out the old item before starting the new one
	checkSliceLen(t, "events", len(events), 2)
	checkStringEqual(t, "first type", events[0].Type, EventStopped)
	checkStringEqual(t, "first item", events[0].Session.Item.ID, "i1")
	checkStringEqual(t, "second type", events[1].Type, EventStarted)
	checkStringEqual(t, "second item", events[1].Session.Item.ID, "i2")
}

func TestDiffSessionsMixed(t *testing.T) {
	prev := []models.PlaybackSession{
		playbackSession("gone", "i1", false),
		playbackSession("stays", "i2", false),
	}
	curr := []models.PlaybackSession{
		playbackSession("stays", "i2", true),
		playbackSession("new", "i3", false),
	}

	events := diffSessions(prev, curr, time.Now())

	// Stops come first, then per-session transitions in current order
	checkSliceLen(t, "events", len(events), 3)
	checkStringEqual(t, "events[0].Type", events[0].Type, EventStopped)
	checkStringEqual(t, "events[0] session", events[0].Session.ID, "gone")
	checkStringEqual(t, "events[1].Type", events[1].Type, EventPaused)
	checkStringEqual(t, "events[1] session", events[1].Session.ID, "stays")
	checkStringEqual(t, "events[2].Type", events[2].Type, EventStarted)
	checkStringEqual(t, "events[2] session", events[2].Session.ID, "new")
}

func TestDiffSessionsUniqueEventIDs(t *testing.T) {
	prev := []models.PlaybackSession{playbackSession("s1", "i1", false)}
	curr := []models.PlaybackSession{playbackSession("s2", "i2", false)}

	events := diffSessions(prev, curr, time.Now())

	checkSliceLen(t, "events", len(events), 2)
	checkTrue(t, "event IDs differ", events[0].ID != events[1].ID)
}
