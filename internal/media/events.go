// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package media

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jellybridge/jellybridge/internal/models"
)

// Playback lifecycle event types.
const (
	EventStarted = "started"
	EventStopped = "stopped"
	EventPaused  = "paused"
	EventResumed = "resumed"
)

// SessionEvent records one playback state transition observed between two
// consecutive snapshots. Stopped events carry the last known session state.
type SessionEvent struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	Session models.PlaybackSession `json:"session"`
	At      time.Time              `json:"at"`
}

// EventPublisher receives playback lifecycle events after each snapshot
// swap. Implementations must not block the poll loop; slow transports
// buffer or drop internally.
type EventPublisher interface {
	PublishSessionEvent(ctx context.Context, event SessionEvent) error
}

// diffSessions compares consecutive session lists and returns the playback
// transitions that happened between them: sessions that appeared (started),
// disappeared (stopped), changed items (stopped + started) or flipped their
// pause state (paused / resumed). Stops of vanished sessions come first in
// previous-snapshot order, then the remaining transitions in
// current-snapshot order.
func diffSessions(prev, curr []models.PlaybackSession, at time.Time) []SessionEvent {
	prevByID := make(map[string]*models.PlaybackSession, len(prev))
	for i := range prev {
		prevByID[prev[i].ID] = &prev[i]
	}
	currByID := make(map[string]struct{}, len(curr))
	for i := range curr {
		currByID[curr[i].ID] = struct{}{}
	}

	var events []SessionEvent

	for i := range prev {
		if _, ok := currByID[prev[i].ID]; !ok {
			events = append(events, newEvent(EventStopped, prev[i], at))
		}
	}

	for i := range curr {
		c := &curr[i]
		p, ok := prevByID[c.ID]
		if !ok {
			events = append(events, newEvent(EventStarted, *c, at))
			continue
		}
		if p.Item.ID != c.Item.ID {
			// Same session, new content: close out the old item first.
			events = append(events, newEvent(EventStopped, *p, at))
			events = append(events, newEvent(EventStarted, *c, at))
			continue
		}
		switch {
		case !p.State.Paused && c.State.Paused:
			events = append(events, newEvent(EventPaused, *c, at))
		case p.State.Paused && !c.State.Paused:
			events = append(events, newEvent(EventResumed, *c, at))
		}
	}

	return events
}

func newEvent(eventType string, session models.PlaybackSession, at time.Time) SessionEvent {
	return SessionEvent{
		ID:      uuid.NewString(),
		Type:    eventType,
		Session: session,
		At:      at,
	}
}
