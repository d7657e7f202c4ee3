// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package eventbus

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/jellybridge/jellybridge/internal/media"
)

// Serializer handles playback event encoding for NATS messages.
type Serializer struct{}

// NewSerializer creates a new serializer.
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Marshal converts a playback event to JSON bytes.
func (s *Serializer) Marshal(event *media.SessionEvent) ([]byte, error) {
	if err := validateEvent(event); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	return data, nil
}

// Unmarshal converts JSON bytes back to a playback event.
func (s *Serializer) Unmarshal(data []byte) (*media.SessionEvent, error) {
	var event media.SessionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}

	return &event, nil
}

// Topic returns the NATS subject for an event type, e.g. "playback.started".
func Topic(eventType string) string {
	return TopicPrefix + eventType
}

func validateEvent(event *media.SessionEvent) error {
	if event == nil {
		return fmt.Errorf("event is nil")
	}
	if event.ID == "" {
		return fmt.Errorf("event ID is required")
	}
	if event.Type == "" {
		return fmt.Errorf("event type is required")
	}
	return nil
}
