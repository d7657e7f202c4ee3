// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build !nats

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// EventLogger provides specialized logging for the playback event bus.
// This is a no-op stub for builds without the nats tag.
type EventLogger struct{}

// NewEventLogger creates a logger configured for event processing.
func NewEventLogger() *EventLogger {
	return &EventLogger{}
}

// NewEventLoggerWithLogger creates an EventLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLoggerWithLogger(_ zerolog.Logger) *EventLogger {
	return &EventLogger{}
}

// Debug is a no-op in non-NATS builds.
func (e *EventLogger) Debug(_ string, _ ...interface{}) {}

// Info is a no-op in non-NATS builds.
func (e *EventLogger) Info(_ string, _ ...interface{}) {}

// Warn is a no-op in non-NATS builds.
func (e *EventLogger) Warn(_ string, _ ...interface{}) {}

// Error is a no-op in non-NATS builds.
func (e *EventLogger) Error(_ string, _ ...interface{}) {}

// InfoContext is a no-op in non-NATS builds.
func (e *EventLogger) InfoContext(_ context.Context, _ string, _ ...interface{}) {}

// DebugContext is a no-op in non-NATS builds.
func (e *EventLogger) DebugContext(_ context.Context, _ string, _ ...interface{}) {}

// LogEventPublished is a no-op in non-NATS builds.
func (e *EventLogger) LogEventPublished(_ context.Context, _, _ string) {}

// LogPublishFailed is a no-op in non-NATS builds.
func (e *EventLogger) LogPublishFailed(_ context.Context, _, _ string, _ error) {}

// LogEventReceived is a no-op in non-NATS builds.
func (e *EventLogger) LogEventReceived(_ context.Context, _, _ string) {}

// LogEventFailed is a no-op in non-NATS builds.
func (e *EventLogger) LogEventFailed(_ context.Context, _ string, _ error) {}

// LogDLQEntry is a no-op in non-NATS builds.
func (e *EventLogger) LogDLQEntry(_ context.Context, _ string, _ error, _ int) {}

// LogSubscriptionStarted is a no-op in non-NATS builds.
func (e *EventLogger) LogSubscriptionStarted(_, _ string) {}

// LogSubscriptionStopped is a no-op in non-NATS builds.
func (e *EventLogger) LogSubscriptionStopped(_ string) {}

// LogRouterStarted is a no-op in non-NATS builds.
func (e *EventLogger) LogRouterStarted() {}

// LogRouterStopped is a no-op in non-NATS builds.
func (e *EventLogger) LogRouterStopped() {}
