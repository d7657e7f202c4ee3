// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

//go:build nats

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// EventLogger provides specialized logging for the playback event bus.
// It carries the eventbus component field and adds correlation IDs from
// context where present.
type EventLogger struct {
	logger zerolog.Logger
}

// NewEventLogger creates a logger configured for event processing.
func NewEventLogger() *EventLogger {
	return &EventLogger{
		logger: With().Str("component", "eventbus").Logger(),
	}
}

// NewEventLoggerWithLogger creates an EventLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEventLoggerWithLogger(logger zerolog.Logger) *EventLogger {
	return &EventLogger{
		logger: logger.With().Str("component", "eventbus").Logger(),
	}
}

// Debug logs a debug message with key-value field pairs.
func (e *EventLogger) Debug(msg string, fields ...interface{}) {
	addFieldPairs(e.logger.Debug(), fields).Msg(msg)
}

// Info logs an info message with key-value field pairs.
func (e *EventLogger) Info(msg string, fields ...interface{}) {
	addFieldPairs(e.logger.Info(), fields).Msg(msg)
}

// Warn logs a warning message with key-value field pairs.
func (e *EventLogger) Warn(msg string, fields ...interface{}) {
	addFieldPairs(e.logger.Warn(), fields).Msg(msg)
}

// Error logs an error message with key-value field pairs.
func (e *EventLogger) Error(msg string, fields ...interface{}) {
	addFieldPairs(e.logger.Error(), fields).Msg(msg)
}

// InfoContext logs an info message with correlation fields from context.
func (e *EventLogger) InfoContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	addFieldPairs(logger.Info(), fields).Msg(msg)
}

// DebugContext logs a debug message with correlation fields from context.
func (e *EventLogger) DebugContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	addFieldPairs(logger.Debug(), fields).Msg(msg)
}

// loggerWithContext returns a logger with context fields added.
func (e *EventLogger) loggerWithContext(ctx context.Context) zerolog.Logger {
	logCtx := e.logger.With()
	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}
	return logCtx.Logger()
}

// LogEventPublished logs a playback event published to NATS.
func (e *EventLogger) LogEventPublished(ctx context.Context, eventID, topic string) {
	e.DebugContext(ctx, "event published",
		"event_id", eventID,
		"topic", topic,
	)
}

// LogPublishFailed logs a failed publish attempt.
func (e *EventLogger) LogPublishFailed(ctx context.Context, eventID, topic string, err error) {
	logger := e.loggerWithContext(ctx)
	logger.Error().
		Str("event_id", eventID).
		Str("topic", topic).
		Err(err).
		Msg("event publish failed")
}

// LogEventReceived logs a playback event received by a consumer.
func (e *EventLogger) LogEventReceived(ctx context.Context, eventID, eventType string) {
	e.DebugContext(ctx, "event received",
		"event_id", eventID,
		"event_type", eventType,
	)
}

// LogEventFailed logs a consumer handler failure.
func (e *EventLogger) LogEventFailed(ctx context.Context, eventID string, err error) {
	logger := e.loggerWithContext(ctx)
	logger.Error().
		Str("event_id", eventID).
		Err(err).
		Msg("event processing failed")
}

// LogDLQEntry logs an event routed to the dead letter queue after retries.
func (e *EventLogger) LogDLQEntry(ctx context.Context, eventID string, err error, retryCount int) {
	logger := e.loggerWithContext(ctx)
	logger.Warn().
		Str("event_id", eventID).
		Err(err).
		Int("retry_count", retryCount).
		Msg("event sent to DLQ")
}

// LogSubscriptionStarted logs a subscription start.
func (e *EventLogger) LogSubscriptionStarted(topic, queue string) {
	e.Info("subscription started",
		"topic", topic,
		"queue", queue,
	)
}

// LogSubscriptionStopped logs a subscription stop.
func (e *EventLogger) LogSubscriptionStopped(topic string) {
	e.Info("subscription stopped", "topic", topic)
}

// LogRouterStarted logs Watermill router startup.
func (e *EventLogger) LogRouterStarted() {
	e.Info("router started")
}

// LogRouterStopped logs Watermill router shutdown.
func (e *EventLogger) LogRouterStopped() {
	e.Info("router stopped")
}
