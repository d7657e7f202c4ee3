// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package services

import (
	"context"
	"fmt"
	"time"
)

// EventPipeline matches the assembled event bus components.
type EventPipeline interface {
	Shutdown(ctx context.Context) error
}

// PipelineStartFunc assembles and starts the event pipeline. The binary's
// NATS init code supplies it so this package stays free of NATS imports and
// build tags.
type PipelineStartFunc func(ctx context.Context) (EventPipeline, error)

// EventBusService runs the NATS event pipeline as a supervised service.
// Setup happens inside Serve so a supervisor restart rebuilds the whole
// pipeline, embedded server included, rather than reusing closed components.
type EventBusService struct {
	start           PipelineStartFunc
	shutdownTimeout time.Duration
	name            string
}

// NewEventBusService creates an event bus service wrapper.
func NewEventBusService(start PipelineStartFunc, shutdownTimeout time.Duration) *EventBusService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EventBusService{
		start:           start,
		shutdownTimeout: shutdownTimeout,
		name:            "event-pipeline",
	}
}

// Serve implements suture.Service.
func (s *EventBusService) Serve(ctx context.Context) error {
	pipeline, err := s.start(ctx)
	if err != nil {
		return fmt.Errorf("event pipeline start failed: %w", err)
	}

	<-ctx.Done()

	// Fresh context for teardown; the original is already canceled.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := pipeline.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("event pipeline shutdown failed: %w", err)
	}

	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *EventBusService) String() string {
	return s.name
}
