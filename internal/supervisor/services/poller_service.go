// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package services

import (
	"context"
	"fmt"
)

// StartStopPoller matches the poll coordinator's lifecycle.
type StartStopPoller interface {
	Start(ctx context.Context) error
	Stop()
}

// PollerService runs the poll coordinator as a supervised service. The
// coordinator manages its own goroutines internally; the wrapper only
// sequences Start, context wait and Stop.
type PollerService struct {
	poller StartStopPoller
	name   string
}

// NewPollerService creates a poll coordinator service wrapper.
func NewPollerService(poller StartStopPoller) *PollerService {
	return &PollerService{
		poller: poller,
		name:   "poll-coordinator",
	}
}

// Serve implements suture.Service. A Start failure is returned immediately
// so suture restarts with backoff; Stop blocks until the poll goroutine has
// drained.
func (s *PollerService) Serve(ctx context.Context) error {
	if err := s.poller.Start(ctx); err != nil {
		return fmt.Errorf("poll coordinator start failed: %w", err)
	}

	<-ctx.Done()

	s.poller.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (s *PollerService) String() string {
	return s.name
}
