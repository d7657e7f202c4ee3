// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package services

import (
	"context"
)

// ContextRunner matches the WebSocket hub's RunWithContext method.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// HubService runs the WebSocket hub as a supervised service. RunWithContext
// already follows the suture contract, so the wrapper only adds a name.
type HubService struct {
	hub  ContextRunner
	name string
}

// NewHubService creates a WebSocket hub service wrapper.
func NewHubService(hub ContextRunner) *HubService {
	return &HubService{
		hub:  hub,
		name: "websocket-hub",
	}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (s *HubService) String() string {
	return s.name
}
