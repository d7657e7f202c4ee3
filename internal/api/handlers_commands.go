// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
handlers_commands.go - Remote Control Endpoints

Command endpoints validate the body against its validator tags and the
session against the current snapshot, then run the media server call
through the coordinator's ExecCommand wrapper so every command is metered
and followed by the refresh nudge. Commands are fire-and-forget on the
server side; a 202 means the server accepted the command, not that the
client device applied it.
*/

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/jellybridge/jellybridge/internal/entity"
	"github.com/jellybridge/jellybridge/internal/logging"
	"github.com/jellybridge/jellybridge/internal/media"
)

func errUnknownCommand(command string) error {
	return fmt.Errorf("unknown command: %q", command)
}

// maxCommandBodyBytes bounds command request bodies.
const maxCommandBodyBytes = 64 * 1024

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxCommandBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// PlayerCommand executes a remote control command against one session.
func (h *Handler) PlayerCommand(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}

	sessionID := r.PathValue("id")
	session, ok := snap.SessionByID(sessionID)
	if !ok {
		rw.NotFound("No active session: " + sessionID)
		return
	}

	var req playerCommandRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if details := validateRequest(&req); details != nil {
		rw.ValidationError("Invalid command request", details)
		return
	}

	if !session.Controllable {
		rw.ValidationError("Session is not remote controllable", map[string]string{"session_id": sessionID})
		return
	}

	fn, err := h.commandFunc(sessionID, &req)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	if err := h.coordinator.ExecCommand(r.Context(), req.Command, fn); err != nil {
		rw.ExternalServiceError("media server", err)
		return
	}

	rw.Accepted(map[string]string{
		"session_id": sessionID,
		"command":    req.Command,
	})
}

// commandFunc maps a command request onto the client call executing it.
func (h *Handler) commandFunc(sessionID string, req *playerCommandRequest) (func(ctx context.Context) error, error) {
	switch req.Command {
	case media.CommandPlayPause:
		return func(ctx context.Context) error { return h.client.PlayPause(ctx, sessionID) }, nil
	case media.CommandStop:
		return func(ctx context.Context) error { return h.client.StopPlayback(ctx, sessionID) }, nil
	case media.CommandNext:
		return func(ctx context.Context) error { return h.client.NextTrack(ctx, sessionID) }, nil
	case media.CommandPrevious:
		return func(ctx context.Context) error { return h.client.PreviousTrack(ctx, sessionID) }, nil
	case media.CommandSeek:
		// position_seconds presence is guaranteed by validation
		pos := *req.PositionSeconds
		return func(ctx context.Context) error { return h.client.Seek(ctx, sessionID, pos) }, nil
	case media.CommandSetVolume:
		level := *req.Volume
		return func(ctx context.Context) error { return h.client.SetVolume(ctx, sessionID, level) }, nil
	case media.CommandMute:
		return func(ctx context.Context) error { return h.client.Mute(ctx, sessionID) }, nil
	case media.CommandUnmute:
		return func(ctx context.Context) error { return h.client.Unmute(ctx, sessionID) }, nil
	default:
		return nil, errUnknownCommand(req.Command)
	}
}

// PlayerMessage shows a message dialog on one session's client device.
func (h *Handler) PlayerMessage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}

	sessionID := r.PathValue("id")
	if _, ok := snap.SessionByID(sessionID); !ok {
		rw.NotFound("No active session: " + sessionID)
		return
	}

	var req messageRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if details := validateRequest(&req); details != nil {
		rw.ValidationError("Invalid message request", details)
		return
	}

	err := h.coordinator.ExecCommand(r.Context(), "send_message", func(ctx context.Context) error {
		return h.client.SendMessage(ctx, sessionID, req.Text, req.Header, req.TimeoutMs)
	})
	if err != nil {
		rw.ExternalServiceError("media server", err)
		return
	}

	rw.Accepted(map[string]string{"session_id": sessionID})
}

// BroadcastMessage sends a message dialog to every active session.
func (h *Handler) BroadcastMessage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}

	var req messageRequest
	if err := decodeBody(w, r, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if details := validateRequest(&req); details != nil {
		rw.ValidationError("Invalid message request", details)
		return
	}

	sent, err := entity.Broadcast(r.Context(), h.client, snap, req.Text, req.Header, req.TimeoutMs)
	if err != nil {
		logging.Warn().Err(err).Int("sent", sent).Msg("Broadcast reached only part of the sessions")
	}
	if err != nil && sent == 0 && len(snap.Sessions) > 0 {
		rw.ExternalServiceError("media server", err)
		return
	}

	rw.Success(map[string]interface{}{
		"sessions": len(snap.Sessions),
		"sent":     sent,
	})
}

// ServerCommand executes a server-level operation: rescan, restart or
// shutdown.
func (h *Handler) ServerCommand(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	action := r.PathValue("action")
	var fn func(ctx context.Context) error
	switch action {
	case "rescan":
		fn = h.client.RefreshLibrary
	case "restart":
		fn = h.client.RestartServer
	case "shutdown":
		fn = h.client.ShutdownServer
	default:
		rw.BadRequest("Unknown server action: " + action + " (want rescan, restart or shutdown)")
		return
	}

	if err := h.coordinator.ExecCommand(r.Context(), "server_"+action, fn); err != nil {
		rw.ExternalServiceError("media server", err)
		return
	}

	rw.Accepted(map[string]string{"action": action})
}

// Refresh requests an immediate out-of-band poll cycle.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.coordinator.RequestRefresh()
	NewResponseWriter(w, r).Accepted(map[string]string{"refresh": "requested"})
}
