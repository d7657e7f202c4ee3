// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
handlers.go - Read Endpoints

All read endpoints serve projections of the coordinator's current
snapshot. They never touch the media server directly; a request observes
exactly one snapshot pointer, so every field in a response is internally
consistent. Before the first successful poll the snapshot is nil and the
data endpoints answer 503.
*/

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jellybridge/jellybridge/internal/config"
	"github.com/jellybridge/jellybridge/internal/entity"
	"github.com/jellybridge/jellybridge/internal/media"
	"github.com/jellybridge/jellybridge/internal/models"
	"github.com/jellybridge/jellybridge/internal/websocket"
)

// SnapshotProvider is the coordinator surface the handlers need.
// *media.Coordinator satisfies it.
type SnapshotProvider interface {
	Snapshot() *models.Snapshot
	Healthy() bool
	LastError() error
	RequestRefresh()
	ExecCommand(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	config      *config.Config
	coordinator SnapshotProvider
	client      media.ClientInterface
	hub         *websocket.Hub
	startTime   time.Time
}

// NewHandler creates a handler with the given dependencies. The hub may
// be nil when WebSocket support is not wired (tests).
func NewHandler(cfg *config.Config, coordinator SnapshotProvider, client media.ClientInterface, hub *websocket.Hub) *Handler {
	return &Handler{
		config:      cfg,
		coordinator: coordinator,
		client:      client,
		hub:         hub,
		startTime:   time.Now(),
	}
}

// currentSnapshot fetches the active snapshot, answering 503 when none
// exists yet. Callers must return immediately on nil.
func (h *Handler) currentSnapshot(rw *ResponseWriter) *models.Snapshot {
	snap := h.coordinator.Snapshot()
	if snap == nil {
		rw.ServiceUnavailable("No snapshot available yet; first poll has not completed")
		return nil
	}
	return snap
}

// Snapshot serves the full current snapshot.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}
	rw.Success(snap)
}

// Sensors serves the fixed sensor set projected from the snapshot.
func (h *Handler) Sensors(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}
	sensors := entity.Sensors(snap)
	rw.SuccessWithCount(sensors, len(sensors))
}

// SensorByID serves a single sensor by its identifier.
func (h *Handler) SensorByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}

	sensor, ok := entity.SensorByID(snap, r.PathValue("id"))
	if !ok {
		rw.NotFound("Unknown sensor: " + r.PathValue("id"))
		return
	}
	rw.Success(sensor)
}

// Players serves one player view per active session.
func (h *Handler) Players(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}
	players := entity.Players(snap)
	rw.SuccessWithCount(players, len(players))
}

// PlayerByID serves the player view for one session.
func (h *Handler) PlayerByID(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}

	player, ok := entity.PlayerByID(snap, r.PathValue("id"))
	if !ok {
		rw.NotFound("No active session: " + r.PathValue("id"))
		return
	}
	rw.Success(player)
}

// Buttons serves the static button descriptors for discovery.
func (h *Handler) Buttons(w http.ResponseWriter, r *http.Request) {
	buttons := entity.Buttons()
	NewResponseWriter(w, r).SuccessWithCount(buttons, len(buttons))
}

// LibraryStats serves the library item counts.
func (h *Handler) LibraryStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}
	rw.Success(snap.Library)
}

// Upcoming serves the upcoming episodes list.
func (h *Handler) Upcoming(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}
	rw.SuccessWithCount(snap.Upcoming, len(snap.Upcoming))
}

// Latest serves one of the recently-added lists, selected by the {kind}
// path parameter: movies, episodes or music.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}

	var items []models.MediaItem
	switch kind := r.PathValue("kind"); kind {
	case "movies":
		items = snap.LatestMovies
	case "episodes":
		items = snap.LatestEpisodes
	case "music":
		items = snap.LatestMusic
	default:
		rw.BadRequest("Unknown latest kind: " + kind + " (want movies, episodes or music)")
		return
	}

	rw.SuccessWithCount(items, len(items))
}

// Sessions serves the raw active session list.
func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	snap := h.currentSnapshot(rw)
	if snap == nil {
		return
	}
	rw.SuccessWithCount(snap.Sessions, len(snap.Sessions))
}
