// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package api

import (
	"net/http"
	"time"
)

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, r, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Ready means the last poll cycle against the media server succeeded and
// a snapshot is being served. Returns 503 while unhealthy so load
// balancers route around a bridge that lost its server.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	healthy := h.coordinator.Healthy()
	snap := h.coordinator.Snapshot()

	data := map[string]interface{}{
		"server_connected": healthy,
		"snapshot_present": snap != nil,
		"uptime":           time.Since(h.startTime).Seconds(),
	}
	if snap != nil {
		data["snapshot_age_seconds"] = time.Since(snap.Taken).Seconds()
	}
	if err := h.coordinator.LastError(); err != nil {
		data["last_error"] = err.Error()
	}

	if !healthy || snap == nil {
		rw := NewResponseWriter(w, r)
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Bridge is not ready", data)
		return
	}

	WriteSuccess(w, r, data)
}
