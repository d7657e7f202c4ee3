// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"

	"github.com/jellybridge/jellybridge/internal/auth"
	"github.com/jellybridge/jellybridge/internal/websocket"
)

func TestCheckWebSocketOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.Security.CORSOrigins = []string{"https://automation.local"}
	h := NewHandler(cfg, &stubCoordinator{}, &fakeClient{}, nil)

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin header (automation client)", "", true},
		{"allowed origin", "https://automation.local", true},
		{"disallowed origin", "https://evil.example", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(req); got != tt.want {
				t.Errorf("checkWebSocketOrigin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckWebSocketOriginWildcard(t *testing.T) {
	h := NewHandler(testConfig(), &stubCoordinator{}, &fakeClient{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
	req.Header.Set("Origin", "https://anything.example")
	if !h.checkWebSocketOrigin(req) {
		t.Error("wildcard config must allow any origin")
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	coord := &stubCoordinator{snap: testSnapshot(), healthy: true}
	router := newTestRouter(t, coord, &fakeClient{})

	rec, resp := doJSON(t, router, http.MethodGet, "/api/v1/ws", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("unexpected error payload: %+v", resp.Error)
	}
}

func TestWebSocketEndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket.NewHub()
	go func() { _ = hub.RunWithContext(ctx) }()

	coord := &stubCoordinator{snap: testSnapshot(), healthy: true}
	cfg := testConfig()
	handler := NewHandler(cfg, coord, &fakeClient{}, hub)
	authMW := auth.NewMiddleware(&cfg.Security, nil, nil)
	chiMW := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	router := NewRouter(handler, authMW, chiMW).SetupChi()

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/ws"
	conn, _, err := gorillaws.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait until the hub registered the client, then broadcast.
	deadline := time.Now().Add(2 * time.Second)
	for hub.GetClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered with hub")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.BroadcastSnapshot(testSnapshot())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg websocket.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read broadcast: %v", err)
	}
	if msg.Type != websocket.MessageTypeSnapshot {
		t.Errorf("message type = %q, want %q", msg.Type, websocket.MessageTypeSnapshot)
	}
}
