// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
router.go - Chi Route Assembly

The route tree splits into three surfaces with distinct middleware
stacks: health probes (permissive rate limit, no auth), the core API
(auth + default rate limit + metrics) and the Prometheus scrape
endpoint. Handlers read path parameters through r.PathValue; the
chiPathValue bridge copies chi's URL params into the request for them.
*/

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jellybridge/jellybridge/internal/auth"
)

// Router assembles the HTTP route tree.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from its middleware and handler parts.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, chiMW *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		middleware:    authMiddleware,
		chiMiddleware: chiMW,
	}
}

// chiMiddleware adapts a HandlerFunc-style middleware (the auth package
// shape) into a Chi-compatible one.
func chiMiddlewareAdapter(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// chiPathValue copies chi's URL params into the request's path values so
// handlers can use the stdlib r.PathValue accessor.
func chiPathValue(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			for i, key := range rctx.URLParams.Keys {
				r.SetPathValue(key, rctx.URLParams.Values[i])
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SetupChi builds the complete route tree.
func (router *Router) SetupChi() *chi.Mux {
	r := chi.NewRouter()

	// ================================================================================
	// Global middleware
	// ================================================================================
	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// ================================================================================
	// Health probes - no auth, permissive rate limit
	// ================================================================================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())

		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ================================================================================
	// Core API - authenticated, metered
	// ================================================================================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(PrometheusMetrics())
		r.Use(chiMiddlewareAdapter(router.middleware.Authenticate))
		r.Use(chiPathValue)

		// Snapshot and entity reads
		r.Get("/snapshot", router.handler.Snapshot)
		r.Get("/sensors", router.handler.Sensors)
		r.Get("/sensors/{id}", router.handler.SensorByID)
		r.Get("/players", router.handler.Players)
		r.Get("/players/{id}", router.handler.PlayerByID)
		r.Get("/buttons", router.handler.Buttons)
		r.Get("/library/stats", router.handler.LibraryStats)
		r.Get("/upcoming", router.handler.Upcoming)
		r.Get("/latest/{kind}", router.handler.Latest)
		r.Get("/sessions", router.handler.Sessions)

		// Remote control - tighter write limit
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWrite())

			r.Post("/players/{id}/command", router.handler.PlayerCommand)
			r.Post("/players/{id}/message", router.handler.PlayerMessage)
			r.Post("/broadcast", router.handler.BroadcastMessage)
			r.Post("/server/{action}", router.handler.ServerCommand)
			r.Post("/refresh", router.handler.Refresh)
		})

		// WebSocket upgrade
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWebSocket())

			r.Get("/ws", router.handler.WebSocket)
		})
	})

	// ================================================================================
	// Prometheus scrape endpoint
	// ================================================================================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
