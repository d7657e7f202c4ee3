// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

// Package main is the entry point for the Jellybridge daemon.
//
// Jellybridge polls a Jellyfin or Emby server over its REST API, normalizes
// the responses into immutable snapshots, and exposes them to home
// automation platforms through a REST API, a WebSocket push channel, and
// Prometheus metrics. Remote control commands (play/pause, stop, seek,
// volume, messages) are proxied back to the media server.
//
// # Application Architecture
//
// The daemon initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config file (Koanf v2)
//  2. Media client: Circuit-breaker wrapped Jellyfin/Emby REST client
//  3. Snapshot cache: BadgerDB warm cache so restarts serve data immediately
//  4. Poll coordinator: Periodic full-state polling with all-or-nothing snapshot swaps
//  5. WebSocket hub: Real-time snapshot and playback event push
//  6. Authentication: JWT, Basic Auth, static API key, or no-auth mode
//  7. NATS (optional): Playback event fan-out with JetStream persistence
//  8. HTTP server: REST API behind Chi with CORS, rate limiting and metrics
//
// Everything runs under a suture supervisor tree; a crashing component is
// restarted with backoff without taking down the rest of the bridge.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults.
//
// Required settings:
//   - MEDIA_SERVER_URL: Jellyfin/Emby server URL (e.g., http://localhost:8096)
//   - MEDIA_SERVER_API_KEY: API key from Admin Dashboard > API Keys
//
// For JWT authentication:
//   - AUTH_MODE=jwt
//   - JWT_SECRET: 32+ character secret for token signing
//   - ADMIN_USERNAME / ADMIN_PASSWORD: Admin credentials
//
// For home automation platforms a static API key is usually simpler:
//   - AUTH_MODE=apikey
//   - AUTH_API_KEY: Bearer token presented by the automation platform
//
// # Build Tags
//
// NATS JetStream event fan-out is optional and compiled in with a tag:
//
//	go build -tags nats ./cmd/jellybridge
//
// Without the tag, NATS_ENABLED=true logs a warning and event fan-out
// stays off; everything else works identically.
//
// # Signal Handling
//
// The daemon handles graceful shutdown on SIGINT and SIGTERM: the HTTP
// server drains in-flight requests, the poll coordinator stops, WebSocket
// clients receive close frames, and the NATS pipeline (if enabled) shuts
// down in reverse dependency order.
//
// # Example Usage
//
// Local development against Jellyfin without authentication:
//
//	export MEDIA_SERVER_URL=http://localhost:8096
//	export MEDIA_SERVER_API_KEY=your-api-key
//	export AUTH_MODE=none
//	./jellybridge
//
// Production with an Emby backend and a static automation key:
//
//	export MEDIA_SERVER_BACKEND=emby
//	export MEDIA_SERVER_URL=http://emby:8096
//	export MEDIA_SERVER_API_KEY=your-api-key
//	export AUTH_MODE=apikey
//	export AUTH_API_KEY=$(openssl rand -hex 32)
//	./jellybridge
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jellybridge/jellybridge/internal/api"
	"github.com/jellybridge/jellybridge/internal/auth"
	"github.com/jellybridge/jellybridge/internal/config"
	"github.com/jellybridge/jellybridge/internal/logging"
	"github.com/jellybridge/jellybridge/internal/media"
	"github.com/jellybridge/jellybridge/internal/models"
	"github.com/jellybridge/jellybridge/internal/statecache"
	"github.com/jellybridge/jellybridge/internal/supervisor"
	"github.com/jellybridge/jellybridge/internal/supervisor/services"
	ws "github.com/jellybridge/jellybridge/internal/websocket"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Jellybridge with supervisor tree")
	logging.Info().
		Str("backend", cfg.MediaServer.Backend).
		Str("server_url", cfg.MediaServer.URL).
		Str("auth_mode", cfg.Security.AuthMode).
		Dur("poll_interval", cfg.Poll.Interval).
		Msg("Configuration loaded")

	// Circuit-breaker wrapped media server client. The breaker prevents
	// cascading failures when the Jellyfin/Emby API is unavailable.
	client := media.NewBreakerClient(media.ClientConfig{
		BaseURL:            cfg.MediaServer.URL,
		APIKey:             cfg.MediaServer.APIKey,
		UserID:             cfg.MediaServer.UserID,
		Timeout:            cfg.MediaServer.Timeout,
		RateLimit:          cfg.MediaServer.RateLimit,
		InsecureSkipVerify: !cfg.MediaServer.VerifyTLS,
		ClientName:         cfg.MediaServer.ClientName,
		DeviceName:         cfg.MediaServer.DeviceName,
		DeviceID:           cfg.MediaServer.ResolvedDeviceID(),
		Version:            cfg.MediaServer.ClientVersion,
	})

	// Startup probe. Bad credentials are fatal; an unreachable server is
	// not, the poll coordinator keeps retrying until it comes up.
	probeCtx, probeCancel := context.WithTimeout(context.Background(), cfg.MediaServer.Timeout+5*time.Second)
	if _, err := media.ValidateConnection(probeCtx, client); err != nil {
		if errors.Is(err, media.ErrInvalidAuth) {
			probeCancel()
			logging.Fatal().Err(err).Msg("Media server rejected credentials, check MEDIA_SERVER_API_KEY")
		}
		logging.Warn().Err(err).Msg("Media server unreachable at startup (will retry)")
	}
	probeCancel()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create WebSocket hub for real-time updates (before the coordinator
	// so snapshot broadcasts can be registered as a listener)
	wsHub := ws.NewHub()

	coordinator := media.NewCoordinator(client, media.CoordinatorConfig{
		Interval:      cfg.Poll.Interval,
		Timeout:       cfg.Poll.Timeout,
		ServerAddress: cfg.MediaServer.URL,
		UpcomingLimit: cfg.Poll.UpcomingLimit,
		LatestLimit:   cfg.Poll.LatestLimit,
	})
	coordinator.AddListener(wsHub.BroadcastSnapshot)

	// Snapshot warm cache: restore the last good snapshot so the API serves
	// data before the first poll cycle, and persist each new snapshot.
	var snapStore *statecache.Store
	if cfg.Cache.Enabled {
		store, err := statecache.Open(cfg.Cache.Path)
		if err != nil {
			logging.Warn().Err(err).Str("path", cfg.Cache.Path).Msg("Snapshot cache unavailable, continuing without warm restarts")
		} else {
			snapStore = store
			defer func() {
				if err := snapStore.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing snapshot cache")
				}
			}()

			if snap, err := snapStore.LoadSnapshot(); err != nil {
				logging.Warn().Err(err).Msg("Failed to load cached snapshot")
			} else if snap != nil {
				coordinator.SeedSnapshot(snap)
				logging.Info().Time("taken", snap.Taken).Msg("Restored snapshot from cache")
			}

			coordinator.AddListener(func(snap *models.Snapshot) {
				if err := snapStore.SaveSnapshot(snap); err != nil {
					logging.Warn().Err(err).Msg("Failed to persist snapshot to cache")
				}
			})
		}
	} else {
		logging.Info().Msg("Snapshot cache disabled (CACHE_ENABLED=false)")
	}

	var jwtManager *auth.JWTManager
	var basicAuthManager *auth.BasicAuthManager

	switch cfg.Security.AuthMode {
	case "jwt":
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("JWT authentication enabled")
	case "basic":
		basicAuthManager, err = auth.NewBasicAuthManager(
			cfg.Security.AdminUsername,
			cfg.Security.AdminPassword,
		)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize Basic Auth manager")
		}
		logging.Info().Msg("Basic authentication enabled")
		logging.Warn().Msg("Basic Auth transmits credentials with each request. Use HTTPS in production!")
	case "apikey":
		logging.Info().Msg("Static API key authentication enabled")
	case "none":
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("All endpoints including remote control commands are publicly accessible.")
		logging.Warn().Msg("Only use this on isolated private networks or for local development.")
	}

	authMiddleware := auth.NewMiddleware(&cfg.Security, jwtManager, basicAuthManager)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	chiMWConfig := api.DefaultChiMiddlewareConfig()
	chiMWConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	chiMWConfig.RateLimitRequests = cfg.Security.RateLimitReqs
	chiMWConfig.RateLimitWindow = cfg.Security.RateLimitWindow
	chiMWConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled
	chiMiddleware := api.NewChiMiddleware(chiMWConfig)

	handler := api.NewHandler(cfg, coordinator, client, wsHub)
	router := api.NewRouter(handler, authMiddleware, chiMiddleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create supervisor tree. sutureslog bridges zerolog to slog for
	// supervisor lifecycle events.
	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	if snapStore != nil {
		tree.AddDataService(services.NewCacheGCService(snapStore, cfg.Cache.GCInterval))
		logging.Info().Dur("interval", cfg.Cache.GCInterval).Msg("Snapshot cache GC added to supervisor tree")
	}

	// Messaging layer services
	tree.AddMessagingService(services.NewHubService(wsHub))
	tree.AddMessagingService(services.NewPollerService(coordinator))
	logging.Info().Msg("WebSocket hub and poll coordinator added to supervisor tree")

	// NATS event pipeline (optional - requires build with -tags nats)
	initEventBus(cfg, tree, wsHub, coordinator)

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
