// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
Package config provides centralized configuration management for Jellybridge.

This package handles loading, validation, and parsing of configuration
for all application components. Configuration is loaded in layers via
Koanf v2 with clear precedence: environment variables override an optional
YAML config file, which overrides built-in defaults.

# Configuration Structure

The package organizes configuration into logical groups:

  - MediaServerConfig: Jellyfin/Emby connection (URL, API key, timeouts)
  - PollConfig: Snapshot polling cadence and per-cycle deadline
  - ServerConfig: HTTP server settings (host, port, timeout)
  - NATSConfig: Playback event fan-out via Watermill/NATS JetStream
  - CacheConfig: BadgerDB snapshot cache for warm restarts
  - SecurityConfig: Authentication, rate limiting, CORS
  - LoggingConfig: Log levels and output formats

# Environment Variables

Key environment variables by component:

Media Server (MediaServerConfig):
  - MEDIA_SERVER_BACKEND: jellyfin or emby (default: jellyfin)
  - MEDIA_SERVER_URL: Server URL (required, e.g. http://localhost:8096)
  - MEDIA_SERVER_API_KEY: API key (required)
  - JELLYFIN_URL / JELLYFIN_API_KEY: Aliases for the above
  - EMBY_URL / EMBY_API_KEY: Aliases for the above

Polling (PollConfig):
  - POLL_INTERVAL: Time between poll cycles (default: 2s, floor: 1s)
  - POLL_TIMEOUT: Deadline for a full poll cycle (default: 10s)

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8790)

Authentication (SecurityConfig):
  - AUTH_MODE: none, basic, jwt, apikey (default: none)
  - JWT_SECRET: JWT signing secret (min 32 chars, required for jwt mode)
  - ADMIN_USERNAME / ADMIN_PASSWORD: Credentials for basic and jwt modes
  - AUTH_API_KEY: Static bearer token for apikey mode

# Usage Example

Basic configuration loading:

	import "github.com/jellybridge/jellybridge/internal/config"

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Bridging %s at %s\n", cfg.MediaServer.Backend, cfg.MediaServer.URL)
	fmt.Printf("Serving on %s:%d\n", cfg.Server.Host, cfg.Server.Port)

# Validation

The package performs comprehensive validation at load time:

  - Required fields: MEDIA_SERVER_URL, MEDIA_SERVER_API_KEY
  - String length: JWT_SECRET >=32 chars, AUTH_API_KEY >=16 chars
  - Numeric ranges: HTTP_PORT (1-65535), POLL_TIMEOUT (1s-5m)
  - URL formats: MEDIA_SERVER_URL must be a bare HTTP(S) base URL
  - Placeholder detection: secrets containing CHANGEME, TODO, etc. are rejected
  - Production guards: AUTH_MODE=none and wildcard CORS are refused when
    ENVIRONMENT=production

Sub-second poll intervals are clamped to 1s rather than rejected.

# Thread Safety

The Config struct is immutable after Load() returns, making it safe for
concurrent access from multiple goroutines without synchronization.

# See Also

  - config.example.yaml: Complete configuration template
  - README.md: User-facing configuration documentation
*/
package config
