// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and an optional YAML config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Media Server:
//     - MediaServer: Jellyfin or Emby connection (URL, API key, timeouts)
//     - Poll: Snapshot polling cadence and per-cycle deadline
//
//  2. Infrastructure:
//     - Server: HTTP server configuration (port, host, timeout, environment)
//     - NATS: Playback event fan-out with Watermill/NATS JetStream (optional)
//     - Cache: BadgerDB snapshot cache for warm restarts (optional)
//
//  3. API & Security:
//     - Security: Authentication, rate limiting, CORS
//
//  4. Observability:
//     - Logging: Log levels and output formats
//
// Example - Load configuration from environment:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	// cfg.MediaServer.URL, cfg.Poll.Interval, etc. are now populated
//
// Validation:
// Load() validates all required fields and returns an error if:
//   - Required settings are missing (MEDIA_SERVER_URL, MEDIA_SERVER_API_KEY)
//   - Values are malformed (invalid URL format, out-of-range intervals)
//   - Authentication is enabled but credentials are incomplete
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from
// multiple goroutines.
type Config struct {
	MediaServer MediaServerConfig `koanf:"media_server"`
	Poll        PollConfig        `koanf:"poll"`
	Server      ServerConfig      `koanf:"server"`
	NATS        NATSConfig        `koanf:"nats"`  // Optional: playback event fan-out via Watermill/NATS JetStream
	Cache       CacheConfig       `koanf:"cache"` // Optional: BadgerDB snapshot cache for warm restarts
	Security    SecurityConfig    `koanf:"security"`
	Logging     LoggingConfig     `koanf:"logging"`
}

// Supported media server backends.
const (
	BackendJellyfin = "jellyfin"
	BackendEmby     = "emby"
)

// MediaServerConfig holds the upstream Jellyfin or Emby connection settings.
// Both backends speak the same Emby-derived REST dialect, so a single config
// section covers either; Backend selects minor behavioral differences
// (timestamp formats, client identification).
//
// Environment Variables:
//   - MEDIA_SERVER_BACKEND: "jellyfin" or "emby" (default: jellyfin)
//   - MEDIA_SERVER_URL: Server URL (e.g., http://localhost:8096)
//   - MEDIA_SERVER_API_KEY: API key from Admin Dashboard > API Keys
//   - MEDIA_SERVER_USER_ID: Optional user ID for user-scoped API keys
//   - MEDIA_SERVER_VERIFY_TLS: Verify TLS certificates (default: true)
//   - MEDIA_SERVER_TIMEOUT: Per-request HTTP timeout (default: 15s)
//   - MEDIA_SERVER_RATE_LIMIT: Max requests per second, 0 = unlimited (default: 0)
//
// JELLYFIN_URL/JELLYFIN_API_KEY and EMBY_URL/EMBY_API_KEY are accepted as
// aliases for the URL and API key to keep docker-compose files readable.
//
// Example - Basic Jellyfin connection:
//
//	cfg := MediaServerConfig{
//	    Backend: "jellyfin",
//	    URL:     "http://localhost:8096",
//	    APIKey:  "your-api-key",
//	}
type MediaServerConfig struct {
	Backend   string        `koanf:"backend"`    // "jellyfin" or "emby"
	URL       string        `koanf:"url"`        // Server URL (http://localhost:8096)
	APIKey    string        `koanf:"api_key"`    // API key for authentication
	UserID    string        `koanf:"user_id"`    // Optional: user ID for user-scoped API keys
	VerifyTLS bool          `koanf:"verify_tls"` // Verify TLS certificates (disable only for self-signed homelab certs)
	Timeout   time.Duration `koanf:"timeout"`    // Per-request HTTP timeout

	// RateLimit caps outgoing requests per second to avoid hammering
	// low-power servers (Raspberry Pi deployments). 0 disables the limiter.
	RateLimit float64 `koanf:"rate_limit"`

	// Client identification reported in the Authorization header.
	// Shows up in the server's device list and activity log.
	ClientName    string `koanf:"client_name"`
	DeviceName    string `koanf:"device_name"`
	DeviceID      string `koanf:"device_id"` // Auto-generated if empty
	ClientVersion string `koanf:"client_version"`
}

// PollConfig holds snapshot polling settings.
//
// Environment Variables:
//   - POLL_INTERVAL: Time between poll cycles (default: 2s, floor: 1s)
//   - POLL_TIMEOUT: Deadline for a full poll cycle (default: 10s)
//   - POLL_UPCOMING_LIMIT: Max upcoming episodes to fetch (default: 50)
//   - POLL_LATEST_LIMIT: Max recently-added items per category (default: 30)
type PollConfig struct {
	// Interval is the time between poll cycles. Values below 1s are raised
	// to 1s at load time to protect the upstream server.
	Interval time.Duration `koanf:"interval"`

	// Timeout is the deadline for one full poll cycle (all sub-fetches).
	// A cycle that exceeds it fails as a whole and the previous snapshot
	// is kept.
	Timeout time.Duration `koanf:"timeout"`

	// UpcomingLimit is the maximum number of upcoming episodes fetched per cycle.
	UpcomingLimit int `koanf:"upcoming_limit"`

	// LatestLimit is the maximum number of recently-added items fetched per
	// category (movies, episodes, music) per cycle.
	LatestLimit int `koanf:"latest_limit"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // Environment mode: "development", "staging", "production" (default: "development")
}

// SecurityConfig holds authentication and authorization settings.
//
// Environment Variables:
//   - AUTH_MODE: none, basic, jwt, apikey (default: none)
//   - JWT_SECRET: Signing secret, 32+ chars (required for jwt mode)
//   - SESSION_TIMEOUT: JWT token lifetime (default: 24h)
//   - ADMIN_USERNAME / ADMIN_PASSWORD: Credentials for basic and jwt modes
//   - AUTH_API_KEY: Static bearer token for apikey mode (home automation platforms)
//   - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: Request rate limiting
//   - DISABLE_RATE_LIMIT: Disable rate limiting entirely (default: false)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - TRUSTED_PROXIES: Comma-separated CIDRs whose X-Forwarded-For is trusted
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	APIKey            string        `koanf:"api_key"` // Static token for apikey mode
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// NATSConfig holds NATS JetStream configuration for playback event fan-out.
// When enabled, session transitions observed by the poll coordinator
// (started, stopped, paused, resumed) are published as events through a
// Watermill router so downstream consumers (WebSocket broadcast, automation
// hooks) get reliable delivery with retries and a poison queue.
//
// Environment Variables:
//   - NATS_ENABLED: Enable event fan-out (default: false)
//   - NATS_URL: NATS server connection URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: Use embedded NATS server (default: true)
//   - NATS_STORE_DIR: JetStream storage directory (default: /data/jellybridge/nats)
//   - NATS_MAX_MEMORY: Max memory for JetStream in bytes (default: 268435456 = 256MB)
//   - NATS_MAX_STORE: Max disk storage for JetStream in bytes (default: 2147483648 = 2GB)
//   - NATS_RETENTION_DAYS: Event retention period in days (default: 7)
//   - NATS_SUBSCRIBERS: Number of concurrent message processors (default: 2)
//   - NATS_DURABLE_NAME: Consumer durable name (default: jellybridge-events)
//   - NATS_QUEUE_GROUP: Queue group for load balancing (default: bridge)
type NATSConfig struct {
	// Enabled controls whether event fan-out is active.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer enables the embedded NATS server.
	// If false, expects an external NATS server at URL.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory.
	StoreDir string `koanf:"store_dir"`

	// MaxMemory is the maximum memory for JetStream in bytes.
	MaxMemory int64 `koanf:"max_memory"`

	// MaxStore is the maximum disk storage for JetStream in bytes.
	MaxStore int64 `koanf:"max_store"`

	// StreamRetentionDays is how long to keep events.
	StreamRetentionDays int `koanf:"stream_retention_days"`

	// SubscribersCount is the number of concurrent message processors.
	SubscribersCount int `koanf:"subscribers_count"`

	// DurableName is the consumer durable name for message tracking.
	DurableName string `koanf:"durable_name"`

	// QueueGroup is the queue group for load balancing.
	QueueGroup string `koanf:"queue_group"`

	// Router configuration (Watermill Router-based message processing)
	// These settings control the middleware stack for message handling.

	// RouterRetryCount is the maximum number of retries for failed messages.
	// Default: 3
	RouterRetryCount int `koanf:"router_retry_count"`

	// RouterRetryInitialInterval is the initial backoff interval for retries.
	// Default: 100ms
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`

	// RouterThrottlePerSecond limits messages processed per second (0 = unlimited).
	// Default: 0 (unlimited)
	RouterThrottlePerSecond int `koanf:"router_throttle_per_second"`

	// RouterDeduplicationEnabled enables message ID deduplication in the Router.
	// Default: false
	RouterDeduplicationEnabled bool `koanf:"router_deduplication_enabled"`

	// RouterDeduplicationTTL is how long to remember message IDs for deduplication.
	// Default: 5m
	RouterDeduplicationTTL time.Duration `koanf:"router_deduplication_ttl"`

	// RouterPoisonQueueEnabled enables routing of permanently failed messages
	// to a poison queue.
	// Default: true
	RouterPoisonQueueEnabled bool `koanf:"router_poison_queue_enabled"`

	// RouterPoisonQueueTopic is the topic for permanently failed messages.
	// Default: "playback.poison"
	RouterPoisonQueueTopic string `koanf:"router_poison_queue_topic"`

	// RouterCloseTimeout is the maximum time to wait for graceful router shutdown.
	// Default: 30s
	RouterCloseTimeout time.Duration `koanf:"router_close_timeout"`
}

// CacheConfig holds BadgerDB snapshot cache settings. The cache persists the
// last good snapshot so a restart serves data immediately instead of waiting
// for the first poll cycle against a possibly unreachable server.
//
// Environment Variables:
//   - CACHE_ENABLED: Enable the snapshot cache (default: true)
//   - CACHE_PATH: BadgerDB directory (default: /data/jellybridge/cache)
//   - CACHE_GC_INTERVAL: Value log garbage collection interval (default: 5m)
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Path       string        `koanf:"path"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// IsJellyfin reports whether the configured backend is Jellyfin.
func (c *Config) IsJellyfin() bool {
	return c.MediaServer.Backend == BackendJellyfin
}

// IsEmby reports whether the configured backend is Emby.
func (c *Config) IsEmby() bool {
	return c.MediaServer.Backend == BackendEmby
}

// ResolvedDeviceID returns the configured device ID, or a deterministic one
// derived from the server URL when unset. Stable across restarts so the
// bridge shows up as a single device in the server's device list.
func (m *MediaServerConfig) ResolvedDeviceID() string {
	if m.DeviceID != "" {
		return m.DeviceID
	}
	return generateDeviceID(m.Backend, m.URL)
}

// generateDeviceID creates a deterministic device ID from backend and URL.
func generateDeviceID(backend, url string) string {
	if url == "" {
		return backend + "-default"
	}

	// Simple hash of URL for a deterministic ID
	hash := uint32(0)
	for _, c := range url {
		hash = hash*31 + uint32(c)
	}

	return fmt.Sprintf("%s-%08x", backend, hash)
}

// Load reads configuration from environment variables and optional config file.
// Configuration is loaded in the following order (later sources override earlier ones):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// This function uses Koanf v2 for flexible, layered configuration management.
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
