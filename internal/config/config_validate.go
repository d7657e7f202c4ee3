// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateMediaServer(); err != nil {
		return err
	}

	if err := c.validatePoll(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validBackends defines the supported media server backends.
var validBackends = map[string]bool{
	BackendJellyfin: true,
	BackendEmby:     true,
}

// validateMediaServer validates the upstream server connection settings.
func (c *Config) validateMediaServer() error {
	if !validBackends[c.MediaServer.Backend] {
		return fmt.Errorf("MEDIA_SERVER_BACKEND must be one of: jellyfin, emby")
	}

	if err := c.validateMediaServerURL(); err != nil {
		return err
	}
	if err := c.validateMediaServerAPIKey(); err != nil {
		return err
	}
	if err := c.validateMediaServerTimeout(); err != nil {
		return err
	}
	return c.validateMediaServerRateLimit()
}

// validateMediaServerURL validates the upstream server URL.
func (c *Config) validateMediaServerURL() error {
	if c.MediaServer.URL == "" {
		return fmt.Errorf("MEDIA_SERVER_URL is required")
	}
	if err := validateHTTPURL(c.MediaServer.URL, "MEDIA_SERVER_URL"); err != nil {
		return fmt.Errorf("MEDIA_SERVER_URL is invalid: %w", err)
	}
	return nil
}

// validateMediaServerAPIKey validates the upstream server API key.
func (c *Config) validateMediaServerAPIKey() error {
	if c.MediaServer.APIKey == "" {
		return fmt.Errorf("MEDIA_SERVER_API_KEY is required")
	}
	return nil
}

// Media server request limits
const (
	minRequestTimeout = time.Second
	maxRequestTimeout = 5 * time.Minute
	maxRateLimit      = 1000.0
)

// validateMediaServerTimeout validates the per-request timeout.
func (c *Config) validateMediaServerTimeout() error {
	if c.MediaServer.Timeout < minRequestTimeout || c.MediaServer.Timeout > maxRequestTimeout {
		return fmt.Errorf("MEDIA_SERVER_TIMEOUT must be between %v and %v", minRequestTimeout, maxRequestTimeout)
	}
	return nil
}

// validateMediaServerRateLimit validates the outgoing request rate limit.
func (c *Config) validateMediaServerRateLimit() error {
	if c.MediaServer.RateLimit < 0 || c.MediaServer.RateLimit > maxRateLimit {
		return fmt.Errorf("MEDIA_SERVER_RATE_LIMIT must be between 0 and %v requests/second", maxRateLimit)
	}
	return nil
}

// Poll limits
const (
	// MinPollInterval is the floor for the poll interval. Intervals below it
	// are raised silently rather than rejected, so aggressive values from
	// old configs keep working.
	MinPollInterval = time.Second

	maxPollInterval = time.Hour
	minPollTimeout  = time.Second
	maxPollTimeout  = 5 * time.Minute
	maxFetchLimit   = 500
)

// validatePoll validates poll cadence settings. The interval floor is
// enforced by clamping in applyPollFloor, not here, so only the upper
// bound is rejected.
func (c *Config) validatePoll() error {
	if c.Poll.Interval > maxPollInterval {
		return fmt.Errorf("POLL_INTERVAL must not exceed %v", maxPollInterval)
	}

	if c.Poll.Timeout < minPollTimeout || c.Poll.Timeout > maxPollTimeout {
		return fmt.Errorf("POLL_TIMEOUT must be between %v and %v", minPollTimeout, maxPollTimeout)
	}

	if c.Poll.UpcomingLimit < 0 || c.Poll.UpcomingLimit > maxFetchLimit {
		return fmt.Errorf("POLL_UPCOMING_LIMIT must be between 0 and %d", maxFetchLimit)
	}

	if c.Poll.LatestLimit < 0 || c.Poll.LatestLimit > maxFetchLimit {
		return fmt.Errorf("POLL_LATEST_LIMIT must be between 0 and %d", maxFetchLimit)
	}

	return nil
}

// applyPollFloor raises sub-second poll intervals to the floor.
func (c *Config) applyPollFloor() {
	if c.Poll.Interval < MinPollInterval {
		c.Poll.Interval = MinPollInterval
	}
}

// validateNATS validates NATS configuration (only if enabled).
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}

	return c.validateNATSLimits()
}

// NATS limit constants
const (
	natsMinMemory      = 64 * 1024 * 1024  // 64MB
	natsMinStore       = 100 * 1024 * 1024 // 100MB
	natsMaxRetention   = 365
	natsMinRetention   = 1
	natsMaxSubscribers = 32
)

// validateNATSLimits validates NATS storage and processing limits.
func (c *Config) validateNATSLimits() error {
	validators := []func() error{
		c.validateNATSMemory,
		c.validateNATSStore,
		c.validateNATSRetention,
		c.validateNATSSubscribers,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateNATSMemory validates the NATS max memory setting.
func (c *Config) validateNATSMemory() error {
	if c.NATS.MaxMemory < natsMinMemory {
		return fmt.Errorf("NATS_MAX_MEMORY must be at least 64MB (67108864 bytes)")
	}
	return nil
}

// validateNATSStore validates the NATS max store setting.
func (c *Config) validateNATSStore() error {
	if c.NATS.MaxStore < natsMinStore {
		return fmt.Errorf("NATS_MAX_STORE must be at least 100MB (104857600 bytes)")
	}
	return nil
}

// validateNATSRetention validates the NATS stream retention days.
func (c *Config) validateNATSRetention() error {
	if c.NATS.StreamRetentionDays < natsMinRetention || c.NATS.StreamRetentionDays > natsMaxRetention {
		return fmt.Errorf("NATS_RETENTION_DAYS must be between 1 and 365")
	}
	return nil
}

// validateNATSSubscribers validates the NATS subscribers count.
func (c *Config) validateNATSSubscribers() error {
	if c.NATS.SubscribersCount < 1 || c.NATS.SubscribersCount > natsMaxSubscribers {
		return fmt.Errorf("NATS_SUBSCRIBERS must be between 1 and 32")
	}
	return nil
}

// validateCache validates snapshot cache configuration (only if enabled).
func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}

	if c.Cache.Path == "" {
		return fmt.Errorf("CACHE_PATH is required when CACHE_ENABLED=true")
	}

	if c.Cache.GCInterval < time.Minute || c.Cache.GCInterval > 24*time.Hour {
		return fmt.Errorf("CACHE_GC_INTERVAL must be between 1m and 24h")
	}

	return nil
}

// validateServer validates server configuration.
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

// validateSecurity validates security configuration.
func (c *Config) validateSecurity() error {
	if err := c.validateAuthMode(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	return c.validateAuthModeConfig()
}

// validateAuthModeConfig validates configuration for the selected auth mode.
func (c *Config) validateAuthModeConfig() error {
	validators := map[string]func() error{
		"jwt":    c.validateJWTAuth,
		"basic":  c.validateBasicAuth,
		"apikey": c.validateAPIKeyAuth,
	}

	validator, exists := validators[c.Security.AuthMode]
	if !exists {
		return nil // "none" mode has no additional validation
	}

	return validator()
}

// validateCORS validates CORS configuration. In production mode with
// authentication enabled, wildcard CORS is rejected: any origin could then
// access protected resources using stolen credentials.
func (c *Config) validateCORS() error {
	if c.Security.AuthMode != "none" && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with authentication enabled. " +
			"Either set specific origins: CORS_ORIGINS=https://automation.local,https://dashboard.local " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

// hasWildcardCORS checks if CORS is configured with wildcard origins.
func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration has security
// concerns that should be logged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthMode != "none" && c.hasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if err := c.validateRateLimitRequests(); err != nil {
		return err
	}
	return c.validateRateLimitWindow()
}

// validateRateLimitRequests validates the rate limit requests value.
func (c *Config) validateRateLimitRequests() error {
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	return nil
}

// validateRateLimitWindow validates the rate limit window value.
func (c *Config) validateRateLimitWindow() error {
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validAuthModes defines the allowed authentication modes.
var validAuthModes = map[string]bool{
	"none":   true,
	"jwt":    true,
	"basic":  true,
	"apikey": true,
}

// validateAuthMode checks if auth mode is valid.
func (c *Config) validateAuthMode() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt, basic, apikey")
	}

	return c.validateAuthModeForEnvironment()
}

// validateAuthModeForEnvironment ensures AUTH_MODE is appropriate for the
// environment. Refusing AUTH_MODE=none in production prevents accidental
// deployment of an unauthenticated control surface.
func (c *Config) validateAuthModeForEnvironment() error {
	if c.Security.AuthMode == "none" && c.IsProduction() {
		return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production. " +
			"Either set AUTH_MODE to a secure option (jwt, basic, apikey) " +
			"or use ENVIRONMENT=development for testing purposes")
	}

	return nil
}

// IsProduction returns true if the application is running in production mode.
// Production mode is determined by the ENVIRONMENT environment variable.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

// validateJWTAuth validates JWT authentication configuration.
func (c *Config) validateJWTAuth() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	return c.validateAdminCredentials("jwt")
}

// validateJWTSecret validates the JWT secret configuration.
func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters for security")
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateBasicAuth validates Basic authentication configuration.
func (c *Config) validateBasicAuth() error {
	return c.validateAdminCredentials("basic")
}

// validateAPIKeyAuth validates API key authentication configuration.
func (c *Config) validateAPIKeyAuth() error {
	if c.Security.APIKey == "" {
		return fmt.Errorf("AUTH_API_KEY is required when AUTH_MODE is apikey")
	}
	if len(c.Security.APIKey) < 16 {
		return fmt.Errorf("AUTH_API_KEY must be at least 16 characters for security")
	}
	if containsPlaceholder(c.Security.APIKey) {
		return fmt.Errorf("AUTH_API_KEY contains a placeholder value - generate a secure token with: openssl rand -hex 32")
	}
	return nil
}

// validateAdminCredentials validates admin username and password.
func (c *Config) validateAdminCredentials(authMode string) error {
	if err := c.validateAdminUsername(authMode); err != nil {
		return err
	}
	return c.validateAdminPassword(authMode)
}

// validateAdminUsername validates the admin username configuration.
func (c *Config) validateAdminUsername(authMode string) error {
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE is %s", authMode)
	}
	return nil
}

// validateAdminPassword validates the admin password configuration.
func (c *Config) validateAdminPassword(authMode string) error {
	if c.Security.AdminPassword == "" {
		return fmt.Errorf("ADMIN_PASSWORD is required when AUTH_MODE is %s", authMode)
	}
	if containsPlaceholder(c.Security.AdminPassword) {
		return fmt.Errorf("ADMIN_PASSWORD contains a placeholder value - set a secure password")
	}
	if err := c.validatePasswordPolicy(c.Security.AdminPassword, c.Security.AdminUsername); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD: %w", err)
	}
	return nil
}

// validatePasswordPolicy validates a password against the configured password policy.
func (c *Config) validatePasswordPolicy(password, username string) error {
	policy := DefaultPasswordPolicy()
	return policy.ValidateWithError(password, username)
}

// validLogLevels defines the allowed log levels.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats.
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration.
func (c *Config) validateLogging() error {
	if err := c.validateLogLevel(); err != nil {
		return err
	}
	return c.validateLogFormat()
}

// validateLogLevel validates the log level configuration.
func (c *Config) validateLogLevel() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	return nil
}

// validateLogFormat validates the log format configuration.
func (c *Config) validateLogFormat() error {
	if c.Logging.Format == "" {
		return nil
	}
	if !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_PASSWORD",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"XXX",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
// that indicate the user forgot to set a real value. This prevents accidental
// deployment with insecure default credentials.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	return containsAnyPattern(upperValue, placeholderPatterns)
}

// containsAnyPattern checks if a string contains any of the provided patterns.
func containsAnyPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
