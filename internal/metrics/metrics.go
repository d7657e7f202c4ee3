// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides comprehensive instrumentation for:
// - Poll cycle timing and failure classification
// - Media server (Jellyfin/Emby) request performance
// - Session, playback, and library state
// - Remote command execution
// - Cache efficiency and WebSocket connections

var (
	// Poll Cycle Metrics
	PollCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_cycles_total",
			Help: "Total number of poll cycles by result",
		},
		[]string{"result"}, // "success", "failure"
	)

	PollCycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poll_cycle_duration_seconds",
			Help:    "Duration of full poll cycles in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Cycles are capped by the poll timeout
		},
	)

	PollCyclesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poll_cycles_skipped_total",
			Help: "Total number of refresh requests coalesced because a refresh was already pending",
		},
	)

	PollFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_fetch_errors_total",
			Help: "Total number of failed sub-fetches during poll cycles",
		},
		[]string{"endpoint"}, // "sessions", "system_info", "library", "users", "upcoming", "latest"
	)

	PollLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poll_last_success_timestamp",
			Help: "Unix timestamp of the last successful poll cycle",
		},
	)

	RefreshRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refresh_requests_total",
			Help: "Total number of refresh requests by trigger",
		},
		[]string{"trigger"}, // "interval", "api", "command_nudge", "startup"
	)

	// Media Server Client Metrics
	ServerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_server_requests_total",
			Help: "Total number of media server API requests",
		},
		[]string{"endpoint", "status"},
	)

	ServerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_server_request_duration_seconds",
			Help:    "Duration of media server API requests in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"endpoint"},
	)

	// Session and Playback Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Current number of sessions with an item playing or paused",
		},
	)

	SessionsPlaying = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_playing",
			Help: "Current number of sessions actively playing",
		},
	)

	SessionsPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_paused",
			Help: "Current number of paused sessions",
		},
	)

	PlaybackEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playback_events_total",
			Help: "Total number of playback state transitions observed",
		},
		[]string{"event"}, // "started", "stopped", "paused", "resumed"
	)

	// Library Metrics
	LibraryItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "library_items",
			Help: "Current number of library items by kind",
		},
		[]string{"kind"}, // "movies", "series", "episodes", "songs"
	)

	// Command Metrics
	CommandsExecuted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commands_executed_total",
			Help: "Total number of remote commands sent to the media server",
		},
		[]string{"command", "result"}, // result: "success", "failure"
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of remote command requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}, // Optimized for API latency
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Snapshot Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "snapshot"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_writes_total",
			Help: "Total number of cache writes",
		},
		[]string{"cache_type"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_errors_total",
			Help: "Total number of cache read or write errors",
		},
		[]string{"cache_type", "operation"}, // operation: "read", "write", "gc"
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_dropped_total",
			Help: "Total number of WebSocket messages dropped due to slow clients",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// NATS Event Processing Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_consumed_total",
			Help: "Total number of messages consumed from NATS",
		},
	)

	NATSMessagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_processed_total",
			Help: "Total number of messages successfully processed",
		},
	)

	NATSMessagesDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_deduplicated_total",
			Help: "Total number of messages skipped due to deduplication",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_parse_failed_total",
			Help: "Total number of messages that failed to parse",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nats_processing_duration_seconds",
			Help:    "Duration of NATS message processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version", "backend"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordPollCycle records the outcome of a full poll cycle
func RecordPollCycle(duration time.Duration, err error) {
	PollCycleDuration.Observe(duration.Seconds())
	if err != nil {
		PollCycles.WithLabelValues("failure").Inc()
	} else {
		PollCycles.WithLabelValues("success").Inc()
		PollLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordPollSkipped records a poll tick skipped due to an in-flight cycle
func RecordPollSkipped() {
	PollCyclesSkipped.Inc()
}

// RecordFetchError records a failed sub-fetch by endpoint group
func RecordFetchError(endpoint string) {
	PollFetchErrors.WithLabelValues(endpoint).Inc()
}

// RecordRefresh records a refresh request and its trigger
func RecordRefresh(trigger string) {
	RefreshRequests.WithLabelValues(trigger).Inc()
}

// RecordServerRequest records a media server API request metric
func RecordServerRequest(endpoint, status string, duration time.Duration) {
	ServerRequests.WithLabelValues(endpoint, status).Inc()
	ServerRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// UpdateSessionGauges updates the session state gauges from a snapshot
func UpdateSessionGauges(active, playing, paused int) {
	SessionsActive.Set(float64(active))
	SessionsPlaying.Set(float64(playing))
	SessionsPaused.Set(float64(paused))
}

// UpdateLibraryCounts updates the library item gauges from a snapshot
func UpdateLibraryCounts(movies, series, episodes, songs int) {
	LibraryItems.WithLabelValues("movies").Set(float64(movies))
	LibraryItems.WithLabelValues("series").Set(float64(series))
	LibraryItems.WithLabelValues("episodes").Set(float64(episodes))
	LibraryItems.WithLabelValues("songs").Set(float64(songs))
}

// RecordPlaybackEvent records a playback state transition
func RecordPlaybackEvent(event string) {
	PlaybackEvents.WithLabelValues(event).Inc()
}

// RecordCommand records a remote command execution and its outcome
func RecordCommand(command string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	CommandsExecuted.WithLabelValues(command, result).Inc()
	CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordCacheHit records a cache hit for the given cache type
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss for the given cache type
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordCacheWrite records a cache write for the given cache type
func RecordCacheWrite(cacheType string) {
	CacheWrites.WithLabelValues(cacheType).Inc()
}

// RecordCacheError records a cache operation error
func RecordCacheError(cacheType, operation string) {
	CacheErrors.WithLabelValues(cacheType, operation).Inc()
}

// RecordWSMessageSent records a WebSocket message sent to a client
func RecordWSMessageSent() {
	WSMessagesSent.Inc()
}

// RecordWSMessageDropped records a WebSocket message dropped for a slow client
func RecordWSMessageDropped() {
	WSMessagesDropped.Inc()
}

// RecordNATSPublish records a message being published to NATS
func RecordNATSPublish() {
	NATSMessagesPublished.Inc()
}

// RecordNATSConsume records a message being consumed from NATS
func RecordNATSConsume() {
	NATSMessagesConsumed.Inc()
}

// RecordNATSProcessed records a message being successfully processed
func RecordNATSProcessed() {
	NATSMessagesProcessed.Inc()
}

// RecordNATSDeduplicated records a message being skipped due to deduplication
func RecordNATSDeduplicated() {
	NATSMessagesDeduplicated.Inc()
}

// RecordNATSParseFailed records a message that failed to parse
func RecordNATSParseFailed() {
	NATSMessagesParseFailed.Inc()
}

// RecordNATSProcessingDuration records the duration of message processing
func RecordNATSProcessingDuration(duration time.Duration) {
	NATSProcessingDuration.Observe(duration.Seconds())
}
