// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements comprehensive application instrumentation using the Prometheus
client library, exposing metrics for monitoring poll health, media server performance,
playback activity, and system health.

# Overview

The package provides metrics for:
  - Poll cycle timing, success rate, and failure classification
  - Media server (Jellyfin/Emby) API request latency and status codes
  - Active, playing, and paused session counts
  - Library item counts by kind
  - Remote command execution outcomes
  - HTTP API request latency and throughput
  - Snapshot cache efficiency
  - WebSocket connection counts
  - Circuit breaker state transitions
  - NATS event processing

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8790/metrics

# Available Metrics

Poll Metrics:
  - poll_cycles_total: Poll cycles by result (counter)
    Labels: result (success, failure)
  - poll_cycle_duration_seconds: Full cycle latency (histogram)
    Buckets: .05, .1, .25, .5, 1, 2.5, 5, 10
  - poll_cycles_skipped_total: Refresh requests coalesced into a pending one (counter)
  - poll_fetch_errors_total: Failed sub-fetches (counter)
    Labels: endpoint (sessions, system_info, library, upcoming, latest)
  - poll_last_success_timestamp: Unix timestamp of last good cycle (gauge)
  - refresh_requests_total: Refresh requests by trigger (counter)
    Labels: trigger (interval, api, command_nudge, startup)

Media Server Metrics:
  - media_server_requests_total: Upstream API requests (counter)
    Labels: endpoint, status
  - media_server_request_duration_seconds: Upstream latency (histogram)
    Labels: endpoint

Session and Playback Metrics:
  - sessions_active: Sessions with an item playing or paused (gauge)
  - sessions_playing: Sessions actively playing (gauge)
  - sessions_paused: Paused sessions (gauge)
  - playback_events_total: Playback state transitions (counter)
    Labels: event (started, stopped, paused, resumed)

Library Metrics:
  - library_items: Library item counts (gauge)
    Labels: kind (movies, series, episodes, songs)

Command Metrics:
  - commands_executed_total: Remote commands sent upstream (counter)
    Labels: command, result
  - command_duration_seconds: Command request latency (histogram)
    Labels: command

HTTP API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Active requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Cache Metrics:
  - cache_hits_total, cache_misses_total, cache_writes_total (counters)
    Labels: cache_type
  - cache_errors_total: Cache operation failures (counter)
    Labels: cache_type, operation (read, write, gc)

WebSocket Metrics:
  - websocket_connections: Active connections (gauge)
  - websocket_messages_sent_total: Messages sent (counter)
  - websocket_messages_dropped_total: Messages dropped for slow clients (counter)
  - websocket_errors_total: Errors by type (counter)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests through the breaker (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures: Consecutive failures (gauge)
    Labels: name
  - circuit_breaker_state_transitions_total: Transitions (counter)
    Labels: name, from_state, to_state

NATS Metrics:
  - nats_messages_published_total, nats_messages_consumed_total,
    nats_messages_processed_total, nats_messages_deduplicated_total,
    nats_messages_parse_failed_total (counters)
  - nats_processing_duration_seconds: Processing latency (histogram)

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/jellybridge/jellybridge/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    // Register metrics endpoint
	    http.Handle("/metrics", promhttp.Handler())

	    // Record metrics
	    metrics.RecordPollCycle(cycleDuration, err)
	    metrics.RecordServerRequest("sessions", "200", 15*time.Millisecond)
	    metrics.UpdateSessionGauges(5, 3, 2)
	}

Recording poll metrics from the coordinator:

	func (c *Coordinator) runCycle(ctx context.Context) {
	    start := time.Now()
	    snap, err := c.fetchAll(ctx)
	    metrics.RecordPollCycle(time.Since(start), err)
	    if err != nil {
	        return
	    }
	    metrics.UpdateSessionGauges(snap.SessionCount(), snap.PlayingCount(), snap.PausedCount())
	}

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'jellybridge'
	    static_configs:
	      - targets: ['localhost:8790']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

Example PromQL queries:

	# Poll success rate over 5 minutes
	sum(rate(poll_cycles_total{result="success"}[5m])) / sum(rate(poll_cycles_total[5m]))

	# Poll p95 latency
	histogram_quantile(0.95, rate(poll_cycle_duration_seconds_bucket[5m]))

	# Seconds since last good poll
	time() - poll_last_success_timestamp

	# Upstream error rate by endpoint
	rate(media_server_requests_total{status!~"2.."}[5m])

	# Cache hit rate
	sum(rate(cache_hits_total[5m])) / (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

# Alerting Rules

Example Prometheus alerting rules:

	groups:
	  - name: jellybridge
	    rules:
	      - alert: PollStale
	        expr: time() - poll_last_success_timestamp > 60
	        for: 2m
	        annotations:
	          summary: "No successful poll for {{ $value }}s"

	      - alert: CircuitBreakerOpen
	        expr: circuit_breaker_state == 2
	        for: 2m
	        annotations:
	          summary: "Circuit breaker open for {{ $labels.name }}"

	      - alert: HighAPIErrorRate
	        expr: |
	          sum(rate(api_requests_total{status_code=~"5.."}[5m]))
	          /
	          sum(rate(api_requests_total[5m]))
	          > 0.05
	        for: 5m
	        annotations:
	          summary: "High API error rate: {{ $value }}%"

# Thread Safety

All metric recording functions are thread-safe and designed for concurrent use
from multiple goroutines. The Prometheus client library handles synchronization
internally.

# Cardinality Management

To prevent high cardinality issues:

  - API endpoint labels use route patterns, not raw paths
  - Media server endpoint labels are fixed endpoint groups, not URLs
  - Command labels are limited to the known command set
  - Session and user identifiers are never used as labels

# See Also

  - internal/api: HTTP middleware with metrics integration
  - internal/media: Poll cycle and upstream request metrics recording
  - internal/statecache: Snapshot cache metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
  - https://prometheus.io/docs/practices/instrumentation/: Instrumentation guide
*/
package metrics
