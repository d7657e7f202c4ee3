// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

// getCounterValue extracts the value from a Prometheus counter
func getCounterValue(counter prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := counter.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// getGaugeValue extracts the value from a Prometheus gauge
func getGaugeValue(gauge prometheus.Gauge) float64 {
	var m io_prometheus_client.Metric
	if err := gauge.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func TestRecordPollCycle(t *testing.T) {
	t.Run("successful cycle increments success counter", func(t *testing.T) {
		before := getCounterValue(PollCycles.WithLabelValues("success"))

		RecordPollCycle(150*time.Millisecond, nil)

		after := getCounterValue(PollCycles.WithLabelValues("success"))
		if after != before+1 {
			t.Errorf("expected success count to increase by 1, got %f -> %f", before, after)
		}
	})

	t.Run("successful cycle updates last success timestamp", func(t *testing.T) {
		RecordPollCycle(150*time.Millisecond, nil)

		ts := getGaugeValue(PollLastSuccess)
		now := float64(time.Now().Unix())
		if ts < now-60 || ts > now+1 {
			t.Errorf("expected last success near %f, got %f", now, ts)
		}
	})

	t.Run("failed cycle increments failure counter", func(t *testing.T) {
		before := getCounterValue(PollCycles.WithLabelValues("failure"))

		RecordPollCycle(2*time.Second, errors.New("sessions fetch failed"))

		after := getCounterValue(PollCycles.WithLabelValues("failure"))
		if after != before+1 {
			t.Errorf("expected failure count to increase by 1, got %f -> %f", before, after)
		}
	})

	t.Run("failed cycle does not update last success timestamp", func(t *testing.T) {
		before := getGaugeValue(PollLastSuccess)

		RecordPollCycle(time.Second, errors.New("remote unavailable"))

		after := getGaugeValue(PollLastSuccess)
		if after != before {
			t.Errorf("expected last success unchanged, got %f -> %f", before, after)
		}
	})
}

func TestRecordPollSkipped(t *testing.T) {
	before := getCounterValue(PollCyclesSkipped)
	RecordPollSkipped()
	after := getCounterValue(PollCyclesSkipped)

	if after != before+1 {
		t.Errorf("expected skipped count to increase by 1, got %f -> %f", before, after)
	}
}

func TestRecordFetchError(t *testing.T) {
	endpoints := []string{"sessions", "system_info", "library", "upcoming", "latest"}

	for _, endpoint := range endpoints {
		t.Run("endpoint_"+endpoint, func(t *testing.T) {
			before := getCounterValue(PollFetchErrors.WithLabelValues(endpoint))
			RecordFetchError(endpoint)
			after := getCounterValue(PollFetchErrors.WithLabelValues(endpoint))

			if after != before+1 {
				t.Errorf("expected fetch errors for %s to increase by 1, got %f -> %f", endpoint, before, after)
			}
		})
	}
}

func TestRecordRefresh(t *testing.T) {
	triggers := []string{"interval", "api", "command_nudge", "startup"}

	for _, trigger := range triggers {
		t.Run("trigger_"+trigger, func(t *testing.T) {
			before := getCounterValue(RefreshRequests.WithLabelValues(trigger))
			RecordRefresh(trigger)
			after := getCounterValue(RefreshRequests.WithLabelValues(trigger))

			if after != before+1 {
				t.Errorf("expected refresh count for %s to increase by 1, got %f -> %f", trigger, before, after)
			}
		})
	}
}

// TestRecordServerRequest tests media server request metric recording
func TestRecordServerRequest(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		status   string
		duration time.Duration
	}{
		{
			name:     "fast sessions fetch",
			endpoint: "sessions",
			status:   "200",
			duration: 15 * time.Millisecond,
		},
		{
			name:     "slow library count",
			endpoint: "items_count",
			status:   "200",
			duration: 800 * time.Millisecond,
		},
		{
			name:     "unauthorized request",
			endpoint: "system_info",
			status:   "401",
			duration: 5 * time.Millisecond,
		},
		{
			name:     "server error on command",
			endpoint: "playstate",
			status:   "500",
			duration: 50 * time.Millisecond,
		},
		{
			name:     "transport failure",
			endpoint: "sessions",
			status:   "error",
			duration: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := getCounterValue(ServerRequests.WithLabelValues(tt.endpoint, tt.status))

			RecordServerRequest(tt.endpoint, tt.status, tt.duration)

			after := getCounterValue(ServerRequests.WithLabelValues(tt.endpoint, tt.status))
			if after != before+1 {
				t.Errorf("expected request count to increase by 1, got %f -> %f", before, after)
			}
		})
	}
}

func TestUpdateSessionGauges(t *testing.T) {
	UpdateSessionGauges(5, 3, 2)

	if got := getGaugeValue(SessionsActive); got != 5 {
		t.Errorf("SessionsActive = %f, want 5", got)
	}
	if got := getGaugeValue(SessionsPlaying); got != 3 {
		t.Errorf("SessionsPlaying = %f, want 3", got)
	}
	if got := getGaugeValue(SessionsPaused); got != 2 {
		t.Errorf("SessionsPaused = %f, want 2", got)
	}

	// Gauges must track downward transitions too
	UpdateSessionGauges(0, 0, 0)

	if got := getGaugeValue(SessionsActive); got != 0 {
		t.Errorf("SessionsActive after reset = %f, want 0", got)
	}
}

func TestUpdateLibraryCounts(t *testing.T) {
	UpdateLibraryCounts(1200, 85, 4300, 9800)

	tests := []struct {
		kind string
		want float64
	}{
		{"movies", 1200},
		{"series", 85},
		{"episodes", 4300},
		{"songs", 9800},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			got := getGaugeValue(LibraryItems.WithLabelValues(tt.kind))
			if got != tt.want {
				t.Errorf("LibraryItems[%s] = %f, want %f", tt.kind, got, tt.want)
			}
		})
	}
}

func TestRecordPlaybackEvent(t *testing.T) {
	events := []string{"started", "stopped", "paused", "resumed"}

	for _, event := range events {
		t.Run("event_"+event, func(t *testing.T) {
			before := getCounterValue(PlaybackEvents.WithLabelValues(event))
			RecordPlaybackEvent(event)
			after := getCounterValue(PlaybackEvents.WithLabelValues(event))

			if after != before+1 {
				t.Errorf("expected event count for %s to increase by 1, got %f -> %f", event, before, after)
			}
		})
	}
}

// TestRecordCommand tests command execution metric recording
func TestRecordCommand(t *testing.T) {
	tests := []struct {
		name       string
		command    string
		duration   time.Duration
		err        error
		wantResult string
	}{
		{
			name:       "successful play pause",
			command:    "play_pause",
			duration:   30 * time.Millisecond,
			err:        nil,
			wantResult: "success",
		},
		{
			name:       "successful volume set",
			command:    "volume_set",
			duration:   25 * time.Millisecond,
			err:        nil,
			wantResult: "success",
		},
		{
			name:       "failed stop command",
			command:    "stop",
			duration:   15 * time.Second,
			err:        errors.New("context deadline exceeded"),
			wantResult: "failure",
		},
		{
			name:       "failed library rescan",
			command:    "rescan",
			duration:   100 * time.Millisecond,
			err:        errors.New("server returned status 503"),
			wantResult: "failure",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := getCounterValue(CommandsExecuted.WithLabelValues(tt.command, tt.wantResult))

			RecordCommand(tt.command, tt.duration, tt.err)

			after := getCounterValue(CommandsExecuted.WithLabelValues(tt.command, tt.wantResult))
			if after != before+1 {
				t.Errorf("expected %s/%s count to increase by 1, got %f -> %f", tt.command, tt.wantResult, before, after)
			}
		})
	}
}

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "successful snapshot fetch",
			method:     "GET",
			endpoint:   "/api/v1/snapshot",
			statusCode: "200",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "successful command post",
			method:     "POST",
			endpoint:   "/api/v1/players/{id}/command",
			statusCode: "202",
			duration:   40 * time.Millisecond,
		},
		{
			name:       "unauthorized request",
			method:     "GET",
			endpoint:   "/api/v1/sessions",
			statusCode: "401",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "not found request",
			method:     "GET",
			endpoint:   "/api/v1/unknown",
			statusCode: "404",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "rate limited request",
			method:     "GET",
			endpoint:   "/api/v1/library/stats",
			statusCode: "429",
			duration:   1 * time.Millisecond,
		},
		{
			name:       "upstream unavailable",
			method:     "POST",
			endpoint:   "/api/v1/refresh",
			statusCode: "502",
			duration:   10 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the request - should not panic
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
		})
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates realistic request lifecycle
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	start := getGaugeValue(APIActiveRequests)

	// Simulate multiple concurrent requests
	for i := 0; i < 10; i++ {
		TrackActiveRequest(true)
	}

	// Some requests complete
	for i := 0; i < 5; i++ {
		TrackActiveRequest(false)
	}

	if got := getGaugeValue(APIActiveRequests); got != start+5 {
		t.Errorf("active requests = %f, want %f", got, start+5)
	}

	// All remaining complete
	for i := 0; i < 5; i++ {
		TrackActiveRequest(false)
	}

	if got := getGaugeValue(APIActiveRequests); got != start {
		t.Errorf("active requests after drain = %f, want %f", got, start)
	}
}

func TestCacheMetricHelpers(t *testing.T) {
	t.Run("hit", func(t *testing.T) {
		before := getCounterValue(CacheHits.WithLabelValues("snapshot"))
		RecordCacheHit("snapshot")
		after := getCounterValue(CacheHits.WithLabelValues("snapshot"))

		if after != before+1 {
			t.Errorf("expected cache hits to increase by 1, got %f -> %f", before, after)
		}
	})

	t.Run("miss", func(t *testing.T) {
		before := getCounterValue(CacheMisses.WithLabelValues("snapshot"))
		RecordCacheMiss("snapshot")
		after := getCounterValue(CacheMisses.WithLabelValues("snapshot"))

		if after != before+1 {
			t.Errorf("expected cache misses to increase by 1, got %f -> %f", before, after)
		}
	})

	t.Run("write", func(t *testing.T) {
		before := getCounterValue(CacheWrites.WithLabelValues("snapshot"))
		RecordCacheWrite("snapshot")
		after := getCounterValue(CacheWrites.WithLabelValues("snapshot"))

		if after != before+1 {
			t.Errorf("expected cache writes to increase by 1, got %f -> %f", before, after)
		}
	})

	t.Run("error", func(t *testing.T) {
		operations := []string{"read", "write", "gc"}
		for _, op := range operations {
			before := getCounterValue(CacheErrors.WithLabelValues("snapshot", op))
			RecordCacheError("snapshot", op)
			after := getCounterValue(CacheErrors.WithLabelValues("snapshot", op))

			if after != before+1 {
				t.Errorf("expected cache errors for %s to increase by 1, got %f -> %f", op, before, after)
			}
		}
	})
}

// TestWebSocketMetrics tests WebSocket metric recording
func TestWebSocketMetrics(t *testing.T) {
	// Test connection gauge
	WSConnections.Set(10)
	WSConnections.Inc()
	WSConnections.Dec()

	if got := getGaugeValue(WSConnections); got != 10 {
		t.Errorf("WSConnections = %f, want 10", got)
	}

	// Test message counters via helpers
	before := getCounterValue(WSMessagesSent)
	RecordWSMessageSent()
	if got := getCounterValue(WSMessagesSent); got != before+1 {
		t.Errorf("expected sent count to increase by 1, got %f -> %f", before, got)
	}

	beforeDropped := getCounterValue(WSMessagesDropped)
	RecordWSMessageDropped()
	if got := getCounterValue(WSMessagesDropped); got != beforeDropped+1 {
		t.Errorf("expected dropped count to increase by 1, got %f -> %f", beforeDropped, got)
	}

	// Test error counter with different types
	WSErrors.WithLabelValues("connection_closed").Inc()
	WSErrors.WithLabelValues("write_timeout").Inc()
	WSErrors.WithLabelValues("invalid_message").Inc()
}

// TestCircuitBreakerMetrics tests circuit breaker metric recording
func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "media_server"

	// Test state changes (0=closed, 1=half-open, 2=open)
	CircuitBreakerState.WithLabelValues(cbName).Set(0) // closed
	CircuitBreakerState.WithLabelValues(cbName).Set(2) // open
	CircuitBreakerState.WithLabelValues(cbName).Set(1) // half-open

	if got := getGaugeValue(CircuitBreakerState.WithLabelValues(cbName)); got != 1 {
		t.Errorf("CircuitBreakerState = %f, want 1", got)
	}

	// Test request counts
	CircuitBreakerRequests.WithLabelValues(cbName, "success").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "failure").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "rejected").Inc()

	// Test consecutive failures
	CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(5)

	// Test state transitions
	CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open").Inc()
	CircuitBreakerTransitions.WithLabelValues(cbName, "open", "half-open").Inc()
	CircuitBreakerTransitions.WithLabelValues(cbName, "half-open", "closed").Inc()
}

// TestNATSMetrics tests NATS event metric recording
func TestNATSMetrics(t *testing.T) {
	before := getCounterValue(NATSMessagesPublished)
	for i := 0; i < 10; i++ {
		RecordNATSPublish()
	}
	if got := getCounterValue(NATSMessagesPublished); got != before+10 {
		t.Errorf("expected published count to increase by 10, got %f -> %f", before, got)
	}

	RecordNATSConsume()
	RecordNATSProcessed()
	RecordNATSDeduplicated()
	RecordNATSParseFailed()

	durations := []time.Duration{
		1 * time.Millisecond,
		10 * time.Millisecond,
		100 * time.Millisecond,
		500 * time.Millisecond,
	}
	for _, d := range durations {
		RecordNATSProcessingDuration(d)
	}
}

// TestAppMetrics tests application-level metrics
func TestAppMetrics(t *testing.T) {
	// Test app info
	AppInfo.WithLabelValues("2.0.0", "go1.25.5", "jellyfin").Set(1)

	// Test uptime
	AppUptime.Set(3600) // 1 hour
	AppUptime.Add(60)   // Add 1 minute

	if got := getGaugeValue(AppUptime); got != 3660 {
		t.Errorf("AppUptime = %f, want 3660", got)
	}
}

// TestConcurrentMetricRecording tests thread safety of metric recording
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 100
	operationsPerGoroutine := 50

	// Test concurrent poll cycle recording
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordPollCycle(time.Duration(j)*time.Millisecond, nil)
			}
		}(i)
	}

	// Test concurrent server request recording
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordServerRequest("sessions", "200", time.Duration(j)*time.Millisecond)
			}
		}(i)
	}

	// Test concurrent API request recording
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordAPIRequest("GET", "/api/v1/snapshot", "200", time.Duration(j)*time.Millisecond)
			}
		}(i)
	}

	// Test concurrent active request tracking
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}(i)
	}

	wg.Wait()
}

// TestMetricsRegistration verifies all metrics are properly registered
func TestMetricsRegistration(t *testing.T) {
	// Test that all metrics can be collected without panic
	metrics := []prometheus.Collector{
		PollCycles,
		PollCycleDuration,
		PollCyclesSkipped,
		PollFetchErrors,
		PollLastSuccess,
		RefreshRequests,
		ServerRequests,
		ServerRequestDuration,
		SessionsActive,
		SessionsPlaying,
		SessionsPaused,
		PlaybackEvents,
		LibraryItems,
		CommandsExecuted,
		CommandDuration,
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		CacheHits,
		CacheMisses,
		CacheWrites,
		CacheErrors,
		WSConnections,
		WSMessagesSent,
		WSMessagesDropped,
		WSErrors,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		NATSMessagesPublished,
		NATSMessagesConsumed,
		NATSMessagesProcessed,
		NATSMessagesDeduplicated,
		NATSMessagesParseFailed,
		NATSProcessingDuration,
		AppInfo,
		AppUptime,
	}

	// Verify each metric can be described
	for _, m := range metrics {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		// Should have at least one descriptor
		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	// Record some metrics
	RecordPollCycle(time.Millisecond, nil)
	RecordServerRequest("sessions", "200", time.Millisecond)
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	// Verify we can lint the metrics (checks for consistency issues)
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

// Benchmark tests for metrics performance

func BenchmarkRecordPollCycle(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordPollCycle(150*time.Millisecond, nil)
	}
}

func BenchmarkRecordPollCycleWithError(b *testing.B) {
	err := errors.New("remote unavailable")
	for i := 0; i < b.N; i++ {
		RecordPollCycle(time.Second, err)
	}
}

func BenchmarkRecordServerRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordServerRequest("sessions", "200", 15*time.Millisecond)
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/snapshot", "200", 5*time.Millisecond)
	}
}

func BenchmarkRecordCommand(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordCommand("play_pause", 30*time.Millisecond, nil)
	}
}

func BenchmarkTrackActiveRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		TrackActiveRequest(true)
		TrackActiveRequest(false)
	}
}
