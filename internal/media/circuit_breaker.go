// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package media

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jellybridge/jellybridge/internal/logging"
	"github.com/jellybridge/jellybridge/internal/metrics"
	"github.com/jellybridge/jellybridge/internal/models"
)

// Ensure BreakerClient implements ClientInterface
var _ ClientInterface = (*BreakerClient)(nil)

// BreakerClient wraps Client with the circuit breaker pattern.
// Prevents cascading failures when the media server is unavailable or slow.
//
// DETERMINISM NOTE: The circuit breaker uses real time (via sony/gobreaker)
// for its interval and timeout calculations. This is intentional for
// production resilience.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewBreakerClient creates a media server client with circuit breaker.
// Circuit breaker configuration:
// - Max 3 concurrent requests in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - Opens after 60% failure rate with minimum 10 requests
func NewBreakerClient(cfg ClientConfig) *BreakerClient {
	client := NewClient(cfg)
	cbName := "media-server"

	// Initialize circuit breaker state metrics
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,               // Allow 3 concurrent requests in half-open state
		Interval:    time.Minute,     // Reset counts after 1 minute in closed state
		Timeout:     2 * time.Minute, // Wait 2 minutes before transitioning from open to half-open

		// ReadyToTrip determines when to open the circuit
		// Opens when failure rate >= 60% with minimum 10 requests
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false // Need at least 10 requests for statistical significance
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening media server circuit")
			}

			return shouldTrip
		},

		// OnStateChange is called whenever the circuit breaker changes state
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] Media server state transition")

			// Update metrics
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			// Reset consecutive failures when transitioning to closed
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// execute wraps a media server API call with circuit breaker protection
// Returns the result or an error if circuit is open or request fails
func (bc *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := bc.cb.Execute(func() (interface{}, error) {
		return fn()
	})

	// Update metrics based on result
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Media server request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "failure").Inc()
			counts := bc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(bc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(bc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(bc.name).Set(0)

	return result, nil
}

// Ping tests connectivity to the media server with circuit breaker protection
func (bc *BreakerClient) Ping(ctx context.Context) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.Ping(ctx)
	})
	return err
}

// SystemInfo retrieves server system information with circuit breaker protection
func (bc *BreakerClient) SystemInfo(ctx context.Context) (*models.SystemInfo, error) {
	result, err := bc.execute(func() (interface{}, error) {
		return bc.client.SystemInfo(ctx)
	})
	if err != nil {
		return nil, err
	}
	info, ok := result.(*models.SystemInfo)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for SystemInfo")
	}
	return info, nil
}

// Sessions retrieves all sessions with circuit breaker protection
func (bc *BreakerClient) Sessions(ctx context.Context) ([]models.Session, error) {
	result, err := bc.execute(func() (interface{}, error) {
		return bc.client.Sessions(ctx)
	})
	if err != nil {
		return nil, err
	}
	sessions, ok := result.([]models.Session)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for Sessions")
	}
	return sessions, nil
}

// ActiveSessions retrieves only sessions with active playback with circuit breaker protection
func (bc *BreakerClient) ActiveSessions(ctx context.Context) ([]models.Session, error) {
	result, err := bc.execute(func() (interface{}, error) {
		return bc.client.ActiveSessions(ctx)
	})
	if err != nil {
		return nil, err
	}
	sessions, ok := result.([]models.Session)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for ActiveSessions")
	}
	return sessions, nil
}

// Users retrieves all server users with circuit breaker protection
func (bc *BreakerClient) Users(ctx context.Context) ([]models.User, error) {
	result, err := bc.execute(func() (interface{}, error) {
		return bc.client.Users(ctx)
	})
	if err != nil {
		return nil, err
	}
	users, ok := result.([]models.User)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for Users")
	}
	return users, nil
}

// ItemCounts retrieves the full library item listing with circuit breaker protection
func (bc *BreakerClient) ItemCounts(ctx context.Context) (*models.ItemsPage, error) {
	result, err := bc.execute(func() (interface{}, error) {
		return bc.client.ItemCounts(ctx)
	})
	if err != nil {
		return nil, err
	}
	page, ok := result.(*models.ItemsPage)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for ItemCounts")
	}
	return page, nil
}

// Upcoming retrieves upcoming episodes with circuit breaker protection
func (bc *BreakerClient) Upcoming(ctx context.Context, limit int) ([]models.BaseItem, error) {
	result, err := bc.execute(func() (interface{}, error) {
		return bc.client.Upcoming(ctx, limit)
	})
	if err != nil {
		return nil, err
	}
	items, ok := result.([]models.BaseItem)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for Upcoming")
	}
	return items, nil
}

// Latest retrieves recently added items with circuit breaker protection
func (bc *BreakerClient) Latest(ctx context.Context, itemType string, limit int) ([]models.BaseItem, error) {
	result, err := bc.execute(func() (interface{}, error) {
		return bc.client.Latest(ctx, itemType, limit)
	})
	if err != nil {
		return nil, err
	}
	items, ok := result.([]models.BaseItem)
	if !ok {
		return nil, errors.New("circuit breaker: unexpected result type for Latest")
	}
	return items, nil
}

// PlayPause toggles play/pause with circuit breaker protection
func (bc *BreakerClient) PlayPause(ctx context.Context, sessionID string) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.PlayPause(ctx, sessionID)
	})
	return err
}

// StopPlayback halts playback with circuit breaker protection
func (bc *BreakerClient) StopPlayback(ctx context.Context, sessionID string) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.StopPlayback(ctx, sessionID)
	})
	return err
}

// NextTrack skips forward with circuit breaker protection
func (bc *BreakerClient) NextTrack(ctx context.Context, sessionID string) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.NextTrack(ctx, sessionID)
	})
	return err
}

// PreviousTrack skips backward with circuit breaker protection
func (bc *BreakerClient) PreviousTrack(ctx context.Context, sessionID string) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.PreviousTrack(ctx, sessionID)
	})
	return err
}

// Seek moves the playback position with circuit breaker protection
func (bc *BreakerClient) Seek(ctx context.Context, sessionID string, positionSeconds int64) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.Seek(ctx, sessionID, positionSeconds)
	})
	return err
}

// SetVolume sets the session volume with circuit breaker protection
func (bc *BreakerClient) SetVolume(ctx context.Context, sessionID string, level float64) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.SetVolume(ctx, sessionID, level)
	})
	return err
}

// Mute mutes the session with circuit breaker protection
func (bc *BreakerClient) Mute(ctx context.Context, sessionID string) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.Mute(ctx, sessionID)
	})
	return err
}

// Unmute unmutes the session with circuit breaker protection
func (bc *BreakerClient) Unmute(ctx context.Context, sessionID string) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.Unmute(ctx, sessionID)
	})
	return err
}

// SendMessage shows a message dialog with circuit breaker protection
func (bc *BreakerClient) SendMessage(ctx context.Context, sessionID, text, header string, timeoutMs int) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.SendMessage(ctx, sessionID, text, header, timeoutMs)
	})
	return err
}

// RefreshLibrary triggers a library rescan with circuit breaker protection
func (bc *BreakerClient) RefreshLibrary(ctx context.Context) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.RefreshLibrary(ctx)
	})
	return err
}

// RestartServer restarts the media server with circuit breaker protection
func (bc *BreakerClient) RestartServer(ctx context.Context) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.RestartServer(ctx)
	})
	return err
}

// ShutdownServer shuts the media server down with circuit breaker protection
func (bc *BreakerClient) ShutdownServer(ctx context.Context) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.ShutdownServer(ctx)
	})
	return err
}

// ImageURL builds an artwork URL.
// This is a passthrough method as it doesn't make network calls.
func (bc *BreakerClient) ImageURL(itemID, imageType string, maxWidth int) string {
	return bc.client.ImageURL(itemID, imageType, maxWidth)
}

// State returns the current circuit breaker state
func (bc *BreakerClient) State() gobreaker.State {
	return bc.cb.State()
}

// Counts returns the current circuit breaker counts
func (bc *BreakerClient) Counts() gobreaker.Counts {
	return bc.cb.Counts()
}

// Name returns the circuit breaker name
func (bc *BreakerClient) Name() string {
	return bc.name
}
