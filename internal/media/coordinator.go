// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

/*
coordinator.go - Poll Coordinator

The coordinator owns the media server client and the current snapshot. It
refreshes the snapshot on a fixed interval and on demand, swapping it only
when every sub-fetch of a cycle succeeded. A failed cycle keeps the
previous snapshot current and flips Healthy() until the next success, so
consumers always see a complete, internally consistent view.
*/

package media

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jellybridge/jellybridge/internal/logging"
	"github.com/jellybridge/jellybridge/internal/metrics"
	"github.com/jellybridge/jellybridge/internal/models"
)

// Refresh trigger labels recorded per cycle.
const (
	TriggerStartup  = "startup"
	TriggerInterval = "interval"
	TriggerAPI      = "api"
	TriggerNudge    = "command_nudge"
)

// Poll defaults. The interval floor protects low-power servers from
// misconfigured sub-second polling.
const (
	DefaultPollInterval  = 2 * time.Second
	MinPollInterval      = time.Second
	DefaultPollTimeout   = 10 * time.Second
	DefaultUpcomingLimit = 50
	DefaultLatestLimit   = 30
)

// Command nudge delays. Servers ack remote control commands before
// applying them; two staggered refreshes catch the applied state without
// waiting out a full poll interval.
const (
	nudgeFirstDelay  = 100 * time.Millisecond
	nudgeSecondDelay = 500 * time.Millisecond
)

// CoordinatorConfig holds poll coordinator settings.
type CoordinatorConfig struct {
	// Interval is the time between poll cycles. Floor: 1s.
	Interval time.Duration

	// Timeout is the deadline for one full cycle, all sub-fetches included.
	Timeout time.Duration

	// ServerAddress is the media server base URL, recorded in snapshots
	// for display.
	ServerAddress string

	// UpcomingLimit caps the upcoming episode fetch.
	UpcomingLimit int

	// LatestLimit caps each recently-added fetch (movies, episodes, music).
	LatestLimit int
}

// Coordinator polls the media server and publishes normalized snapshots.
type Coordinator struct {
	client ClientInterface
	config CoordinatorConfig

	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup

	snapshot *models.Snapshot
	healthy  bool
	lastErr  error

	listeners []func(*models.Snapshot)
	publisher EventPublisher

	// refreshChan carries on-demand refresh triggers into the poll loop.
	// Capacity 1: a pending refresh absorbs further requests.
	refreshChan chan string
}

// NewCoordinator creates a poll coordinator. Zero config fields take
// defaults; the interval is floored at one second.
func NewCoordinator(client ClientInterface, config CoordinatorConfig) *Coordinator {
	if config.Interval <= 0 {
		config.Interval = DefaultPollInterval
	}
	if config.Interval < MinPollInterval {
		config.Interval = MinPollInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultPollTimeout
	}
	if config.UpcomingLimit <= 0 {
		config.UpcomingLimit = DefaultUpcomingLimit
	}
	if config.LatestLimit <= 0 {
		config.LatestLimit = DefaultLatestLimit
	}

	return &Coordinator{
		client:      client,
		config:      config,
		refreshChan: make(chan string, 1),
	}
}

// AddListener registers a callback invoked synchronously, in registration
// order, after each successful snapshot swap. Register before Start; the
// callback runs on the poll goroutine and must not block.
func (c *Coordinator) AddListener(fn func(*models.Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// SetPublisher sets the playback event publisher. A nil publisher
// disables event emission.
func (c *Coordinator) SetPublisher(p EventPublisher) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.publisher = p
}

// Start performs one synchronous refresh, then begins the polling loop.
// A failed first refresh aborts startup with ErrSetupFailed so a
// misconfigured bridge fails fast instead of serving nothing.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.stopChan = make(chan struct{})
	c.mu.Unlock()

	logging.Info().
		Dur("interval", c.config.Interval).
		Dur("timeout", c.config.Timeout).
		Msg("Starting poll coordinator")

	metrics.RecordRefresh(TriggerStartup)
	c.refresh(ctx, TriggerStartup)
	if !c.Healthy() {
		err := c.LastError()
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return fmt.Errorf("%w: initial refresh: %w", ErrSetupFailed, err)
	}

	c.wg.Add(1)
	go c.pollLoop(ctx)

	return nil
}

// Stop stops the polling loop and waits for it to exit.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopChan)
	c.mu.Unlock()

	c.wg.Wait()
	logging.Info().Msg("[coordinator] Poll coordinator stopped")
}

// Running reports whether the polling loop is active.
func (c *Coordinator) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Snapshot returns the current snapshot, or nil before the first
// successful refresh. The returned snapshot is shared and must be
// treated as read-only.
func (c *Coordinator) Snapshot() *models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// SeedSnapshot installs a previously persisted snapshot so consumers see
// data before the first poll cycle completes. Call before Start. The seed
// never displaces live data and does not mark the coordinator healthy;
// only a successful poll does that.
func (c *Coordinator) SeedSnapshot(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		c.snapshot = snap
	}
}

// Healthy reports whether the most recent cycle succeeded.
func (c *Coordinator) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.healthy
}

// LastError returns the error of the most recent failed cycle, or nil
// when the last cycle succeeded.
func (c *Coordinator) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// RequestRefresh triggers an immediate out-of-band poll cycle. Non-blocking;
// when a refresh is already pending the request is absorbed by it.
func (c *Coordinator) RequestRefresh() {
	c.requestRefresh(TriggerAPI)
}

func (c *Coordinator) requestRefresh(trigger string) {
	metrics.RecordRefresh(trigger)
	select {
	case c.refreshChan <- trigger:
	default:
		metrics.RecordPollSkipped()
		logging.Debug().Str("trigger", trigger).Msg("Refresh already pending; request coalesced")
	}
}

// ExecCommand runs a remote control command, records its outcome and
// nudges the poll loop so the snapshot converges on the server's new
// state quickly. The command name is used for metrics and logging.
func (c *Coordinator) ExecCommand(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	metrics.RecordCommand(name, time.Since(start), err)
	if err != nil {
		logging.Warn().Err(err).Str("command", name).Msg("Media server command failed")
		return err
	}

	logging.Debug().Str("command", name).Dur("duration", time.Since(start)).Msg("Media server command executed")
	go c.nudge()
	return nil
}

// nudge requests two staggered refreshes after a command.
func (c *Coordinator) nudge() {
	time.Sleep(nudgeFirstDelay)
	c.requestRefresh(TriggerNudge)
	time.Sleep(nudgeSecondDelay)
	c.requestRefresh(TriggerNudge)
}

// pollLoop runs the periodic polling. The initial refresh already ran
// synchronously in Start.
func (c *Coordinator) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopChan:
			return
		case <-ticker.C:
			metrics.RecordRefresh(TriggerInterval)
			c.refresh(ctx, TriggerInterval)
		case trigger := <-c.refreshChan:
			c.refresh(ctx, trigger)
		}
	}
}

// refresh runs one full poll cycle. All sub-fetches must succeed for the
// snapshot to swap; any failure keeps the previous snapshot current.
func (c *Coordinator) refresh(ctx context.Context, trigger string) {
	start := time.Now()

	cycleCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	raw, err := c.fetchAll(cycleCtx)
	if err != nil {
		c.mu.Lock()
		c.healthy = false
		c.lastErr = err
		c.mu.Unlock()

		metrics.RecordPollCycle(time.Since(start), err)
		logging.Error().Err(err).Str("trigger", trigger).Msg("Snapshot refresh failed, keeping previous snapshot")
		return
	}

	snap := BuildSnapshot(*raw, c.config.ServerAddress, c.client.ImageURL, time.Now())

	c.mu.Lock()
	prev := c.snapshot
	c.snapshot = snap
	c.healthy = true
	c.lastErr = nil
	listeners := make([]func(*models.Snapshot), len(c.listeners))
	copy(listeners, c.listeners)
	publisher := c.publisher
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}

	c.publishEvents(ctx, publisher, prev, snap)

	active := snap.ActiveSessionCount()
	playing := snap.PlayingCount()
	metrics.UpdateSessionGauges(active, playing, active-playing)
	metrics.UpdateLibraryCounts(snap.Library.Movies, snap.Library.Series, snap.Library.Episodes, snap.Library.Songs)
	metrics.RecordPollCycle(time.Since(start), nil)

	logging.Debug().
		Str("trigger", trigger).
		Int("sessions", active).
		Dur("duration", time.Since(start)).
		Msg("Snapshot refreshed")
}

// fetchAll performs the sub-fetches of one cycle in a fixed order and
// bundles the raw responses. The first error aborts the cycle.
func (c *Coordinator) fetchAll(ctx context.Context) (*RawState, error) {
	raw := &RawState{}

	info, err := c.client.SystemInfo(ctx)
	if err != nil {
		metrics.RecordFetchError("system_info")
		return nil, fmt.Errorf("system info: %w", err)
	}
	raw.System = info

	sessions, err := c.client.ActiveSessions(ctx)
	if err != nil {
		metrics.RecordFetchError("sessions")
		return nil, fmt.Errorf("sessions: %w", err)
	}
	raw.Sessions = sessions

	page, err := c.client.ItemCounts(ctx)
	if err != nil {
		metrics.RecordFetchError("library")
		return nil, fmt.Errorf("library items: %w", err)
	}
	if page != nil {
		raw.Library = page.Items
	}

	users, err := c.client.Users(ctx)
	if err != nil {
		metrics.RecordFetchError("users")
		return nil, fmt.Errorf("users: %w", err)
	}
	raw.Users = users

	upcoming, err := c.client.Upcoming(ctx, c.config.UpcomingLimit)
	if err != nil {
		metrics.RecordFetchError("upcoming")
		return nil, fmt.Errorf("upcoming episodes: %w", err)
	}
	raw.Upcoming = upcoming

	movies, err := c.client.Latest(ctx, "Movie", c.config.LatestLimit)
	if err != nil {
		metrics.RecordFetchError("latest")
		return nil, fmt.Errorf("latest movies: %w", err)
	}
	raw.LatestMovies = movies

	episodes, err := c.client.Latest(ctx, "Episode", c.config.LatestLimit)
	if err != nil {
		metrics.RecordFetchError("latest")
		return nil, fmt.Errorf("latest episodes: %w", err)
	}
	raw.LatestEpisodes = episodes

	music, err := c.client.Latest(ctx, "Audio", c.config.LatestLimit)
	if err != nil {
		metrics.RecordFetchError("latest")
		return nil, fmt.Errorf("latest music: %w", err)
	}
	raw.LatestMusic = music

	return raw, nil
}

// publishEvents diffs consecutive snapshots and emits the playback
// transitions. Publish failures are logged, never propagated; the bus is
// best-effort.
func (c *Coordinator) publishEvents(ctx context.Context, publisher EventPublisher, prev, curr *models.Snapshot) {
	if publisher == nil {
		return
	}

	var prevSessions []models.PlaybackSession
	if prev != nil {
		prevSessions = prev.Sessions
	}

	for _, event := range diffSessions(prevSessions, curr.Sessions, curr.Taken) {
		metrics.RecordPlaybackEvent(event.Type)
		if err := publisher.PublishSessionEvent(ctx, event); err != nil {
			logging.Warn().Err(err).Str("event", event.Type).Msg("Failed to publish playback event")
		}
	}
}
