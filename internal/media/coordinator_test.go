// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package media

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jellybridge/jellybridge/internal/models"
)

// fakeClient is an in-memory ClientInterface for coordinator tests.
// cycles counts SystemInfo calls, which lead every poll cycle.
type fakeClient struct {
	cycles int32

	mu             sync.Mutex
	failSystemInfo bool
	failSessions   bool
	sessions       []models.Session
	library        []models.BaseItem
	users          []models.User
	commands       []string
	commandErr     error
}

func (f *fakeClient) cycleCount() int32 {
	return atomic.LoadInt32(&f.cycles)
}

func (f *fakeClient) setSessions(sessions []models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = sessions
}

func (f *fakeClient) setFailSessions(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSessions = fail
}

func (f *fakeClient) commandLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.commands))
	copy(out, f.commands)
	return out
}

func (f *fakeClient) Ping(_ context.Context) error { return nil }

func (f *fakeClient) SystemInfo(_ context.Context) (*models.SystemInfo, error) {
	atomic.AddInt32(&f.cycles, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSystemInfo {
		return nil, fmt.Errorf("system info probe: %w", ErrRemoteUnavailable)
	}
	return &models.SystemInfo{ServerName: "Fake Server", Version: "1.0", ID: "fake-1"}, nil
}

func (f *fakeClient) Sessions(_ context.Context) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSessions {
		return nil, fmt.Errorf("sessions fetch: %w", ErrRemoteUnavailable)
	}
	out := make([]models.Session, len(f.sessions))
	copy(out, f.sessions)
	return out, nil
}

func (f *fakeClient) ActiveSessions(ctx context.Context) ([]models.Session, error) {
	return f.Sessions(ctx)
}

func (f *fakeClient) Users(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users, nil
}

func (f *fakeClient) ItemCounts(_ context.Context) (*models.ItemsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &models.ItemsPage{Items: f.library, TotalRecordCount: len(f.library)}, nil
}

func (f *fakeClient) Upcoming(_ context.Context, _ int) ([]models.BaseItem, error) {
	return nil, nil
}

func (f *fakeClient) Latest(_ context.Context, _ string, _ int) ([]models.BaseItem, error) {
	return nil, nil
}

func (f *fakeClient) recordCommand(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, name)
	return f.commandErr
}

func (f *fakeClient) PlayPause(_ context.Context, _ string) error {
	return f.recordCommand("play_pause")
}

func (f *fakeClient) StopPlayback(_ context.Context, _ string) error {
	return f.recordCommand("stop")
}

func (f *fakeClient) NextTrack(_ context.Context, _ string) error {
	return f.recordCommand("next")
}

func (f *fakeClient) PreviousTrack(_ context.Context, _ string) error {
	return f.recordCommand("previous")
}

func (f *fakeClient) Seek(_ context.Context, _ string, _ int64) error {
	return f.recordCommand("seek")
}

func (f *fakeClient) SetVolume(_ context.Context, _ string, _ float64) error {
	return f.recordCommand("set_volume")
}

func (f *fakeClient) Mute(_ context.Context, _ string) error {
	return f.recordCommand("mute")
}

func (f *fakeClient) Unmute(_ context.Context, _ string) error {
	return f.recordCommand("unmute")
}

func (f *fakeClient) SendMessage(_ context.Context, _, _, _ string, _ int) error {
	return f.recordCommand("send_message")
}

func (f *fakeClient) RefreshLibrary(_ context.Context) error {
	return f.recordCommand("rescan")
}

func (f *fakeClient) RestartServer(_ context.Context) error {
	return f.recordCommand("restart")
}

func (f *fakeClient) ShutdownServer(_ context.Context) error {
	return f.recordCommand("shutdown")
}

func (f *fakeClient) ImageURL(_, _ string, _ int) string { return "" }

var _ ClientInterface = (*fakeClient)(nil)

// fakePublisher collects published session events.
type fakePublisher struct {
	mu     sync.Mutex
	events []SessionEvent
}

func (p *fakePublisher) PublishSessionEvent(_ context.Context, event SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, ev := range p.events {
		types[i] = ev.Type
	}
	return types
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

// ============================================================================
// Constructor Tests
// ============================================================================

func TestNewCoordinatorDefaults(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(&fakeClient{}, CoordinatorConfig{})

	if c.config.Interval != DefaultPollInterval {
		t.Errorf("Interval = %v, want %v", c.config.Interval, DefaultPollInterval)
	}
	if c.config.Timeout != DefaultPollTimeout {
		t.Errorf("Timeout = %v, want %v", c.config.Timeout, DefaultPollTimeout)
	}
	checkIntEqual(t, "UpcomingLimit", c.config.UpcomingLimit, DefaultUpcomingLimit)
	checkIntEqual(t, "LatestLimit", c.config.LatestLimit, DefaultLatestLimit)
}

func TestNewCoordinatorIntervalFloor(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(&fakeClient{}, CoordinatorConfig{Interval: 10 * time.Millisecond})

	if c.config.Interval != MinPollInterval {
		t.Errorf("Interval = %v, want floor %v", c.config.Interval, MinPollInterval)
	}
}

// ============================================================================
// Refresh Cycle Tests
// ============================================================================

func TestCoordinatorRefresh(t *testing.T) {
	t.Parallel()

	client := &fakeClient{
		sessions: []models.Session{activeWireSession()},
		library: []models.BaseItem{
			{ID: "1", Type: "Movie"},
			{ID: "2", Type: "Episode"},
		},
		users: []models.User{{ID: "u1", Name: "Alice"}},
	}
	c := NewCoordinator(client, CoordinatorConfig{ServerAddress: "http://fake:8096"})

	c.refresh(context.Background(), TriggerStartup)

	checkTrue(t, "healthy after refresh", c.Healthy())
	checkNoError(t, c.LastError())

	snap := c.Snapshot()
	checkTrue(t, "snapshot present", snap != nil)
	checkStringEqual(t, "Server.Name", snap.Server.Name, "Fake Server")
	checkStringEqual(t, "Server.Address", snap.Server.Address, "http://fake:8096")
	checkSliceLen(t, "Sessions", len(snap.Sessions), 1)
	checkIntEqual(t, "Library.Movies", snap.Library.Movies, 1)
	checkIntEqual(t, "Library.Episodes", snap.Library.Episodes, 1)
	checkSliceLen(t, "Users", len(snap.Users), 1)
	checkTrue(t, "Taken set", !snap.Taken.IsZero())
}

func TestCoordinatorRefreshAllOrNothing(t *testing.T) {
	t.Parallel()

	client := &fakeClient{sessions: []models.Session{activeWireSession()}}
	c := NewCoordinator(client, CoordinatorConfig{})
	ctx := context.Background()

	c.refresh(ctx, TriggerStartup)
	checkTrue(t, "healthy after first refresh", c.Healthy())
	first := c.Snapshot()
	checkTrue(t, "first snapshot present", first != nil)

	// A failing sub-fetch must not disturb the published snapshot
	client.setFailSessions(true)
	c.refresh(ctx, TriggerInterval)

	checkTrue(t, "unhealthy after failed cycle", !c.Healthy())
	checkError(t, c.LastError())
	checkTrue(t, "failure names the sub-fetch", strings.Contains(c.LastError().Error(), "sessions"))
	checkTrue(t, "previous snapshot kept", c.Snapshot() == first)

	// Recovery swaps a fresh snapshot and clears the error
	client.setFailSessions(false)
	c.refresh(ctx, TriggerInterval)

	checkTrue(t, "healthy after recovery", c.Healthy())
	checkNoError(t, c.LastError())
	checkTrue(t, "new snapshot swapped in", c.Snapshot() != first)
}

func TestCoordinatorSeedSnapshot(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c := NewCoordinator(client, CoordinatorConfig{})

	c.SeedSnapshot(nil)
	checkTrue(t, "nil seed ignored", c.Snapshot() == nil)

	seed := &models.Snapshot{Taken: time.Now().Add(-time.Hour)}
	c.SeedSnapshot(seed)
	checkTrue(t, "seed served before first poll", c.Snapshot() == seed)
	checkTrue(t, "seed does not mark healthy", !c.Healthy())

	// A live refresh displaces the seed
	c.refresh(context.Background(), TriggerStartup)
	checkTrue(t, "live snapshot replaces seed", c.Snapshot() != seed)
	checkTrue(t, "healthy after live refresh", c.Healthy())

	// A second seed never displaces live data
	c.SeedSnapshot(seed)
	checkTrue(t, "seed cannot displace live snapshot", c.Snapshot() != seed)
}

func TestCoordinatorListeners(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c := NewCoordinator(client, CoordinatorConfig{})

	var order []string
	var got *models.Snapshot
	c.AddListener(func(s *models.Snapshot) {
		order = append(order, "first")
		got = s
	})
	c.AddListener(func(_ *models.Snapshot) {
		order = append(order, "second")
	})

	c.refresh(context.Background(), TriggerStartup)

	checkSliceLen(t, "listener calls", len(order), 2)
	checkStringEqual(t, "call order", strings.Join(order, ","), "first,second")
	checkTrue(t, "listener got the published snapshot", got == c.Snapshot())
}

func TestCoordinatorPublishesLifecycleEvents(t *testing.T) {
	t.Parallel()

	client := &fakeClient{sessions: []models.Session{activeWireSession()}}
	c := NewCoordinator(client, CoordinatorConfig{})
	publisher := &fakePublisher{}
	c.SetPublisher(publisher)
	ctx := context.Background()

	// First snapshot reports the in-flight session as started
	c.refresh(ctx, TriggerStartup)
	checkSliceLen(t, "events after first refresh", len(publisher.eventTypes()), 1)
	checkStringEqual(t, "first event", publisher.eventTypes()[0], EventStarted)

	// Session disappearing reports stopped
	client.setSessions(nil)
	c.refresh(ctx, TriggerInterval)
	types := publisher.eventTypes()
	checkSliceLen(t, "events after second refresh", len(types), 2)
	checkStringEqual(t, "second event", types[1], EventStopped)
}

func TestCoordinatorNilPublisher(t *testing.T) {
	t.Parallel()

	client := &fakeClient{sessions: []models.Session{activeWireSession()}}
	c := NewCoordinator(client, CoordinatorConfig{})

	// No publisher set; refresh must not panic
	c.refresh(context.Background(), TriggerStartup)
	checkTrue(t, "healthy", c.Healthy())
}

// ============================================================================
// Start / Stop Tests
// ============================================================================

func TestCoordinatorStartStop(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c := NewCoordinator(client, CoordinatorConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checkNoError(t, c.Start(ctx))
	checkTrue(t, "running after start", c.Running())
	checkTrue(t, "healthy after start", c.Healthy())
	checkTrue(t, "snapshot after start", c.Snapshot() != nil)
	checkIntEqual(t, "cycles after start", int(client.cycleCount()), 1)

	// Starting again is a no-op
	checkNoError(t, c.Start(ctx))

	c.Stop()
	checkTrue(t, "stopped", !c.Running())

	// Stopping again is a no-op
	c.Stop()
}

func TestCoordinatorStartFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{failSystemInfo: true}
	c := NewCoordinator(client, CoordinatorConfig{Interval: time.Hour})

	err := c.Start(context.Background())

	checkErrorIs(t, err, ErrSetupFailed)
	checkErrorIs(t, err, ErrRemoteUnavailable)
	checkTrue(t, "not running after failed start", !c.Running())
	checkNil(t, "no snapshot after failed start", c.Snapshot() == nil)
}

func TestCoordinatorContextCancellation(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c := NewCoordinator(client, CoordinatorConfig{Interval: 50 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	checkNoError(t, c.Start(ctx))

	cancel()
	time.Sleep(100 * time.Millisecond)

	// Stop still shuts down cleanly after the context ended the loop
	c.Stop()
}

// ============================================================================
// On-Demand Refresh Tests
// ============================================================================

func TestCoordinatorRequestRefresh(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	// Hour-long interval: only explicit requests drive cycles
	c := NewCoordinator(client, CoordinatorConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checkNoError(t, c.Start(ctx))
	defer c.Stop()

	checkIntEqual(t, "cycles after start", int(client.cycleCount()), 1)

	c.RequestRefresh()
	waitFor(t, 2*time.Second, "requested refresh cycle", func() bool {
		return client.cycleCount() >= 2
	})
}

func TestCoordinatorExecCommandNudges(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	c := NewCoordinator(client, CoordinatorConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checkNoError(t, c.Start(ctx))
	defer c.Stop()

	err := c.ExecCommand(ctx, CommandPlayPause, func(ctx context.Context) error {
		return client.PlayPause(ctx, "session-1")
	})
	checkNoError(t, err)
	checkSliceLen(t, "commands executed", len(client.commandLog()), 1)
	checkStringEqual(t, "command name", client.commandLog()[0], "play_pause")

	// Startup cycle plus two nudge refreshes
	waitFor(t, 3*time.Second, "nudge refresh cycles", func() bool {
		return client.cycleCount() >= 3
	})
}

func TestCoordinatorExecCommandFailure(t *testing.T) {
	t.Parallel()

	client := &fakeClient{commandErr: fmt.Errorf("device busy")}
	c := NewCoordinator(client, CoordinatorConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checkNoError(t, c.Start(ctx))
	defer c.Stop()

	err := c.ExecCommand(ctx, CommandStop, func(ctx context.Context) error {
		return client.StopPlayback(ctx, "session-1")
	})
	checkError(t, err)

	// Failed commands do not nudge; no further cycles beyond startup
	time.Sleep(800 * time.Millisecond)
	checkIntEqual(t, "cycles after failed command", int(client.cycleCount()), 1)
}

// ============================================================================
// Accessor Tests
// ============================================================================

func TestCoordinatorBeforeStart(t *testing.T) {
	t.Parallel()

	c := NewCoordinator(&fakeClient{}, CoordinatorConfig{})

	checkTrue(t, "not running", !c.Running())
	checkTrue(t, "not healthy", !c.Healthy())
	checkNil(t, "no snapshot", c.Snapshot() == nil)
	checkNoError(t, c.LastError())
}
