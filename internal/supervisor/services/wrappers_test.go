// Jellybridge - Jellyfin Bridge for Home Automation
// Copyright 2026 Jellybridge Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jellybridge/jellybridge

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeRunner struct {
	runs atomic.Int32
}

func (f *fakeRunner) RunWithContext(ctx context.Context) error {
	f.runs.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func TestHubService(t *testing.T) {
	runner := &fakeRunner{}
	svc := NewHubService(runner)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}

	if runner.runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runner.runs.Load())
	}
	if svc.String() != "websocket-hub" {
		t.Errorf("String = %q", svc.String())
	}
}

type fakePoller struct {
	startErr error
	starts   atomic.Int32
	stops    atomic.Int32
}

func (f *fakePoller) Start(ctx context.Context) error {
	f.starts.Add(1)
	return f.startErr
}

func (f *fakePoller) Stop() {
	f.stops.Add(1)
}

func TestPollerServiceLifecycle(t *testing.T) {
	poller := &fakePoller{}
	svc := NewPollerService(poller)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}

	if poller.starts.Load() != 1 || poller.stops.Load() != 1 {
		t.Errorf("starts/stops = %d/%d, want 1/1", poller.starts.Load(), poller.stops.Load())
	}
}

func TestPollerServiceStartFailure(t *testing.T) {
	poller := &fakePoller{startErr: errors.New("server unreachable")}
	svc := NewPollerService(poller)

	if err := svc.Serve(context.Background()); err == nil || !errors.Is(err, poller.startErr) {
		t.Errorf("Serve = %v, want start error", err)
	}
	if poller.stops.Load() != 0 {
		t.Error("Stop must not run after a failed Start")
	}
}

type fakeGCStore struct {
	interval time.Duration
	ran      atomic.Bool
}

func (f *fakeGCStore) RunGC(ctx context.Context, interval time.Duration) {
	f.interval = interval
	f.ran.Store(true)
	<-ctx.Done()
}

func TestCacheGCService(t *testing.T) {
	store := &fakeGCStore{}
	svc := NewCacheGCService(store, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}

	if !store.ran.Load() {
		t.Error("RunGC was not invoked")
	}
	if store.interval != time.Minute {
		t.Errorf("interval = %v, want 1m", store.interval)
	}
}

func TestCacheGCServiceDefaultInterval(t *testing.T) {
	svc := NewCacheGCService(&fakeGCStore{}, 0)
	if svc.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m default", svc.interval)
	}
}

type fakePipeline struct {
	shutdownErr error
	shutdowns   atomic.Int32
}

func (f *fakePipeline) Shutdown(ctx context.Context) error {
	f.shutdowns.Add(1)
	return f.shutdownErr
}

func TestEventBusServiceLifecycle(t *testing.T) {
	pipeline := &fakePipeline{}
	var starts atomic.Int32
	svc := NewEventBusService(func(ctx context.Context) (EventPipeline, error) {
		starts.Add(1)
		return pipeline, nil
	}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}

	if starts.Load() != 1 || pipeline.shutdowns.Load() != 1 {
		t.Errorf("starts/shutdowns = %d/%d, want 1/1", starts.Load(), pipeline.shutdowns.Load())
	}
}

func TestEventBusServiceStartFailure(t *testing.T) {
	startErr := errors.New("broker unreachable")
	svc := NewEventBusService(func(ctx context.Context) (EventPipeline, error) {
		return nil, startErr
	}, time.Second)

	if err := svc.Serve(context.Background()); err == nil || !errors.Is(err, startErr) {
		t.Errorf("Serve = %v, want start error", err)
	}
}
