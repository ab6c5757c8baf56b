// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/precisexyz/precise/pkg/log"
)

func TestDriverTicksUntilCancelled(t *testing.T) {
	require := require.New(t)

	var ticks atomic.Int64
	d := New("test", 5*time.Millisecond, func(time.Time) error {
		ticks.Add(1)
		return nil
	}, log.NoOp(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	require.Eventually(func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("driver did not stop after cancel")
	}
}

func TestDriverSurvivesTickErrors(t *testing.T) {
	require := require.New(t)

	var ticks atomic.Int64
	d := New("flaky", 5*time.Millisecond, func(time.Time) error {
		ticks.Add(1)
		return errors.New("boom")
	}, log.NoOp(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	// Errors are logged, not fatal: the loop keeps ticking.
	require.Eventually(func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)
}

func TestJitteredWaitBounds(t *testing.T) {
	require := require.New(t)

	d := NewJittered("jitter", 10*time.Millisecond, 50*time.Millisecond, func(time.Time) error { return nil }, log.NoOp(), nil)
	for i := 0; i < 1000; i++ {
		wait := d.nextWait()
		require.GreaterOrEqual(wait, 10*time.Millisecond)
		require.Less(wait, 50*time.Millisecond)
	}

	// max < min collapses to fixed.
	fixed := NewJittered("fixed", 10*time.Millisecond, 5*time.Millisecond, func(time.Time) error { return nil }, log.NoOp(), nil)
	require.Equal(10*time.Millisecond, fixed.nextWait())
}

func TestRegistryStartStop(t *testing.T) {
	require := require.New(t)

	var ticks atomic.Int64
	d := New("test", 5*time.Millisecond, func(time.Time) error {
		ticks.Add(1)
		return nil
	}, log.NoOp(), nil)

	r := NewRegistry(log.NoOp(), d)
	require.False(r.Running())

	r.Start(context.Background())
	require.True(r.Running())

	// Second Start is a no-op while running.
	r.Start(context.Background())
	require.True(r.Running())

	require.Eventually(func() bool { return ticks.Load() >= 1 }, time.Second, time.Millisecond)

	r.Stop()
	require.False(r.Running())

	// Stop on a stopped registry is harmless.
	r.Stop()

	// No more ticks arrive after Stop returns.
	settled := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(settled, ticks.Load())
}

func TestRegistryPerDriverControl(t *testing.T) {
	require := require.New(t)

	var fastTicks, slowTicks atomic.Int64
	fast := New("fast", 5*time.Millisecond, func(time.Time) error {
		fastTicks.Add(1)
		return nil
	}, log.NoOp(), nil)
	slow := New("slow", time.Hour, func(time.Time) error {
		slowTicks.Add(1)
		return nil
	}, log.NoOp(), nil)

	r := NewRegistry(log.NoOp(), fast, slow)
	require.Equal([]string{"fast", "slow"}, r.Names())
	require.Empty(r.Active())

	require.False(r.StartOne(context.Background(), "missing"))
	require.False(r.StopOne("missing"))
	require.False(r.StopOne("fast"))

	require.True(r.StartOne(context.Background(), "fast"))
	require.Equal([]string{"fast"}, r.Active())
	require.True(r.Running())
	require.Eventually(func() bool { return fastTicks.Load() >= 1 }, time.Second, time.Millisecond)

	// Starting the whole set picks up only the stopped driver.
	r.Start(context.Background())
	require.Equal([]string{"fast", "slow"}, r.Active())

	require.True(r.StopOne("fast"))
	require.Equal([]string{"slow"}, r.Active())
	require.True(r.Running())

	settled := fastTicks.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(settled, fastTicks.Load())

	r.Stop()
	require.Empty(r.Active())
	require.False(r.Running())
	require.Zero(slowTicks.Load())
}
