// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package driver runs the background simulation loops. Each driver owns
// one recurring task (campaign ticks, earnings, usage, health, DSP
// sampling) and runs it on its own cadence until the context is
// cancelled. Tick errors are logged and counted but never stop a loop.
package driver

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/metric"
)

// Tick cadences for the simulation drivers.
const (
	CampaignInterval     = 30 * time.Second
	EarningsMinInterval  = 2 * time.Second
	EarningsMaxInterval  = 5 * time.Second
	UsageInterval        = 10 * time.Second
	HealthInterval       = 60 * time.Second
	AttributionInterval  = 45 * time.Second
	DSPInterval          = 20 * time.Second
	DistributionInterval = 5 * time.Minute
)

// TickFunc runs one simulation step at the given time.
type TickFunc func(now time.Time) error

// Driver runs a TickFunc on a schedule. With jitter enabled the wait
// between ticks is drawn uniformly from [minInterval, maxInterval];
// otherwise minInterval is used as a fixed period.
type Driver struct {
	name        string
	minInterval time.Duration
	maxInterval time.Duration
	tick        TickFunc
	log         log.Logger
	metrics     *metric.Metrics

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a fixed-interval driver.
func New(name string, interval time.Duration, tick TickFunc, logger log.Logger, m *metric.Metrics) *Driver {
	return NewJittered(name, interval, interval, tick, logger, m)
}

// NewJittered creates a driver whose inter-tick delay varies uniformly
// between min and max.
func NewJittered(name string, min, max time.Duration, tick TickFunc, logger log.Logger, m *metric.Metrics) *Driver {
	if max < min {
		max = min
	}
	return &Driver{
		name:        name,
		minInterval: min,
		maxInterval: max,
		tick:        tick,
		log:         logger,
		metrics:     m,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Name returns the driver's name.
func (d *Driver) Name() string {
	return d.name
}

func (d *Driver) nextWait() time.Duration {
	if d.maxInterval == d.minInterval {
		return d.minInterval
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.minInterval + time.Duration(d.rng.Int63n(int64(d.maxInterval-d.minInterval)))
}

// Run loops until ctx is cancelled. Errors from individual ticks are
// logged at WARN and counted; the loop keeps going.
func (d *Driver) Run(ctx context.Context) {
	if d.metrics != nil {
		d.metrics.ActiveDrivers.Inc()
		defer d.metrics.ActiveDrivers.Dec()
	}

	d.log.Info("driver started: " + d.name)
	timer := time.NewTimer(d.nextWait())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("driver stopped: " + d.name)
			return
		case now := <-timer.C:
			if err := d.tick(now); err != nil {
				if d.metrics != nil {
					d.metrics.TickFailures.WithLabelValues(d.name).Inc()
				}
				d.log.Warn("driver tick failed: " + d.name + ": " + err.Error())
			} else if d.metrics != nil {
				d.metrics.SimulationTicks.WithLabelValues(d.name).Inc()
			}
			timer.Reset(d.nextWait())
		}
	}
}
