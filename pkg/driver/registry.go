// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package driver

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/precisexyz/precise/pkg/analytics"
	"github.com/precisexyz/precise/pkg/engine"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/metric"
	"github.com/precisexyz/precise/pkg/model"
)

// Managers bundles the engine managers the standard drivers run against.
type Managers struct {
	Users        *engine.UserManager
	Assets       *engine.AssetManager
	Campaigns    *engine.CampaignManager
	Earnings     *engine.EarningManager
	Usage        *engine.UsageManager
	Health       *engine.HealthManager
	Attributions *engine.AttributionManager
	Analytics    *analytics.Service
}

// Registry owns a set of named drivers. Each driver can be started and
// stopped independently; Start/Stop without a name act on the whole set.
type Registry struct {
	drivers []*Driver
	byName  map[string]*Driver
	log     log.Logger

	mu      sync.Mutex
	running map[string]*handle
}

type handle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRegistry creates a registry with the given drivers.
func NewRegistry(logger log.Logger, drivers ...*Driver) *Registry {
	byName := make(map[string]*Driver, len(drivers))
	for _, d := range drivers {
		byName[d.Name()] = d
	}
	return &Registry{
		drivers: drivers,
		byName:  byName,
		log:     logger,
		running: make(map[string]*handle),
	}
}

// StandardSet builds the full simulation driver set: campaign ticks,
// earnings, usage, health, attribution, DSP sampling and the pending
// earnings distribution sweep.
func StandardSet(m Managers, logger log.Logger, metrics *metric.Metrics) *Registry {
	drivers := []*Driver{
		New("campaigns", CampaignInterval, func(now time.Time) error {
			campaigns, err := m.Campaigns.ListActive()
			if err != nil {
				return err
			}
			for _, c := range campaigns {
				if err := m.Campaigns.SimulateTick(c.ID, now); err != nil {
					return err
				}
			}
			return nil
		}, logger, metrics),

		NewJittered("earnings", EarningsMinInterval, EarningsMaxInterval, func(now time.Time) error {
			return forEachOwner(m, func(owner engine.Stored[model.User]) error {
				_, err := m.Earnings.Simulate(owner.ID, now)
				if err == engine.ErrNoAssets {
					return nil
				}
				if err == nil && metrics != nil {
					metrics.EarningsCreated.Inc()
				}
				return err
			})
		}, logger, metrics),

		New("usage", UsageInterval, func(now time.Time) error {
			return forEachOwner(m, func(owner engine.Stored[model.User]) error {
				if err := m.Usage.Simulate(owner.ID, now); err != nil && err != engine.ErrNoAssets {
					return err
				}
				return nil
			})
		}, logger, metrics),

		New("health", HealthInterval, func(now time.Time) error {
			return forEachOwner(m, func(owner engine.Stored[model.User]) error {
				_, err := m.Health.Refresh(owner.ID, now)
				return err
			})
		}, logger, metrics),

		New("attribution", AttributionInterval, func(now time.Time) error {
			campaigns, err := m.Campaigns.ListActive()
			if err != nil {
				return err
			}
			for _, c := range campaigns {
				if c.Doc.EnhancementLaunch == nil {
					continue
				}
				if err := m.Attributions.Generate(c.ID, now); err != nil {
					return err
				}
			}
			return nil
		}, logger, metrics),

		New("dsp", DSPInterval, func(now time.Time) error {
			campaigns, err := m.Campaigns.ListActive()
			if err != nil {
				return err
			}
			for _, c := range campaigns {
				if err := m.Campaigns.SampleDSPs(c.ID, now); err != nil {
					return err
				}
			}
			return nil
		}, logger, metrics),

		New("distribution", DistributionInterval, func(now time.Time) error {
			n, err := m.Earnings.Distribute(now)
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("distributed pending earnings: " + strconv.Itoa(n))
			}
			return nil
		}, logger, metrics),
	}

	return NewRegistry(logger, drivers...)
}

func forEachOwner(m Managers, fn func(owner engine.Stored[model.User]) error) error {
	owners, err := m.Users.ListByRole(model.RoleDataOwner, 0)
	if err != nil {
		return err
	}
	for _, owner := range owners {
		if err := fn(owner); err != nil {
			return err
		}
	}
	return nil
}

// Start launches every driver not already running.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drivers {
		r.startLocked(ctx, d)
	}
	r.log.Info("simulation started")
}

// StartOne launches the named driver. Returns false if the name is
// unknown; a driver already running is left alone.
func (r *Registry) StartOne(ctx context.Context, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.byName[name]
	if !ok {
		return false
	}
	r.startLocked(ctx, d)
	return true
}

func (r *Registry) startLocked(ctx context.Context, d *Driver) {
	if _, running := r.running[d.Name()]; running {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	h := &handle{cancel: cancel, done: make(chan struct{})}
	r.running[d.Name()] = h
	go func() {
		defer close(h.done)
		d.Run(runCtx)
	}()
}

// Stop cancels all running drivers and blocks until they exit.
func (r *Registry) Stop() {
	r.mu.Lock()
	handles := make([]*handle, 0, len(r.running))
	for name, h := range r.running {
		h.cancel()
		handles = append(handles, h)
		delete(r.running, name)
	}
	r.mu.Unlock()
	for _, h := range handles {
		<-h.done
	}
	if len(handles) > 0 {
		r.log.Info("simulation stopped")
	}
}

// StopOne cancels the named driver and waits for it to exit. Returns
// false if the name is unknown or the driver is not running.
func (r *Registry) StopOne(name string) bool {
	r.mu.Lock()
	h, ok := r.running[name]
	if ok {
		h.cancel()
		delete(r.running, name)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	<-h.done
	return true
}

// Active returns the names of the running drivers in registration order.
func (r *Registry) Active() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.running))
	for _, d := range r.drivers {
		if _, ok := r.running[d.Name()]; ok {
			names = append(names, d.Name())
		}
	}
	return names
}

// Names returns every registered driver name in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.drivers))
	for _, d := range r.drivers {
		names = append(names, d.Name())
	}
	return names
}

// Running reports whether any driver is currently active.
func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running) > 0
}
