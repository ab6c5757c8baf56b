// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCACMultiplierNoLaunch(t *testing.T) {
	require := require.New(t)

	require.Equal(1.0, CACMultiplier(nil, time.Now()))
}

func TestCACMultiplierImprovement(t *testing.T) {
	require := require.New(t)
	now := time.Now()

	launch := now.Add(-10 * 24 * time.Hour)
	require.InDelta(0.90, CACMultiplier(&launch, now), 1e-9)

	launch = now.Add(-30 * 24 * time.Hour)
	require.InDelta(0.70, CACMultiplier(&launch, now), 1e-9)
}

func TestCACMultiplierFloor(t *testing.T) {
	require := require.New(t)
	now := time.Now()

	// 35 days hits the floor exactly; anything later stays there.
	launch := now.Add(-35 * 24 * time.Hour)
	require.InDelta(CACMultiplierFloor, CACMultiplier(&launch, now), 1e-9)

	launch = now.Add(-365 * 24 * time.Hour)
	require.Equal(CACMultiplierFloor, CACMultiplier(&launch, now))
}

func TestTickCampaignBaseline(t *testing.T) {
	require := require.New(t)

	tick := TickCampaign(28.00, 131.04, nil, time.Now())
	require.InDelta(42.00, tick.CurrentCAC, 1e-9)
	require.Equal(int64(39), tick.Conversions)
	require.InDelta(39*131.04, tick.Revenue, 1e-6)
	require.InDelta(tick.Revenue/DailySpend, tick.ROAS, 1e-9)
}

func TestTickCampaignEnhanced(t *testing.T) {
	require := require.New(t)
	now := time.Now()
	launch := now.Add(-30 * 24 * time.Hour)

	tick := TickCampaign(28.00, 131.04, &launch, now)
	require.InDelta(0.70, tick.Multiplier, 1e-9)
	require.InDelta(29.40, tick.CurrentCAC, 1e-9)
	require.Equal(int64(56), tick.Conversions)
	require.InDelta(7338.24, tick.Revenue, 1e-6)
	require.InDelta(4.4047, tick.ROAS, 1e-4)
	require.Equal(DailySpend, tick.Spend)
}

func TestTickCampaignMonotonicImprovement(t *testing.T) {
	require := require.New(t)
	now := time.Now()

	prev := TickCampaign(30.00, 150.00, nil, now)
	for days := 1; days <= 40; days++ {
		launch := now.Add(-time.Duration(days) * 24 * time.Hour)
		tick := TickCampaign(30.00, 150.00, &launch, now)
		require.LessOrEqual(tick.CurrentCAC, prev.CurrentCAC)
		require.GreaterOrEqual(tick.Conversions, prev.Conversions)
		prev = tick
	}

	// Fully saturated: CAC at 65% of baseline.
	launch := now.Add(-40 * 24 * time.Hour)
	tick := TickCampaign(30.00, 150.00, &launch, now)
	require.InDelta(30.00*BaselineCACFactor*CACMultiplierFloor, tick.CurrentCAC, 0.01)
}

func TestRounding(t *testing.T) {
	require := require.New(t)

	require.Equal(29.4, Round2(29.399999))
	require.Equal(8.3, Round1(8.34))
	require.Equal(8.4, Round1(8.36))
}
