// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sim holds the pure metric simulators. Each function computes
// the next value of a metric from its current value, a clock reading and
// an injected random source; persistence is the caller's job.
package sim

import (
	"math"
	"time"
)

const (
	// DailySpend is the fixed per-tick campaign spend (~$100k over 60 days).
	DailySpend = 1666.0

	// CACImprovementPerDay is the linear daily CAC improvement once
	// enhanced audience data is live on a campaign.
	CACImprovementPerDay = 0.01

	// CACMultiplierFloor caps the improvement at 35% below baseline.
	CACMultiplierFloor = 0.65

	// BaselineCACFactor puts a campaign's unenhanced CAC 50% above target.
	BaselineCACFactor = 1.5
)

// CampaignTick is the result of one campaign performance update.
type CampaignTick struct {
	Multiplier  float64
	CurrentCAC  float64
	Spend       float64
	Conversions int64
	Revenue     float64
	ROAS        float64
}

// CACMultiplier returns the improvement multiplier for a campaign whose
// enhancement launched at launch. Nil launch means no improvement. The
// curve improves 1% per elapsed day and never drops below the floor.
func CACMultiplier(launch *time.Time, now time.Time) float64 {
	if launch == nil {
		return 1
	}
	days := now.Sub(*launch).Hours() / 24
	return math.Max(CACMultiplierFloor, 1-days*CACImprovementPerDay)
}

// TickCampaign computes one simulation tick for an active campaign.
// Conversions derive from the unrounded CAC; the stored CAC is rounded
// to cents.
func TickCampaign(targetCAC, ltv float64, launch *time.Time, now time.Time) CampaignTick {
	multiplier := CACMultiplier(launch, now)
	currentCAC := targetCAC * BaselineCACFactor * multiplier
	conversions := int64(math.Floor(DailySpend / currentCAC))
	revenue := float64(conversions) * ltv

	return CampaignTick{
		Multiplier:  multiplier,
		CurrentCAC:  Round2(currentCAC),
		Spend:       DailySpend,
		Conversions: conversions,
		Revenue:     revenue,
		ROAS:        revenue / DailySpend,
	}
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
