// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"math/rand"
)

// IndustryAvgPerK is the mock industry-average revenue per 1000 records.
const IndustryAvgPerK = 8.3

// QualityScore scores a new asset from its record count and update
// cadence. Base 70, bonuses for volume and freshness, capped at 100.
func QualityScore(recordCount int64, updateFrequencyHours int) float64 {
	score := 70.0

	if recordCount > 1_000_000 {
		score += 10
	} else if recordCount > 100_000 {
		score += 5
	}

	if updateFrequencyHours <= 6 {
		score += 15
	} else if updateFrequencyHours <= 24 {
		score += 10
	}

	return Clamp(score, 0, 100)
}

// RevenuePerK scales the industry average by asset quality.
func RevenuePerK(qualityScore float64) float64 {
	return Round2(IndustryAvgPerK * (qualityScore / 85))
}

// DrawUsageRate samples a usage rate for a new asset, 50-80%.
func DrawUsageRate(rng *rand.Rand) float64 {
	return float64(rng.Intn(30) + 50)
}
