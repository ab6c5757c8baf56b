// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"math/rand"
)

// HealthMetrics are the dimension sub-scores of an asset, each in [0,100].
type HealthMetrics struct {
	Completeness float64
	Accuracy     float64
	Freshness    float64
	Consistency  float64
	Uniqueness   float64
}

// Overall combines the sub-scores with fixed weights.
func (m HealthMetrics) Overall() float64 {
	score := m.Completeness*0.25 +
		m.Accuracy*0.25 +
		m.Freshness*0.20 +
		m.Consistency*0.15 +
		m.Uniqueness*0.15
	return Clamp(score, 0, 100)
}

// SampleHealth draws one health reading. Each dimension drifts inside
// its own plausible band.
func SampleHealth(rng *rand.Rand) HealthMetrics {
	return HealthMetrics{
		Completeness: Clamp(75+rng.Float64()*20, 0, 100),
		Accuracy:     Clamp(80+rng.Float64()*15, 0, 100),
		Freshness:    Clamp(70+rng.Float64()*25, 0, 100),
		Consistency:  Clamp(85+rng.Float64()*10, 0, 100),
		Uniqueness:   Clamp(90+rng.Float64()*10, 0, 100),
	}
}

// HealthRecommendations maps weak dimensions to remediation advice.
func HealthRecommendations(m HealthMetrics) []string {
	var recs []string
	if m.Completeness < 85 {
		recs = append(recs, "Fill in missing demographic data fields to improve completeness")
	}
	if m.Freshness < 80 {
		recs = append(recs, "Update data more frequently to maintain freshness")
	}
	if m.Accuracy < 90 {
		recs = append(recs, "Implement validation rules to improve data accuracy")
	}
	if m.Consistency < 90 {
		recs = append(recs, "Standardize data formats across all records")
	}
	return recs
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
