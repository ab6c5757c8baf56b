// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"math"
	"math/rand"

	"github.com/precisexyz/precise/pkg/model"
)

const (
	// ECPMDecayRate models inventory fatigue: 2% per tick.
	ECPMDecayRate = 0.02

	// ECPMFloor bounds the decay so unbounded ticks cannot drive eCPM
	// to zero. A DSP parked at the floor stays classified saturated.
	ECPMFloor = 5.0

	// Status thresholds on the post-decay eCPM.
	ECPMSaturatedBelow = 40.0
	ECPMScalingAbove   = 60.0
)

// ECPMStep is the outcome of one eCPM decay tick.
type ECPMStep struct {
	ECPM   float64
	Trend  float64 // percentage change vs previous value
	Status model.DSPStatus
}

// DecayECPM applies one tick of inventory fatigue to an eCPM value.
func DecayECPM(current float64) ECPMStep {
	next := current * (1 - ECPMDecayRate)
	if next < ECPMFloor {
		next = ECPMFloor
	}
	trend := 0.0
	if current != 0 {
		trend = (next - current) / current * 100
	}
	return ECPMStep{
		ECPM:   Round2(next),
		Trend:  Round1(trend),
		Status: ClassifyECPM(next),
	}
}

// ClassifyECPM maps an eCPM to the DSP status buckets.
func ClassifyECPM(ecpm float64) model.DSPStatus {
	switch {
	case ecpm < ECPMSaturatedBelow:
		return model.DSPSaturated
	case ecpm > ECPMScalingAbove:
		return model.DSPScaling
	default:
		return model.DSPOptimizing
	}
}

// StartingECPM draws the initial eCPM for a newly attached DSP, $70-100.
func StartingECPM(rng *rand.Rand) float64 {
	return Round2(rng.Float64()*30 + 70)
}

// DSPBase is the anchor a sampled DSP row random-walks around.
type DSPBase struct {
	Name     string
	BaseECPM float64
	BaseROAS float64
}

// DefaultDSPBases are the venues the demo dashboard samples.
var DefaultDSPBases = []DSPBase{
	{Name: "MadHive", BaseECPM: 42.50, BaseROAS: 5.2},
	{Name: "The Trade Desk", BaseECPM: 38.20, BaseROAS: 4.8},
	{Name: "Amazon DSP", BaseECPM: 51.30, BaseROAS: 4.2},
	{Name: "Google DV360", BaseECPM: 45.00, BaseROAS: 4.5},
	{Name: "Meta", BaseECPM: 40.00, BaseROAS: 5.0},
}

// DSPSample is one randomized performance reading for a DSP.
type DSPSample struct {
	DSP    string
	Spend  float64
	ECPM   float64
	Trend  float64
	ROAS   float64
	Status model.DSPStatus
}

// SampleDSP draws a randomized performance row around a base. Negative
// eCPM swings are reported with doubled trend weight.
func SampleDSP(rng *rand.Rand, base DSPBase) DSPSample {
	ecpmVariation := (rng.Float64() - 0.5) * 10  // -5 to +5
	roasVariation := (rng.Float64() - 0.5) * 0.5 // -0.25 to +0.25
	spend := 10000 + rng.Float64()*40000

	ecpm := base.BaseECPM + ecpmVariation
	trend := ecpmVariation
	if trend <= 0 {
		trend = ecpmVariation * 2
	}
	roas := math.Max(3, base.BaseROAS+roasVariation)

	var status model.DSPStatus
	switch {
	case trend > 2 && roas > 4.5:
		status = model.DSPScaling
	case trend < -5 || roas < 3.5:
		status = model.DSPSaturated
	default:
		status = model.DSPOptimizing
	}

	return DSPSample{
		DSP:    base.Name,
		Spend:  Round2(spend),
		ECPM:   Round2(ecpm),
		Trend:  Round1(trend),
		ROAS:   Round2(roas),
		Status: status,
	}
}
