// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/precisexyz/precise/pkg/model"
)

func TestDecayECPM(t *testing.T) {
	require := require.New(t)

	step := DecayECPM(50.00)
	require.InDelta(49.00, step.ECPM, 1e-9)
	require.InDelta(-2.0, step.Trend, 1e-9)
	require.Equal(model.DSPOptimizing, step.Status)
}

func TestDecayECPMFloor(t *testing.T) {
	require := require.New(t)

	step := DecayECPM(5.05)
	require.Equal(ECPMFloor, step.ECPM)
	require.Equal(model.DSPSaturated, step.Status)

	// Parked at the floor: no further decay.
	step = DecayECPM(ECPMFloor)
	require.Equal(ECPMFloor, step.ECPM)
	require.Equal(0.0, step.Trend)
}

func TestClassifyECPM(t *testing.T) {
	require := require.New(t)

	require.Equal(model.DSPSaturated, ClassifyECPM(39.99))
	require.Equal(model.DSPOptimizing, ClassifyECPM(40.00))
	require.Equal(model.DSPOptimizing, ClassifyECPM(60.00))
	require.Equal(model.DSPScaling, ClassifyECPM(60.01))
}

func TestDecayConvergesToFloor(t *testing.T) {
	require := require.New(t)

	ecpm := 100.0
	for i := 0; i < 500; i++ {
		step := DecayECPM(ecpm)
		require.GreaterOrEqual(step.ECPM, ECPMFloor)
		require.LessOrEqual(step.ECPM, ecpm)
		ecpm = step.ECPM
	}
	require.Equal(ECPMFloor, ecpm)
}

func TestStartingECPMRange(t *testing.T) {
	require := require.New(t)
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		ecpm := StartingECPM(rng)
		require.GreaterOrEqual(ecpm, 70.0)
		require.LessOrEqual(ecpm, 100.0)
	}
}

func TestSampleDSPBounds(t *testing.T) {
	require := require.New(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		for _, base := range DefaultDSPBases {
			sample := SampleDSP(rng, base)
			require.Equal(base.Name, sample.DSP)
			require.GreaterOrEqual(sample.Spend, 10000.0)
			require.LessOrEqual(sample.Spend, 50000.0)
			require.InDelta(base.BaseECPM, sample.ECPM, 5.01)
			require.GreaterOrEqual(sample.ROAS, 3.0)
			require.NotEmpty(sample.Status)
		}
	}
}
