// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDrawEarningRanges(t *testing.T) {
	require := require.New(t)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 1000; i++ {
		draw := DrawEarning(rng)
		require.GreaterOrEqual(draw.Amount, 0.02)
		require.LessOrEqual(draw.Amount, 0.15)
		require.GreaterOrEqual(draw.Impressions, int64(100))
		require.LessOrEqual(draw.Impressions, int64(1099))

		parts := strings.SplitN(draw.Campaign, " ", 2)
		require.Len(parts, 2)
	}
}

func TestDrawQueryType(t *testing.T) {
	require := require.New(t)
	rng := rand.New(rand.NewSource(11))

	valid := make(map[string]struct{})
	for _, qt := range QueryTypes {
		valid[qt] = struct{}{}
	}
	for i := 0; i < 200; i++ {
		_, ok := valid[DrawQueryType(rng)]
		require.True(ok)
	}
}

func TestDrawResponseTimeRange(t *testing.T) {
	require := require.New(t)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 500; i++ {
		rt := DrawResponseTime(rng)
		require.GreaterOrEqual(rt, 50.0)
		require.LessOrEqual(rt, 500.0)
	}
}
