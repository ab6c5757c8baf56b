// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"math/rand"

	"github.com/precisexyz/precise/pkg/ids"
)

// AttributionPercentages are the fixed pre-computed credit weights in
// whole percent, applied to contributing assets in rank order. This is
// a fixed-weight approximation of Shapley credit allocation, not a
// computed cooperative-game value.
var AttributionPercentages = []float64{41, 29, 22}

// AttributionShares are the same weights as fractions of the total.
var AttributionShares = fractions(AttributionPercentages)

func fractions(percentages []float64) []float64 {
	shares := make([]float64, len(percentages))
	for i, p := range percentages {
		shares[i] = p / 100
	}
	return shares
}

// ConversionDenominator converts a per-conversion CAC reduction into a
// dollar value, assuming a constant 1000 conversions.
const ConversionDenominator = 1000.0

// Credit is one asset's slice of a campaign's CAC reduction.
type Credit struct {
	AssetID      ids.ID
	Share        float64
	CACReduction float64
	Percentage   float64
	Value        float64
}

// SelectContributors picks up to three assets uniformly at random.
func SelectContributors(rng *rand.Rand, assets []ids.ID) []ids.ID {
	shuffled := make([]ids.ID, len(assets))
	copy(shuffled, assets)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > len(AttributionShares) {
		shuffled = shuffled[:len(AttributionShares)]
	}
	return shuffled
}

// AllocateCredits splits totalReduction across the selected assets using
// the fixed shares, in order. The shares sum to 0.92, so allocated
// credit never exceeds the total reduction.
func AllocateCredits(totalReduction float64, selected []ids.ID) []Credit {
	credits := make([]Credit, 0, len(selected))
	for i, assetID := range selected {
		share := AttributionShares[i]
		reduction := totalReduction * share
		credits = append(credits, Credit{
			AssetID:      assetID,
			Share:        share,
			CACReduction: Round2(reduction),
			Percentage:   AttributionPercentages[i],
			Value:        reduction * ConversionDenominator,
		})
	}
	return credits
}
