// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"math/rand"
)

var (
	brands        = []string{"Nike", "Adidas", "Under Armour", "Peloton", "Apple Fitness"}
	campaignNames = []string{"Summer Fitness", "Morning Warriors", "Premium Athletes"}
)

// EarningDraw is one randomized payout event.
type EarningDraw struct {
	Amount      float64
	Impressions int64
	Campaign    string
}

// DrawEarning generates a random earning: $0.02-$0.15 across 100-1100
// impressions, labeled with a brand x campaign combination.
func DrawEarning(rng *rand.Rand) EarningDraw {
	amount := rng.Float64()*0.13 + 0.02
	impressions := int64(rng.Intn(1000) + 100)
	campaign := brands[rng.Intn(len(brands))] + " " + campaignNames[rng.Intn(len(campaignNames))]

	return EarningDraw{
		Amount:      Round2(amount),
		Impressions: impressions,
		Campaign:    campaign,
	}
}

// QueryTypes are the kinds of buyer queries the usage simulator issues.
var QueryTypes = []string{
	"Audience Segment",
	"Lookalike Modeling",
	"Attribution Analysis",
	"Predictive Scoring",
	"Custom Query",
	"Real-time Activation",
	"Cross-Device Matching",
	"Behavioral Targeting",
}

// DrawQueryType picks a random query type.
func DrawQueryType(rng *rand.Rand) string {
	return QueryTypes[rng.Intn(len(QueryTypes))]
}

// DrawResponseTime samples a query response time, 50-500ms.
func DrawResponseTime(rng *rand.Rand) float64 {
	return 50 + rng.Float64()*450
}
