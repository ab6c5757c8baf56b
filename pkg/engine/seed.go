// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"math"
	"time"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/sim"
	"github.com/precisexyz/precise/pkg/store"
)

// SeedDefaultAssets creates the starter assets for a new data owner.
func (am *AssetManager) SeedDefaultAssets(ownerID ids.ID, now time.Time) ([]ids.ID, error) {
	defaults := []model.DataAsset{
		{
			OwnerID:         ownerID,
			Name:            "Fitness Activity Events",
			Type:            "behavioral",
			QualityScore:    94,
			RecordCount:     2_300_000,
			UpdateFrequency: 24,
			RevenuePerK:     12.5,
			IndustryAvgPerK: 8.3,
			UsageRate:       78,
			MonthlyRevenue:  23400,
			Status:          model.AssetActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
		{
			OwnerID:         ownerID,
			Name:            "User Demographics",
			Type:            "demographic",
			QualityScore:    88,
			RecordCount:     1_500_000,
			UpdateFrequency: 168, // Weekly
			RevenuePerK:     6.2,
			IndustryAvgPerK: 7.1,
			UsageRate:       45,
			MonthlyRevenue:  11200,
			Status:          model.AssetActive,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}

	created := make([]ids.ID, 0, len(defaults))
	err := am.store.Update(func(tx *store.Txn) error {
		for _, asset := range defaults {
			assetID := ids.New()
			if err := tx.Insert(model.DataAssets, assetID, asset,
				store.Index{Name: model.ByOwner, Value: ownerID.String()},
			); err != nil {
				return err
			}
			created = append(created, assetID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SeedDefaultCampaign creates the demo campaign for a new media buyer:
// 60 days of history, three DSP rows, and an enhancement launch 30 days
// back so the improvement curve is mid-flight.
func (cm *CampaignManager) SeedDefaultCampaign(buyerID ids.ID, now time.Time) (ids.ID, error) {
	launch := now.AddDate(0, 0, -30)
	campaignID := ids.New()
	campaign := model.Campaign{
		BuyerID:           buyerID,
		Name:              "Nike Summer Fitness 2025",
		Status:            model.CampaignActive,
		CurrentCAC:        31.20,
		PreviousCAC:       47.50,
		TargetCAC:         28.00,
		LTV:               131.04,
		EnhancementLaunch: &launch,
		Spend:             100000,
		Revenue:           500000,
		ROAS:              5.0,
		DSPs:              []string{"madhive", "ttd", "amazon"},
		CreatedAt:         now.AddDate(0, 0, -60),
		UpdatedAt:         now,
	}

	type dspSeed struct {
		name   string
		spend  float64
		ecpm   float64
		trend  float64
		roas   float64
		status model.DSPStatus
	}
	dsps := []dspSeed{
		{name: "madhive", spend: 45000, ecpm: 42.50, trend: -12, roas: 5.2, status: model.DSPOptimizing},
		{name: "ttd", spend: 32000, ecpm: 38.20, trend: -18, roas: 4.8, status: model.DSPSaturated},
		{name: "amazon", spend: 23000, ecpm: 51.30, trend: -5, roas: 4.2, status: model.DSPScaling},
	}

	err := cm.store.Update(func(tx *store.Txn) error {
		if err := tx.Insert(model.Campaigns, campaignID, campaign,
			store.Index{Name: model.ByBuyer, Value: buyerID.String()},
		); err != nil {
			return err
		}

		// Two-phase history: decline toward launch, then the improvement
		// curve after enhanced data went live.
		for i := 60; i >= 0; i-- {
			date := now.AddDate(0, 0, -i)
			var cac float64
			if i > 30 {
				cac = 47.50 - (17.50-float64(i))*0.3
			} else {
				cac = 31.20 + float64(i)*0.5
			}
			cac = sim.Round2(cac)
			event := model.CampaignEvent{
				CampaignID:  campaignID,
				Date:        date,
				CAC:         cac,
				Spend:       sim.DailySpend,
				Conversions: int64(math.Floor(sim.DailySpend / cac)),
				Revenue:     8333, // ~500k over 60 days
			}
			if err := tx.Insert(model.CampaignEvents, ids.New(), event,
				store.Index{Name: model.ByCampaign, Value: campaignID.String()},
			); err != nil {
				return err
			}
		}

		for _, dsp := range dsps {
			row := model.DSPPerformance{
				CampaignID:  campaignID,
				DSP:         dsp.name,
				Spend:       dsp.spend,
				CurrentECPM: dsp.ecpm,
				ECPMTrend:   dsp.trend,
				ROAS:        dsp.roas,
				Status:      dsp.status,
				Timestamp:   now,
			}
			if err := tx.Insert(model.DSPRows, ids.New(), row,
				store.Index{Name: model.ByCampaign, Value: campaignID.String()},
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ids.Empty, err
	}

	cm.log.Info("Default campaign seeded")
	return campaignID, nil
}
