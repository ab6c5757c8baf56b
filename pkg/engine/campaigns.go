// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/sim"
	"github.com/precisexyz/precise/pkg/store"
)

// CampaignManager owns campaign lifecycle and the campaign simulation tick.
type CampaignManager struct {
	mu    sync.Mutex
	store *store.Store
	rng   *rand.Rand
	log   log.Logger
}

// NewCampaignManager creates a campaign manager.
func NewCampaignManager(s *store.Store, rng *rand.Rand, logger log.Logger) *CampaignManager {
	return &CampaignManager{store: s, rng: rng, log: logger}
}

// Create inserts a campaign starting above its target CAC, with one
// performance row per attached DSP.
func (cm *CampaignManager) Create(buyerID ids.ID, name string, targetCAC, ltv float64, dsps []string, now time.Time) (ids.ID, error) {
	if name == "" || targetCAC <= 0 || ltv <= 0 {
		return ids.Empty, fmt.Errorf("%w: campaign needs a name, positive target CAC and LTV", ErrValidation)
	}

	campaignID := ids.New()
	campaign := model.Campaign{
		BuyerID:     buyerID,
		Name:        name,
		Status:      model.CampaignActive,
		CurrentCAC:  targetCAC * 1.5, // Start higher
		PreviousCAC: targetCAC * 1.8,
		TargetCAC:   targetCAC,
		LTV:         ltv,
		DSPs:        dsps,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	cm.mu.Lock()
	startECPMs := make([]float64, len(dsps))
	for i := range dsps {
		startECPMs[i] = sim.StartingECPM(cm.rng)
	}
	cm.mu.Unlock()

	err := cm.store.Update(func(tx *store.Txn) error {
		if err := tx.Insert(model.Campaigns, campaignID, campaign,
			store.Index{Name: model.ByBuyer, Value: buyerID.String()},
		); err != nil {
			return err
		}
		for i, dsp := range dsps {
			row := model.DSPPerformance{
				CampaignID:  campaignID,
				DSP:         dsp,
				CurrentECPM: startECPMs[i],
				Status:      model.DSPOptimizing,
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

	cm.log.Info("Campaign created")
	return campaignID, nil
}

// Get loads one campaign.
func (cm *CampaignManager) Get(campaignID ids.ID) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := cm.store.Get(model.Campaigns, campaignID, &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// ListByBuyer returns all campaigns owned by a buyer.
func (cm *CampaignManager) ListByBuyer(buyerID ids.ID) ([]Stored[model.Campaign], error) {
	campaigns, err := fetchAll[model.Campaign](cm.store, model.Campaigns, model.ByBuyer, buyerID.String())
	if err != nil {
		return nil, err
	}
	sortBy(campaigns, func(a, b Stored[model.Campaign]) bool {
		return a.Doc.CreatedAt.Before(b.Doc.CreatedAt)
	})
	return campaigns, nil
}

// ListActive returns every campaign still accruing spend.
func (cm *CampaignManager) ListActive() ([]Stored[model.Campaign], error) {
	campaigns, err := scanAll[model.Campaign](cm.store, model.Campaigns)
	if err != nil {
		return nil, err
	}
	active := campaigns[:0]
	for _, c := range campaigns {
		if c.Doc.Status == model.CampaignActive {
			active = append(active, c)
		}
	}
	return active, nil
}

// History returns up to n most recent history rows for a campaign,
// newest first.
func (cm *CampaignManager) History(campaignID ids.ID, n int) ([]Stored[model.CampaignEvent], error) {
	events, err := fetchAll[model.CampaignEvent](cm.store, model.CampaignEvents, model.ByCampaign, campaignID.String())
	if err != nil {
		return nil, err
	}
	sortBy(events, func(a, b Stored[model.CampaignEvent]) bool {
		return a.Doc.Date.After(b.Doc.Date)
	})
	return limit(events, n), nil
}

// DSPRows returns the performance rows of a campaign, newest first.
func (cm *CampaignManager) DSPRows(campaignID ids.ID, n int) ([]Stored[model.DSPPerformance], error) {
	rows, err := fetchAll[model.DSPPerformance](cm.store, model.DSPRows, model.ByCampaign, campaignID.String())
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Doc.Normalize()
	}
	sortBy(rows, func(a, b Stored[model.DSPPerformance]) bool {
		return a.Doc.Timestamp.After(b.Doc.Timestamp)
	})
	return limit(rows, n), nil
}

// DSPHistory returns one DSP's rows for a campaign over the trailing
// number of days.
func (cm *CampaignManager) DSPHistory(campaignID ids.ID, dsp string, days int, now time.Time) ([]Stored[model.DSPPerformance], error) {
	if days <= 0 {
		days = 30
	}
	cutoff := now.AddDate(0, 0, -days)

	rows, err := fetchAll[model.DSPPerformance](cm.store, model.DSPRows, model.ByCampaign, campaignID.String())
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, row := range rows {
		if row.Doc.DSP == dsp && !row.Doc.Timestamp.Before(cutoff) {
			out = append(out, row)
		}
	}
	sortBy(out, func(a, b Stored[model.DSPPerformance]) bool {
		return a.Doc.Timestamp.Before(b.Doc.Timestamp)
	})
	return out, nil
}

// UpdatePerformance applies an explicit performance report: CAC from
// spend/conversions, accumulated spend and revenue, and a history row.
func (cm *CampaignManager) UpdatePerformance(campaignID ids.ID, spend float64, conversions int64, revenue float64, now time.Time) error {
	return cm.store.Update(func(tx *store.Txn) error {
		var campaign model.Campaign
		if err := tx.Get(model.Campaigns, campaignID, &campaign); err != nil {
			return err
		}

		newCAC := campaign.CurrentCAC
		if conversions > 0 {
			newCAC = spend / float64(conversions)
		}
		newROAS := 0.0
		if spend > 0 {
			newROAS = revenue / spend
		}

		campaign.CurrentCAC = newCAC
		campaign.Spend += spend
		campaign.Revenue += revenue
		campaign.ROAS = newROAS
		campaign.UpdatedAt = now
		if err := tx.Put(model.Campaigns, campaignID, campaign); err != nil {
			return err
		}

		event := model.CampaignEvent{
			CampaignID:  campaignID,
			Date:        now,
			CAC:         newCAC,
			Spend:       spend,
			Conversions: conversions,
			Revenue:     revenue,
		}
		return tx.Insert(model.CampaignEvents, ids.New(), event,
			store.Index{Name: model.ByCampaign, Value: campaignID.String()},
		)
	})
}

// ActivateEnhancement stamps the enhancement launch time and applies the
// immediate 15% CAC improvement.
func (cm *CampaignManager) ActivateEnhancement(campaignID ids.ID, now time.Time) error {
	return cm.store.Update(func(tx *store.Txn) error {
		var campaign model.Campaign
		if err := tx.Get(model.Campaigns, campaignID, &campaign); err != nil {
			return err
		}
		launch := now
		campaign.EnhancementLaunch = &launch
		campaign.CurrentCAC = campaign.CurrentCAC * 0.85
		campaign.UpdatedAt = now
		return tx.Put(model.Campaigns, campaignID, campaign)
	})
}

// SetStatus pauses or resumes a campaign.
func (cm *CampaignManager) SetStatus(campaignID ids.ID, status model.CampaignStatus, now time.Time) error {
	return cm.store.Update(func(tx *store.Txn) error {
		var campaign model.Campaign
		if err := tx.Get(model.Campaigns, campaignID, &campaign); err != nil {
			return err
		}
		campaign.Status = status
		campaign.UpdatedAt = now
		return tx.Put(model.Campaigns, campaignID, campaign)
	})
}

// SimulateTick runs one campaign performance tick: spend accretion, the
// CAC improvement curve, a history row, and eCPM decay on every DSP row.
// Inactive campaigns are skipped.
func (cm *CampaignManager) SimulateTick(campaignID ids.ID, now time.Time) error {
	return cm.store.Update(func(tx *store.Txn) error {
		var campaign model.Campaign
		if err := tx.Get(model.Campaigns, campaignID, &campaign); err != nil {
			return err
		}
		if campaign.Status != model.CampaignActive {
			return nil
		}

		tick := sim.TickCampaign(campaign.TargetCAC, campaign.LTV, campaign.EnhancementLaunch, now)

		campaign.CurrentCAC = tick.CurrentCAC
		campaign.Spend += tick.Spend
		campaign.Revenue += tick.Revenue
		campaign.ROAS = tick.ROAS
		campaign.UpdatedAt = now
		if err := tx.Put(model.Campaigns, campaignID, campaign); err != nil {
			return err
		}

		event := model.CampaignEvent{
			CampaignID:  campaignID,
			Date:        now,
			CAC:         tick.CurrentCAC,
			Spend:       tick.Spend,
			Conversions: tick.Conversions,
			Revenue:     tick.Revenue,
		}
		if err := tx.Insert(model.CampaignEvents, ids.New(), event,
			store.Index{Name: model.ByCampaign, Value: campaignID.String()},
		); err != nil {
			return err
		}

		rows, err := fetchAll[model.DSPPerformance](cm.store, model.DSPRows, model.ByCampaign, campaignID.String())
		if err != nil {
			return err
		}
		for _, row := range rows {
			step := sim.DecayECPM(row.Doc.CurrentECPM)
			row.Doc.CurrentECPM = step.ECPM
			row.Doc.ECPMTrend = step.Trend
			row.Doc.Status = step.Status
			row.Doc.Timestamp = now
			if err := tx.Put(model.DSPRows, row.ID, row.Doc); err != nil {
				return err
			}
		}
		return nil
	})
}

// SampleDSPs inserts one randomized performance row per venue, modeling
// a fresh reading pushed by each DSP.
func (cm *CampaignManager) SampleDSPs(campaignID ids.ID, now time.Time) error {
	var campaign model.Campaign
	if err := cm.store.Get(model.Campaigns, campaignID, &campaign); err != nil {
		return err
	}

	cm.mu.Lock()
	samples := make([]sim.DSPSample, len(sim.DefaultDSPBases))
	for i, base := range sim.DefaultDSPBases {
		samples[i] = sim.SampleDSP(cm.rng, base)
	}
	cm.mu.Unlock()

	return cm.store.Update(func(tx *store.Txn) error {
		for _, sample := range samples {
			row := model.DSPPerformance{
				CampaignID:  campaignID,
				DSP:         sample.DSP,
				Spend:       sample.Spend,
				CurrentECPM: sample.ECPM,
				ECPMTrend:   sample.Trend,
				ROAS:        sample.ROAS,
				Status:      sample.Status,
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
}

// RecordDSPReport patches the named DSP row with externally reported
// spend and eCPM, classifying status from the new eCPM. Used by the DSP
// webhook.
func (cm *CampaignManager) RecordDSPReport(campaignID ids.ID, dsp string, spend, ecpm float64, now time.Time) error {
	rows, err := fetchAll[model.DSPPerformance](cm.store, model.DSPRows, model.ByCampaign, campaignID.String())
	if err != nil {
		return err
	}

	return cm.store.Update(func(tx *store.Txn) error {
		for _, row := range rows {
			if row.Doc.DSP != dsp {
				continue
			}
			trend := 0.0
			if row.Doc.CurrentECPM != 0 {
				trend = (ecpm - row.Doc.CurrentECPM) / row.Doc.CurrentECPM * 100
			}
			row.Doc.Spend += spend
			row.Doc.CurrentECPM = sim.Round2(ecpm)
			row.Doc.ECPMTrend = sim.Round1(trend)
			row.Doc.Status = sim.ClassifyECPM(ecpm)
			row.Doc.Timestamp = now
			return tx.Put(model.DSPRows, row.ID, row.Doc)
		}
		// First report from this venue
		row := model.DSPPerformance{
			CampaignID:  campaignID,
			DSP:         dsp,
			Spend:       spend,
			CurrentECPM: sim.Round2(ecpm),
			Status:      sim.ClassifyECPM(ecpm),
			Timestamp:   now,
		}
		return tx.Insert(model.DSPRows, ids.New(), row,
			store.Index{Name: model.ByCampaign, Value: campaignID.String()},
		)
	})
}
