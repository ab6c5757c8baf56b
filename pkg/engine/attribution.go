// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/sim"
	"github.com/precisexyz/precise/pkg/store"
)

// AttributionManager credits campaign CAC reductions to data assets.
type AttributionManager struct {
	mu    sync.Mutex
	store *store.Store
	rng   *rand.Rand
	log   log.Logger
}

// NewAttributionManager creates an attribution manager.
func NewAttributionManager(s *store.Store, rng *rand.Rand, logger log.Logger) *AttributionManager {
	return &AttributionManager{store: s, rng: rng, log: logger}
}

// Generate distributes the campaign's CAC reduction across up to three
// randomly selected assets using the fixed shares.
func (am *AttributionManager) Generate(campaignID ids.ID, now time.Time) error {
	var campaign model.Campaign
	if err := am.store.Get(model.Campaigns, campaignID, &campaign); err != nil {
		return err
	}

	assets, err := scanAll[model.DataAsset](am.store, model.DataAssets)
	if err != nil {
		return err
	}
	assetIDs := make([]ids.ID, len(assets))
	for i, asset := range assets {
		assetIDs[i] = asset.ID
	}

	am.mu.Lock()
	selected := sim.SelectContributors(am.rng, assetIDs)
	am.mu.Unlock()

	credits := sim.AllocateCredits(campaign.PreviousCAC-campaign.CurrentCAC, selected)

	return am.store.Update(func(tx *store.Txn) error {
		for _, credit := range credits {
			attribution := model.Attribution{
				CampaignID:   campaignID,
				DataSourceID: credit.AssetID,
				CACReduction: credit.CACReduction,
				Percentage:   credit.Percentage,
				Value:        credit.Value,
				Timestamp:    now,
			}
			if err := tx.Insert(model.Attributions, ids.New(), attribution,
				store.Index{Name: model.ByCampaign, Value: campaignID.String()},
				store.Index{Name: model.ByDataSource, Value: credit.AssetID.String()},
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListByCampaign returns a campaign's attribution rows, newest first.
func (am *AttributionManager) ListByCampaign(campaignID ids.ID) ([]Stored[model.Attribution], error) {
	rows, err := fetchAll[model.Attribution](am.store, model.Attributions, model.ByCampaign, campaignID.String())
	if err != nil {
		return nil, err
	}
	sortBy(rows, func(a, b Stored[model.Attribution]) bool {
		return a.Doc.Timestamp.After(b.Doc.Timestamp)
	})
	return rows, nil
}

// ListByAsset returns the attribution rows crediting one asset.
func (am *AttributionManager) ListByAsset(assetID ids.ID) ([]Stored[model.Attribution], error) {
	rows, err := fetchAll[model.Attribution](am.store, model.Attributions, model.ByDataSource, assetID.String())
	if err != nil {
		return nil, err
	}
	sortBy(rows, func(a, b Stored[model.Attribution]) bool {
		return a.Doc.Timestamp.After(b.Doc.Timestamp)
	})
	return rows, nil
}
