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

// AssetManager owns data asset documents.
type AssetManager struct {
	mu    sync.Mutex
	store *store.Store
	rng   *rand.Rand
	log   log.Logger
}

// NewAssetManager creates an asset manager.
func NewAssetManager(s *store.Store, rng *rand.Rand, logger log.Logger) *AssetManager {
	return &AssetManager{store: s, rng: rng, log: logger}
}

// Create inserts a new asset, scoring its quality from record count and
// update cadence.
func (am *AssetManager) Create(ownerID ids.ID, name, assetType string, recordCount int64, updateFrequency int, now time.Time) (ids.ID, error) {
	if name == "" || recordCount <= 0 {
		return ids.Empty, fmt.Errorf("%w: asset needs a name and a positive record count", ErrValidation)
	}

	quality := sim.QualityScore(recordCount, updateFrequency)

	am.mu.Lock()
	usageRate := sim.DrawUsageRate(am.rng)
	am.mu.Unlock()

	assetID := ids.New()
	asset := model.DataAsset{
		OwnerID:         ownerID,
		Name:            name,
		Type:            assetType,
		QualityScore:    quality,
		RecordCount:     recordCount,
		UpdateFrequency: updateFrequency,
		RevenuePerK:     sim.RevenuePerK(quality),
		IndustryAvgPerK: sim.IndustryAvgPerK,
		UsageRate:       usageRate,
		Status:          model.AssetActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := am.store.Update(func(tx *store.Txn) error {
		return tx.Insert(model.DataAssets, assetID, asset,
			store.Index{Name: model.ByOwner, Value: ownerID.String()},
		)
	})
	if err != nil {
		return ids.Empty, err
	}

	am.log.Info("Data asset created")
	return assetID, nil
}

// Get loads one asset.
func (am *AssetManager) Get(assetID ids.ID) (*model.DataAsset, error) {
	var asset model.DataAsset
	if err := am.store.Get(model.DataAssets, assetID, &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

// ListByOwner returns all assets of an owner.
func (am *AssetManager) ListByOwner(ownerID ids.ID) ([]Stored[model.DataAsset], error) {
	return fetchAll[model.DataAsset](am.store, model.DataAssets, model.ByOwner, ownerID.String())
}

// ActiveByOwner returns the owner's active assets only.
func (am *AssetManager) ActiveByOwner(ownerID ids.ID) ([]Stored[model.DataAsset], error) {
	assets, err := am.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	active := assets[:0]
	for _, asset := range assets {
		if asset.Doc.Status == model.AssetActive {
			active = append(active, asset)
		}
	}
	return active, nil
}

// Update changes an asset's update frequency and/or status, re-scoring
// quality when the cadence changes.
func (am *AssetManager) Update(assetID ids.ID, updateFrequency *int, status *model.AssetStatus, now time.Time) error {
	return am.store.Update(func(tx *store.Txn) error {
		var asset model.DataAsset
		if err := tx.Get(model.DataAssets, assetID, &asset); err != nil {
			return err
		}
		if updateFrequency != nil {
			asset.UpdateFrequency = *updateFrequency
			asset.QualityScore = sim.QualityScore(asset.RecordCount, *updateFrequency)
			asset.RevenuePerK = sim.RevenuePerK(asset.QualityScore)
		}
		if status != nil {
			asset.Status = *status
		}
		asset.UpdatedAt = now
		return tx.Put(model.DataAssets, assetID, asset)
	})
}
