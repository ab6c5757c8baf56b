// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/sim"
	"github.com/precisexyz/precise/pkg/store"
)

// DistributionDelay is how long an earning stays pending before the
// sweep marks it distributed.
const DistributionDelay = time.Hour

// EarningManager owns the append-only earnings log.
type EarningManager struct {
	mu     sync.Mutex
	store  *store.Store
	assets *AssetManager
	rng    *rand.Rand
	log    log.Logger
}

// NewEarningManager creates an earning manager.
func NewEarningManager(s *store.Store, assets *AssetManager, rng *rand.Rand, logger log.Logger) *EarningManager {
	return &EarningManager{store: s, assets: assets, rng: rng, log: logger}
}

// Create appends one earning row.
func (em *EarningManager) Create(ownerID, assetID ids.ID, amount float64, campaign string, impressions int64, now time.Time) (ids.ID, error) {
	earningID := ids.New()
	earning := model.Earning{
		OwnerID:     ownerID,
		AssetID:     assetID,
		Amount:      amount,
		Campaign:    campaign,
		Impressions: impressions,
		Timestamp:   now,
		Status:      model.EarningPending,
	}
	err := em.store.Update(func(tx *store.Txn) error {
		return tx.Insert(model.Earnings, earningID, earning,
			store.Index{Name: model.ByOwner, Value: ownerID.String()},
			store.Index{Name: model.ByAsset, Value: assetID.String()},
		)
	})
	if err != nil {
		return ids.Empty, err
	}
	return earningID, nil
}

// Simulate generates one random earning against one of the owner's
// active assets.
func (em *EarningManager) Simulate(ownerID ids.ID, now time.Time) (ids.ID, error) {
	assets, err := em.assets.ActiveByOwner(ownerID)
	if err != nil {
		return ids.Empty, err
	}
	if len(assets) == 0 {
		return ids.Empty, ErrNoAssets
	}

	em.mu.Lock()
	asset := assets[em.rng.Intn(len(assets))]
	draw := sim.DrawEarning(em.rng)
	em.mu.Unlock()

	return em.Create(ownerID, asset.ID, draw.Amount, draw.Campaign, draw.Impressions, now)
}

// EarningView is an earning joined with its asset name.
type EarningView struct {
	ID    ids.ID        `json:"id"`
	Asset string        `json:"asset"`
	model.Earning
}

// List returns up to n earnings for an owner, oldest first, each joined
// with its asset name.
func (em *EarningManager) List(ownerID ids.ID, n int) ([]EarningView, error) {
	if n <= 0 {
		n = 50
	}
	earnings, err := fetchAll[model.Earning](em.store, model.Earnings, model.ByOwner, ownerID.String())
	if err != nil {
		return nil, err
	}
	sortBy(earnings, func(a, b Stored[model.Earning]) bool {
		return a.Doc.Timestamp.Before(b.Doc.Timestamp)
	})
	earnings = limit(earnings, n)

	views := make([]EarningView, 0, len(earnings))
	for _, earning := range earnings {
		assetName := "Unknown Asset"
		if asset, err := em.assets.Get(earning.Doc.AssetID); err == nil {
			assetName = asset.Name
		}
		views = append(views, EarningView{ID: earning.ID, Asset: assetName, Earning: earning.Doc})
	}
	return views, nil
}

// Stats are the owner's earning rollups. Amounts are decimal so cent
// sums stay exact across many small rows.
type Stats struct {
	Today   decimal.Decimal `json:"today"`
	Total   decimal.Decimal `json:"total"`
	Pending decimal.Decimal `json:"pending"`
	Count   int             `json:"count"`
}

// StatsFor aggregates an owner's earnings into daily/total/pending sums.
func (em *EarningManager) StatsFor(ownerID ids.ID, now time.Time) (*Stats, error) {
	earnings, err := fetchAll[model.Earning](em.store, model.Earnings, model.ByOwner, ownerID.String())
	if err != nil {
		return nil, err
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	stats := &Stats{Count: len(earnings)}
	for _, earning := range earnings {
		amount := decimal.NewFromFloat(earning.Doc.Amount)
		if !earning.Doc.Timestamp.Before(midnight) {
			stats.Today = stats.Today.Add(amount)
		}
		switch earning.Doc.Status {
		case model.EarningDistributed:
			stats.Total = stats.Total.Add(amount)
		case model.EarningPending:
			stats.Pending = stats.Pending.Add(amount)
		}
	}
	return stats, nil
}

// Distribute flips pending earnings older than the distribution delay
// to distributed, returning how many changed.
func (em *EarningManager) Distribute(now time.Time) (int, error) {
	cutoff := now.Add(-DistributionDelay)

	earnings, err := scanAll[model.Earning](em.store, model.Earnings)
	if err != nil {
		return 0, err
	}

	changed := 0
	err = em.store.Update(func(tx *store.Txn) error {
		for _, earning := range earnings {
			if earning.Doc.Status != model.EarningPending || !earning.Doc.Timestamp.Before(cutoff) {
				continue
			}
			earning.Doc.Status = model.EarningDistributed
			if err := tx.Put(model.Earnings, earning.ID, earning.Doc); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}
