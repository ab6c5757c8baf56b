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

// HealthHistoryDays bounds the per-asset score history.
const HealthHistoryDays = 30

// HealthManager owns asset health scores.
type HealthManager struct {
	mu    sync.Mutex
	store *store.Store
	rng   *rand.Rand
	log   log.Logger
}

// NewHealthManager creates a health manager.
func NewHealthManager(s *store.Store, rng *rand.Rand, logger log.Logger) *HealthManager {
	return &HealthManager{store: s, rng: rng, log: logger}
}

// Calculate samples a fresh health reading for one asset and upserts
// its score document. The daily history gains at most one point per day
// and keeps the trailing 30.
func (hm *HealthManager) Calculate(assetID, ownerID ids.ID, now time.Time) error {
	hm.mu.Lock()
	metrics := sim.SampleHealth(hm.rng)
	hm.mu.Unlock()

	overall := metrics.Overall()
	recommendations := sim.HealthRecommendations(metrics)
	day := DayKey(now)

	existing, err := fetchAll[model.HealthScore](hm.store, model.HealthScores, model.ByAsset, assetID.String())
	if err != nil {
		return err
	}

	return hm.store.Update(func(tx *store.Txn) error {
		if len(existing) > 0 {
			score := existing[0]
			history := score.Doc.ScoreHistory
			if len(history) == 0 || history[len(history)-1].Date != day {
				history = append(history, model.ScorePoint{Date: day, Score: overall})
				if len(history) > HealthHistoryDays {
					history = history[len(history)-HealthHistoryDays:]
				}
			}
			score.Doc.OverallScore = overall
			score.Doc.Completeness = metrics.Completeness
			score.Doc.Accuracy = metrics.Accuracy
			score.Doc.Freshness = metrics.Freshness
			score.Doc.Consistency = metrics.Consistency
			score.Doc.Uniqueness = metrics.Uniqueness
			score.Doc.Recommendations = recommendations
			score.Doc.ScoreHistory = history
			score.Doc.LastUpdated = now
			return tx.Put(model.HealthScores, score.ID, score.Doc)
		}

		score := model.HealthScore{
			AssetID:         assetID,
			OwnerID:         ownerID,
			OverallScore:    overall,
			Completeness:    metrics.Completeness,
			Accuracy:        metrics.Accuracy,
			Freshness:       metrics.Freshness,
			Consistency:     metrics.Consistency,
			Uniqueness:      metrics.Uniqueness,
			Recommendations: recommendations,
			ScoreHistory:    []model.ScorePoint{{Date: day, Score: overall}},
			LastUpdated:     now,
		}
		return tx.Insert(model.HealthScores, ids.New(), score,
			store.Index{Name: model.ByAsset, Value: assetID.String()},
			store.Index{Name: model.ByOwner, Value: ownerID.String()},
		)
	})
}

// Refresh recalculates health for every asset of an owner, returning
// how many assets were touched.
func (hm *HealthManager) Refresh(ownerID ids.ID, now time.Time) (int, error) {
	assets, err := fetchAll[model.DataAsset](hm.store, model.DataAssets, model.ByOwner, ownerID.String())
	if err != nil {
		return 0, err
	}
	for _, asset := range assets {
		if err := hm.Calculate(asset.ID, ownerID, now); err != nil {
			return 0, err
		}
	}
	return len(assets), nil
}

// Get returns the health score for one asset, or ErrNotFound.
func (hm *HealthManager) Get(assetID ids.ID) (*model.HealthScore, error) {
	scores, err := fetchAll[model.HealthScore](hm.store, model.HealthScores, model.ByAsset, assetID.String())
	if err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("health score for asset %s: %w", assetID, ErrNotFound)
	}
	return &scores[0].Doc, nil
}

// HealthView is a health score joined with its asset's name and type.
type HealthView struct {
	ID        ids.ID `json:"id"`
	AssetName string `json:"assetName"`
	AssetType string `json:"assetType"`
	model.HealthScore
}

// ListByOwner returns all health scores of an owner with asset labels.
func (hm *HealthManager) ListByOwner(ownerID ids.ID) ([]HealthView, error) {
	scores, err := fetchAll[model.HealthScore](hm.store, model.HealthScores, model.ByOwner, ownerID.String())
	if err != nil {
		return nil, err
	}
	views := make([]HealthView, 0, len(scores))
	for _, score := range scores {
		view := HealthView{ID: score.ID, AssetName: "Unknown Asset", AssetType: "Unknown Type", HealthScore: score.Doc}
		var asset model.DataAsset
		if err := hm.store.Get(model.DataAssets, score.Doc.AssetID, &asset); err == nil {
			view.AssetName = asset.Name
			view.AssetType = asset.Type
		}
		views = append(views, view)
	}
	return views, nil
}
