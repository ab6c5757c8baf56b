// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"fmt"
	"time"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/store"
)

// RecommendationManager owns optimization recommendations. Rows change
// only by explicit user action.
type RecommendationManager struct {
	store *store.Store
	log   log.Logger
}

// NewRecommendationManager creates a recommendation manager.
func NewRecommendationManager(s *store.Store, logger log.Logger) *RecommendationManager {
	return &RecommendationManager{store: s, log: logger}
}

// GenerateForOwner derives recommendations from an owner's asset mix:
// missing complementary data types and stale update cadences.
func (rm *RecommendationManager) GenerateForOwner(userID ids.ID, now time.Time) (int, error) {
	var user model.User
	if err := rm.store.Get(model.Users, userID, &user); err != nil {
		return 0, err
	}
	if user.Role != model.RoleDataOwner {
		return 0, nil
	}

	assets, err := fetchAll[model.DataAsset](rm.store, model.DataAssets, model.ByOwner, userID.String())
	if err != nil {
		return 0, err
	}

	hasType := make(map[string]bool)
	staleAssets := 0
	for _, asset := range assets {
		hasType[asset.Doc.Type] = true
		if asset.Doc.UpdateFrequency > 24 {
			staleAssets++
		}
	}

	var recs []model.Recommendation
	if !hasType["sleep"] && hasType["behavioral"] {
		recs = append(recs, model.Recommendation{
			UserID:      userID,
			Type:        "data_optimization",
			Priority:    model.PriorityHigh,
			Title:       "Add Sleep Data to Fitness Events",
			Description: "Cohorts with sleep + fitness data earn 3.2x higher CPMs. Your estimated additional revenue: +$18,400/month",
			Impact:      model.Impact{Type: "revenue", Value: 18400},
			Status:      model.RecNew,
			CreatedAt:   now,
		})
	}
	if staleAssets > 0 {
		recs = append(recs, model.Recommendation{
			UserID:      userID,
			Type:        "data_optimization",
			Priority:    model.PriorityMedium,
			Title:       "Increase Update Frequency",
			Description: fmt.Sprintf("%d of your assets update less than once a day. Fresher data commands higher usage rates.", staleAssets),
			Impact:      model.Impact{Type: "usage", Value: float64(staleAssets)},
			Status:      model.RecNew,
			CreatedAt:   now,
		})
	}

	err = rm.store.Update(func(tx *store.Txn) error {
		for _, rec := range recs {
			if err := tx.Insert(model.Recs, ids.New(), rec,
				store.Index{Name: model.ByOwner, Value: userID.String()},
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(recs), nil
}

// List returns a user's recommendations, optionally filtered by status,
// highest priority first.
func (rm *RecommendationManager) List(userID ids.ID, status model.RecStatus) ([]Stored[model.Recommendation], error) {
	recs, err := fetchAll[model.Recommendation](rm.store, model.Recs, model.ByOwner, userID.String())
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i].Doc.Normalize()
	}
	if status != "" {
		filtered := recs[:0]
		for _, rec := range recs {
			if rec.Doc.Status == status {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}
	sortBy(recs, func(a, b Stored[model.Recommendation]) bool {
		return model.PriorityRank(a.Doc.Priority) < model.PriorityRank(b.Doc.Priority)
	})
	return recs, nil
}

// SetStatus applies a user action (viewed/applied/dismissed) to one
// recommendation.
func (rm *RecommendationManager) SetStatus(recID ids.ID, status model.RecStatus) error {
	return rm.store.Update(func(tx *store.Txn) error {
		var rec model.Recommendation
		if err := tx.Get(model.Recs, recID, &rec); err != nil {
			return err
		}
		rec.Status = status
		return tx.Put(model.Recs, recID, rec)
	})
}
