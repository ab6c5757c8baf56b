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

// UsageManager owns the daily usage buckets.
type UsageManager struct {
	mu    sync.Mutex
	store *store.Store
	users *UserManager
	rng   *rand.Rand
	log   log.Logger
}

// NewUsageManager creates a usage manager.
func NewUsageManager(s *store.Store, users *UserManager, rng *rand.Rand, logger log.Logger) *UsageManager {
	return &UsageManager{store: s, users: users, rng: rng, log: logger}
}

// DayKey formats a timestamp as the usage bucket key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Record logs one buyer query against an asset, upserting the asset's
// bucket for the day. The asset must exist; nothing is written when it
// does not. The embedded query log is capped per day while the counters
// keep accumulating.
func (um *UsageManager) Record(assetID, userID ids.ID, queryType string, responseTime float64, now time.Time) error {
	var asset model.DataAsset
	if err := um.store.Get(model.DataAssets, assetID, &asset); err != nil {
		return fmt.Errorf("record usage: %w", err)
	}

	day := DayKey(now)
	revenuePerK := asset.RevenuePerK
	if revenuePerK == 0 {
		revenuePerK = 10
	}
	queryRevenue := revenuePerK / 1000

	records, err := fetchAll[model.UsageRecord](um.store, model.UsageRecords, model.ByAsset, assetID.String())
	if err != nil {
		return err
	}

	entry := model.QueryRecord{
		UserID:       userID,
		Timestamp:    now,
		QueryType:    queryType,
		ResponseTime: responseTime,
	}

	return um.store.Update(func(tx *store.Txn) error {
		for _, record := range records {
			if record.Doc.Date != day {
				continue
			}
			record.Doc.AccessCount++
			record.Doc.Revenue += queryRevenue
			if len(record.Doc.Queries) < model.MaxQueriesPerDay {
				record.Doc.Queries = append(record.Doc.Queries, entry)
			}
			record.Doc.UniqueUsers = countUniqueUsers(record.Doc.Queries)
			return tx.Put(model.UsageRecords, record.ID, record.Doc)
		}

		// First query of the day for this asset
		record := model.UsageRecord{
			AssetID:     assetID,
			OwnerID:     asset.OwnerID,
			Date:        day,
			AccessCount: 1,
			UniqueUsers: 1,
			Queries:     []model.QueryRecord{entry},
			Revenue:     queryRevenue,
			TopUseCase:  queryType,
		}
		return tx.Insert(model.UsageRecords, ids.New(), record,
			store.Index{Name: model.ByAsset, Value: assetID.String()},
			store.Index{Name: model.ByOwner, Value: asset.OwnerID.String()},
		)
	})
}

// Simulate records one random query: random active asset of the owner,
// random media buyer, random query type.
func (um *UsageManager) Simulate(ownerID ids.ID, now time.Time) error {
	assets, err := fetchAll[model.DataAsset](um.store, model.DataAssets, model.ByOwner, ownerID.String())
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return ErrNoAssets
	}

	buyers, err := um.users.ListByRole(model.RoleMediaBuyer, 5)
	if err != nil {
		return err
	}
	if len(buyers) == 0 {
		return nil // nobody to attribute the query to
	}

	um.mu.Lock()
	asset := assets[um.rng.Intn(len(assets))]
	buyer := buyers[um.rng.Intn(len(buyers))]
	queryType := sim.DrawQueryType(um.rng)
	responseTime := sim.DrawResponseTime(um.rng)
	um.mu.Unlock()

	return um.Record(asset.ID, buyer.ID, queryType, responseTime, now)
}

// ListByOwner returns up to n usage buckets for an owner, newest day first.
func (um *UsageManager) ListByOwner(ownerID ids.ID, n int) ([]Stored[model.UsageRecord], error) {
	records, err := fetchAll[model.UsageRecord](um.store, model.UsageRecords, model.ByOwner, ownerID.String())
	if err != nil {
		return nil, err
	}
	sortBy(records, func(a, b Stored[model.UsageRecord]) bool {
		return a.Doc.Date > b.Doc.Date
	})
	return limit(records, n), nil
}

func countUniqueUsers(queries []model.QueryRecord) int {
	seen := make(map[ids.ID]struct{}, len(queries))
	for _, q := range queries {
		seen[q.UserID] = struct{}{}
	}
	return len(seen)
}
