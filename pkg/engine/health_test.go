// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/store"
)

func newHealthFixture(t *testing.T) (*HealthManager, *AssetManager) {
	t.Helper()
	s := store.NewMemory()
	rng := rand.New(rand.NewSource(1))
	return NewHealthManager(s, rng, log.NoOp()), NewAssetManager(s, rng, log.NoOp())
}

func TestHealthCalculate(t *testing.T) {
	require := require.New(t)
	hm, _ := newHealthFixture(t)
	now := time.Now()

	assetID := newTestID()
	ownerID := newTestID()
	require.NoError(hm.Calculate(assetID, ownerID, now))

	score, err := hm.Get(assetID)
	require.NoError(err)
	require.Greater(score.OverallScore, 0.0)
	require.LessOrEqual(score.OverallScore, 100.0)
	require.Len(score.ScoreHistory, 1)
	require.Equal(DayKey(now), score.ScoreHistory[0].Date)
}

func TestHealthHistoryOnePointPerDay(t *testing.T) {
	require := require.New(t)
	hm, _ := newHealthFixture(t)
	now := time.Now()

	assetID := newTestID()
	ownerID := newTestID()

	// Same day twice: the score refreshes, the history does not grow.
	require.NoError(hm.Calculate(assetID, ownerID, now))
	require.NoError(hm.Calculate(assetID, ownerID, now.Add(time.Hour)))

	score, err := hm.Get(assetID)
	require.NoError(err)
	require.Len(score.ScoreHistory, 1)

	// Next day appends.
	require.NoError(hm.Calculate(assetID, ownerID, now.Add(25*time.Hour)))
	score, err = hm.Get(assetID)
	require.NoError(err)
	require.Len(score.ScoreHistory, 2)
}

func TestHealthHistoryTrailingWindow(t *testing.T) {
	require := require.New(t)
	hm, _ := newHealthFixture(t)
	start := time.Now()

	assetID := newTestID()
	ownerID := newTestID()
	for day := 0; day < HealthHistoryDays+10; day++ {
		require.NoError(hm.Calculate(assetID, ownerID, start.Add(time.Duration(day)*24*time.Hour)))
	}

	score, err := hm.Get(assetID)
	require.NoError(err)
	require.Len(score.ScoreHistory, HealthHistoryDays)

	// Oldest retained point is day 10.
	require.Equal(DayKey(start.Add(10*24*time.Hour)), score.ScoreHistory[0].Date)
}

func TestHealthRefresh(t *testing.T) {
	require := require.New(t)
	hm, am := newHealthFixture(t)
	now := time.Now()

	ownerID := newTestID()
	a, err := am.Create(ownerID, "A", "behavioral", 1000, 24, now)
	require.NoError(err)
	b, err := am.Create(ownerID, "B", "demographic", 1000, 24, now)
	require.NoError(err)

	n, err := hm.Refresh(ownerID, now)
	require.NoError(err)
	require.Equal(2, n)

	views, err := hm.ListByOwner(ownerID)
	require.NoError(err)
	require.Len(views, 2)

	_, err = hm.Get(a)
	require.NoError(err)
	_, err = hm.Get(b)
	require.NoError(err)
}

func TestHealthGetNotFound(t *testing.T) {
	require := require.New(t)
	hm, _ := newHealthFixture(t)

	_, err := hm.Get(newTestID())
	require.ErrorIs(err, ErrNotFound)
}
