// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/store"
)

func newRecFixture(t *testing.T) (*RecommendationManager, *UserManager, *AssetManager) {
	t.Helper()
	s := store.NewMemory()
	rng := rand.New(rand.NewSource(1))
	return NewRecommendationManager(s, log.NoOp()),
		NewUserManager(s, log.NoOp()),
		NewAssetManager(s, rng, log.NoOp())
}

func TestGenerateForOwnerRules(t *testing.T) {
	require := require.New(t)
	rm, users, assets := newRecFixture(t)
	now := time.Now()

	ownerID, err := users.SignIn("owner@example.com", "Owner", model.RoleDataOwner, "Acme", now)
	require.NoError(err)

	// Behavioral data without sleep data, updated weekly: both rules fire.
	_, err = assets.Create(ownerID, "Fitness Events", "behavioral", 500_000, 168, now)
	require.NoError(err)

	n, err := rm.GenerateForOwner(ownerID, now)
	require.NoError(err)
	require.Equal(2, n)

	recs, err := rm.List(ownerID, "")
	require.NoError(err)
	require.Len(recs, 2)

	// High priority sorts first.
	require.Equal(model.PriorityHigh, recs[0].Doc.Priority)
	require.Equal("Add Sleep Data to Fitness Events", recs[0].Doc.Title)
	require.Contains(recs[0].Doc.Description, "$18,400/month")
	require.Equal(model.PriorityMedium, recs[1].Doc.Priority)
}

func TestGenerateForOwnerNoTriggers(t *testing.T) {
	require := require.New(t)
	rm, users, assets := newRecFixture(t)
	now := time.Now()

	ownerID, err := users.SignIn("owner@example.com", "Owner", model.RoleDataOwner, "Acme", now)
	require.NoError(err)

	// Sleep data present and fresh cadence: nothing fires.
	_, err = assets.Create(ownerID, "Sleep Patterns", "sleep", 500_000, 6, now)
	require.NoError(err)
	_, err = assets.Create(ownerID, "Fitness Events", "behavioral", 500_000, 6, now)
	require.NoError(err)

	n, err := rm.GenerateForOwner(ownerID, now)
	require.NoError(err)
	require.Zero(n)
}

func TestGenerateSkipsMediaBuyers(t *testing.T) {
	require := require.New(t)
	rm, users, _ := newRecFixture(t)
	now := time.Now()

	buyerID, err := users.SignIn("buyer@example.com", "Buyer", model.RoleMediaBuyer, "Nike", now)
	require.NoError(err)

	n, err := rm.GenerateForOwner(buyerID, now)
	require.NoError(err)
	require.Zero(n)
}

func TestRecommendationStatusFlow(t *testing.T) {
	require := require.New(t)
	rm, users, assets := newRecFixture(t)
	now := time.Now()

	ownerID, err := users.SignIn("owner@example.com", "Owner", model.RoleDataOwner, "Acme", now)
	require.NoError(err)
	_, err = assets.Create(ownerID, "Fitness Events", "behavioral", 500_000, 168, now)
	require.NoError(err)

	_, err = rm.GenerateForOwner(ownerID, now)
	require.NoError(err)

	recs, err := rm.List(ownerID, model.RecNew)
	require.NoError(err)
	require.NotEmpty(recs)

	require.NoError(rm.SetStatus(recs[0].ID, model.RecDismissed))

	remaining, err := rm.List(ownerID, model.RecNew)
	require.NoError(err)
	require.Len(remaining, len(recs)-1)

	dismissed, err := rm.List(ownerID, model.RecDismissed)
	require.NoError(err)
	require.Len(dismissed, 1)
}
