// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/store"
)

func TestSignInCreatesOnce(t *testing.T) {
	require := require.New(t)
	um := NewUserManager(store.NewMemory(), log.NoOp())
	now := time.Now()

	first, err := um.SignIn("Jane@Example.com", "Jane", model.RoleDataOwner, "Acme", now)
	require.NoError(err)

	// Same address in any casing resolves to the same account.
	again, err := um.SignIn("jane@example.COM ", "Jane", model.RoleDataOwner, "Acme", now)
	require.NoError(err)
	require.Equal(first, again)

	user, err := um.Get(first)
	require.NoError(err)
	require.Equal("jane@example.com", user.Email)
	require.Equal(model.RoleDataOwner, user.Role)
	require.False(user.OnboardingCompleted)
}

func TestSignInValidation(t *testing.T) {
	require := require.New(t)
	um := NewUserManager(store.NewMemory(), log.NoOp())

	_, err := um.SignIn("  ", "Jane", model.RoleDataOwner, "Acme", time.Now())
	require.ErrorIs(err, ErrValidation)
}

func TestListByRole(t *testing.T) {
	require := require.New(t)
	um := NewUserManager(store.NewMemory(), log.NoOp())
	now := time.Now()

	_, err := um.SignIn("a@example.com", "A", model.RoleDataOwner, "", now)
	require.NoError(err)
	_, err = um.SignIn("b@example.com", "B", model.RoleDataOwner, "", now)
	require.NoError(err)
	_, err = um.SignIn("c@example.com", "C", model.RoleMediaBuyer, "", now)
	require.NoError(err)

	owners, err := um.ListByRole(model.RoleDataOwner, 0)
	require.NoError(err)
	require.Len(owners, 2)

	buyers, err := um.ListByRole(model.RoleMediaBuyer, 0)
	require.NoError(err)
	require.Len(buyers, 1)
	require.Equal("c@example.com", buyers[0].Doc.Email)
}

func TestCompleteOnboarding(t *testing.T) {
	require := require.New(t)
	um := NewUserManager(store.NewMemory(), log.NoOp())

	id, err := um.SignIn("a@example.com", "A", model.RoleDataOwner, "", time.Now())
	require.NoError(err)

	require.NoError(um.CompleteOnboarding(id))

	user, err := um.Get(id)
	require.NoError(err)
	require.True(user.OnboardingCompleted)

	require.ErrorIs(um.CompleteOnboarding(newTestID()), ErrNotFound)
}
