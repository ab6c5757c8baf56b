// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/log"
	"github.com/precisexyz/precise/pkg/model"
	"github.com/precisexyz/precise/pkg/store"
)

// UserManager owns account documents.
type UserManager struct {
	store *store.Store
	log   log.Logger
}

// NewUserManager creates a user manager.
func NewUserManager(s *store.Store, logger log.Logger) *UserManager {
	return &UserManager{store: s, log: logger}
}

// SignIn returns the existing user with the given email, creating one
// on first sight.
func (um *UserManager) SignIn(email, name string, role model.Role, company string, now time.Time) (ids.ID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return ids.Empty, fmt.Errorf("%w: email required", ErrValidation)
	}

	existing, err := um.store.QueryIndex(model.Users, model.ByEmail, email)
	if err != nil {
		return ids.Empty, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}

	userID := ids.New()
	user := model.User{
		Email:     email,
		Name:      name,
		Role:      role,
		Company:   company,
		CreatedAt: now,
	}
	err = um.store.Update(func(tx *store.Txn) error {
		return tx.Insert(model.Users, userID, user,
			store.Index{Name: model.ByEmail, Value: email},
			store.Index{Name: model.ByRole, Value: string(role)},
		)
	})
	if err != nil {
		return ids.Empty, err
	}

	um.log.Info("User created")
	return userID, nil
}

// Get loads one user.
func (um *UserManager) Get(userID ids.ID) (*model.User, error) {
	var user model.User
	if err := um.store.Get(model.Users, userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListByRole returns up to n users with the given role.
func (um *UserManager) ListByRole(role model.Role, n int) ([]Stored[model.User], error) {
	users, err := fetchAll[model.User](um.store, model.Users, model.ByRole, string(role))
	if err != nil {
		return nil, err
	}
	return limit(users, n), nil
}

// CompleteOnboarding flips the onboarding flag.
func (um *UserManager) CompleteOnboarding(userID ids.ID) error {
	return um.store.Update(func(tx *store.Txn) error {
		var user model.User
		if err := tx.Get(model.Users, userID, &user); err != nil {
			return err
		}
		user.OnboardingCompleted = true
		return tx.Put(model.Users, userID, user)
	})
}
