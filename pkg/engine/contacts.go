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

// ContactManager owns form submissions and leads.
type ContactManager struct {
	store *store.Store
	log   log.Logger
}

// NewContactManager creates a contact manager.
func NewContactManager(s *store.Store, logger log.Logger) *ContactManager {
	return &ContactManager{store: s, log: logger}
}

// Create stores a contact submission. Defaults are resolved before the
// write so read sites never see empty source/status.
func (cm *ContactManager) Create(contact model.Contact, now time.Time) (ids.ID, error) {
	if contact.Name == "" || contact.Email == "" || contact.Message == "" {
		return ids.Empty, fmt.Errorf("%w: name, email and message required", ErrValidation)
	}
	contact.Normalize()
	contact.CreatedAt = now

	contactID := ids.New()
	err := cm.store.Update(func(tx *store.Txn) error {
		return tx.Insert(model.Contacts, contactID, contact,
			store.Index{Name: model.ByEmail, Value: contact.Email},
		)
	})
	if err != nil {
		return ids.Empty, err
	}

	cm.log.Info("Contact stored")
	return contactID, nil
}

// FindByEmail returns prior submissions from the same address.
func (cm *ContactManager) FindByEmail(email string) ([]Stored[model.Contact], error) {
	return fetchAll[model.Contact](cm.store, model.Contacts, model.ByEmail, email)
}

// List returns every contact, newest first.
func (cm *ContactManager) List() ([]Stored[model.Contact], error) {
	contacts, err := scanAll[model.Contact](cm.store, model.Contacts)
	if err != nil {
		return nil, err
	}
	for i := range contacts {
		contacts[i].Doc.Normalize()
	}
	sortBy(contacts, func(a, b Stored[model.Contact]) bool {
		return a.Doc.CreatedAt.After(b.Doc.CreatedAt)
	})
	return contacts, nil
}
