// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine holds the per-collection accessors and the mutation
// handlers that keep the demo metrics internally consistent. Every
// handler is one read-modify-write against the document store,
// committed as a single batch.
package engine

import (
	"errors"
	"sort"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/store"
)

var (
	// ErrNotFound is returned when a referenced document is missing and
	// the mutation requires it to exist.
	ErrNotFound = store.ErrNotFound

	// ErrNoAssets is returned by simulators that need at least one asset.
	ErrNoAssets = errors.New("no data assets")

	// ErrValidation is returned for missing required input fields.
	ErrValidation = errors.New("validation failed")
)

// Stored pairs a document with its identifier.
type Stored[T any] struct {
	ID  ids.ID
	Doc T
}

// fetchAll loads every document of a collection matching an index value.
func fetchAll[T any](s *store.Store, collection, index, value string) ([]Stored[T], error) {
	docIDs, err := s.QueryIndex(collection, index, value)
	if err != nil {
		return nil, err
	}
	out := make([]Stored[T], 0, len(docIDs))
	for _, id := range docIDs {
		var doc T
		if err := s.Get(collection, id, &doc); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // index entry outlived its document
			}
			return nil, err
		}
		out = append(out, Stored[T]{ID: id, Doc: doc})
	}
	return out, nil
}

// scanAll loads every document of a collection.
func scanAll[T any](s *store.Store, collection string) ([]Stored[T], error) {
	var out []Stored[T]
	err := s.Scan(collection, func() any { return new(T) }, func(id ids.ID, doc any) bool {
		out = append(out, Stored[T]{ID: id, Doc: *doc.(*T)})
		return true
	})
	return out, err
}

// sortBy orders docs in place by the given less function.
func sortBy[T any](docs []Stored[T], less func(a, b Stored[T]) bool) {
	sort.Slice(docs, func(i, j int) bool { return less(docs[i], docs[j]) })
}

// limit truncates docs to at most n entries; n <= 0 means no limit.
func limit[T any](docs []Stored[T], n int) []Stored[T] {
	if n > 0 && len(docs) > n {
		return docs[:n]
	}
	return docs
}
