// Copyright (C) 2025, Precise XYZ, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/memdb"

	"github.com/precisexyz/precise/pkg/ids"
	"github.com/precisexyz/precise/pkg/metric"
)

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("document not found")
)

// Key layout:
//
//	d/<collection>/<id>                     -> JSON document
//	x/<collection>/<index>/<value>/<id>     -> empty (secondary index entry)
//
// Index entries are written once at insert time; indexed fields are
// immutable references (owner, buyer, campaign, asset, email). Mutable
// fields are filtered scan-side by callers.

// Index is a secondary index entry for a document.
type Index struct {
	Name  string
	Value string
}

// Store is a collection-oriented document store over luxfi's database
// interface. Every mutation commits through a single batch, so each
// mutation is individually atomic.
type Store struct {
	db       database.Database
	notifier *Notifier
	metrics  *metric.Metrics
}

// SetMetrics attaches read/write counters to the store. Optional.
func (s *Store) SetMetrics(m *metric.Metrics) {
	s.metrics = m
}

// New creates a new store instance using luxfi/database
func New(dbType string, path string) (*Store, error) {
	var db database.Database
	var err error

	switch dbType {
	case "memory":
		db = memdb.New()
	case "badger":
		db, err = badgerdb.New(path, nil, "", nil)
		if err != nil {
			return nil, err
		}
	default:
		// Default to badger
		db, err = badgerdb.New(path, nil, "", nil)
		if err != nil {
			return nil, err
		}
	}

	return &Store{db: db, notifier: NewNotifier()}, nil
}

// NewMemory creates an in-memory store, used in tests.
func NewMemory() *Store {
	return &Store{db: memdb.New(), notifier: NewNotifier()}
}

// Notifier returns the change notifier for this store.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

func docKey(collection string, id ids.ID) []byte {
	return []byte("d/" + collection + "/" + id.String())
}

func indexKey(collection string, idx Index, id ids.ID) []byte {
	return []byte("x/" + collection + "/" + idx.Name + "/" + idx.Value + "/" + id.String())
}

func indexPrefix(collection, index, value string) []byte {
	return []byte("x/" + collection + "/" + index + "/" + value + "/")
}

func docPrefix(collection string) []byte {
	return []byte("d/" + collection + "/")
}

// Get reads a single document into out.
func (s *Store) Get(collection string, id ids.ID, out any) error {
	raw, err := s.db.Get(docKey(collection, id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("%s %s: %w", collection, id, ErrNotFound)
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.DocumentsRead.Inc()
	}
	return json.Unmarshal(raw, out)
}

// Has reports whether a document exists.
func (s *Store) Has(collection string, id ids.ID) (bool, error) {
	return s.db.Has(docKey(collection, id))
}

// QueryIndex returns the ids of all documents with the given index value.
func (s *Store) QueryIndex(collection, index, value string) ([]ids.ID, error) {
	prefix := indexPrefix(collection, index, value)
	it := s.db.NewIteratorWithPrefix(prefix)
	defer it.Release()

	var out []ids.ID
	for it.Next() {
		key := it.Key()
		idHex := string(key[len(prefix):])
		id, err := ids.FromString(idHex)
		if err != nil {
			return nil, fmt.Errorf("corrupt index key %q: %w", key, err)
		}
		out = append(out, id)
	}
	return out, it.Error()
}

// Scan walks every document in a collection, decoding each into a value
// produced by newDoc and passing it to fn. fn returning false stops the
// scan early.
func (s *Store) Scan(collection string, newDoc func() any, fn func(id ids.ID, doc any) bool) error {
	prefix := docPrefix(collection)
	it := s.db.NewIteratorWithPrefix(prefix)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		id, err := ids.FromString(string(key[len(prefix):]))
		if err != nil {
			return fmt.Errorf("corrupt document key %q: %w", key, err)
		}
		doc := newDoc()
		if err := json.Unmarshal(it.Value(), doc); err != nil {
			return fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		if !fn(id, doc) {
			break
		}
	}
	return it.Error()
}

// Update runs fn inside a write transaction. All writes issued through
// the transaction commit in one batch; if fn returns an error nothing
// is written.
func (s *Store) Update(fn func(tx *Txn) error) error {
	start := time.Now()
	tx := &Txn{store: s, batch: s.db.NewBatch()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.batch.Write(); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.DocumentsWritten.Add(float64(len(tx.changes)))
		s.metrics.MutationDuration.Observe(time.Since(start).Seconds())
	}
	for _, ch := range tx.changes {
		s.notifier.Publish(ch)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.notifier.Close()
	return s.db.Close()
}

// Txn collects the writes of a single mutation. Reads observe committed
// state only; a mutation never sees another mutation's uncommitted output.
type Txn struct {
	store   *Store
	batch   database.Batch
	changes []Change
}

// Get reads a document within the transaction.
func (tx *Txn) Get(collection string, id ids.ID, out any) error {
	return tx.store.Get(collection, id, out)
}

// Insert writes a new document and its index entries.
func (tx *Txn) Insert(collection string, id ids.ID, doc any, indexes ...Index) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := tx.batch.Put(docKey(collection, id), raw); err != nil {
		return err
	}
	for _, idx := range indexes {
		if err := tx.batch.Put(indexKey(collection, idx, id), nil); err != nil {
			return err
		}
	}
	tx.changes = append(tx.changes, Change{Collection: collection, ID: id})
	return nil
}

// Put overwrites an existing document in place. Index entries are not
// touched; indexed fields are immutable by convention.
func (tx *Txn) Put(collection string, id ids.ID, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if err := tx.batch.Put(docKey(collection, id), raw); err != nil {
		return err
	}
	tx.changes = append(tx.changes, Change{Collection: collection, ID: id})
	return nil
}

// Delete removes a document. Its index entries are removed too.
func (tx *Txn) Delete(collection string, id ids.ID, indexes ...Index) error {
	if err := tx.batch.Delete(docKey(collection, id)); err != nil {
		return err
	}
	for _, idx := range indexes {
		if err := tx.batch.Delete(indexKey(collection, idx, id)); err != nil {
			return err
		}
	}
	tx.changes = append(tx.changes, Change{Collection: collection, ID: id})
	return nil
}
