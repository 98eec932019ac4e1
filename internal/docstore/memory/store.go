// Package memory is an in-process docstore used for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/fleetledger/fleetledger/internal/docstore"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
)

type record struct {
	data    []byte
	version int64
}

// Store keeps documents in memory. Transactions are serialised against each other, but
// plain writes and batches may still land between a transaction's reads and its commit, in
// which case the commit fails its version check and the transaction is retried.
type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	collections map[string]map[string]record
	// clock issues versions so a deleted and recreated document never reuses one
	clock       int64
	maxAttempts int
}

var _ docstore.Store = (*Store)(nil)

// Option configures a Store
type Option func(*Store)

// WithMaxAttempts bounds how often a conflicting transaction is run
func WithMaxAttempts(n int) Option {
	return func(s *Store) {
		s.maxAttempts = n
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]record),
		maxAttempts: docstore.DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func notFound(collection, id string) error {
	return ierr.NewError("document not found").
		WithHintf("%s %s was not found", collection, id).
		WithReportableDetails(map[string]any{
			"collection": collection,
			"id":         id,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *Store) lookup(collection, id string) (record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.collections[collection][id]
	return rec, ok
}

func (s *Store) Get(ctx context.Context, collection, id string, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec, ok := s.lookup(collection, id)
	if !ok {
		return notFound(collection, id)
	}
	return docstore.Decode(rec.data, dst)
}

func (s *Store) Set(ctx context.Context, collection, id string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := docstore.Encode(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(docstore.Op{Kind: docstore.OpSet, Collection: collection, ID: id, Data: data})
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(docstore.Op{Kind: docstore.OpDelete, Collection: collection, ID: id})
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	docs := s.collections[collection]
	snaps := make([]docstore.Snapshot, 0, len(docs))
	for id, rec := range docs {
		snaps = append(snaps, docstore.Snapshot{
			ID:      id,
			Version: rec.version,
			Data:    append([]byte(nil), rec.data...),
		})
	}
	s.mu.RUnlock()
	return q.Apply(snaps), nil
}

// applyLocked must be called with mu held for writing
func (s *Store) applyLocked(op docstore.Op) {
	docs, ok := s.collections[op.Collection]
	if !ok {
		docs = make(map[string]record)
		s.collections[op.Collection] = docs
	}
	switch op.Kind {
	case docstore.OpSet:
		s.clock++
		docs[op.ID] = record{data: op.Data, version: s.clock}
	case docstore.OpDelete:
		delete(docs, op.ID)
	}
}

func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	return docstore.RetryOnConflict(ctx, s.maxAttempts, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tx := &transaction{store: s, reads: make(map[docstore.Key]int64)}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		return tx.commit()
	})
}

func (s *Store) NewBatch() docstore.Batch {
	return &batch{store: s}
}

type transaction struct {
	store  *Store
	reads  map[docstore.Key]int64
	writes docstore.Ops
}

func (t *transaction) Get(ctx context.Context, collection, id string, dst any) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if op, ok := t.writes.Lookup(collection, id); ok {
		if op.Kind == docstore.OpDelete {
			return false, nil
		}
		return true, docstore.Decode(op.Data, dst)
	}

	rec, ok := t.store.lookup(collection, id)
	key := docstore.Key{Collection: collection, ID: id}
	if _, seen := t.reads[key]; !seen {
		// version zero stands for "absent" in the read set
		t.reads[key] = rec.version
	}
	if !ok {
		return false, nil
	}
	return true, docstore.Decode(rec.data, dst)
}

func (t *transaction) Set(collection, id string, doc any) error {
	return t.writes.Set(collection, id, doc)
}

func (t *transaction) Delete(collection, id string) {
	t.writes.Delete(collection, id)
}

func (t *transaction) commit() error {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range t.reads {
		current := s.collections[key.Collection][key.ID]
		if current.version != version {
			return docstore.ErrConflict
		}
	}
	for _, op := range t.writes.List() {
		s.applyLocked(op)
	}
	return nil
}

type batch struct {
	store *Store
	ops   docstore.Ops
}

func (b *batch) Set(collection, id string, doc any) error {
	return b.ops.Set(collection, id, doc)
}

func (b *batch) Delete(collection, id string) {
	b.ops.Delete(collection, id)
}

func (b *batch) Len() int {
	return b.ops.Len()
}

func (b *batch) Commit(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := b.store
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range b.ops.List() {
		s.applyLocked(op)
	}
	return nil
}
