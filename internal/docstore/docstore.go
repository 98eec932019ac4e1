// Package docstore describes the document database the back office persists to. Documents
// are addressed by collection and id, carry a monotonically increasing version, and are
// written either one at a time, in an optimistic transaction, or in an atomic batch.
package docstore

import (
	"context"
)

// Store is implemented by every backend (memory, dynamodb)
type Store interface {
	// Get decodes the document into dst. Missing documents return an error marked ierr.ErrNotFound.
	Get(ctx context.Context, collection, id string, dst any) error
	// Set creates or replaces the document
	Set(ctx context.Context, collection, id string, doc any) error
	// Delete removes the document; deleting a missing document is not an error
	Delete(ctx context.Context, collection, id string) error
	// Query returns the documents of a collection matching q
	Query(ctx context.Context, collection string, q Query) ([]Snapshot, error)
	// RunTransaction runs fn in an optimistic transaction. Every document read through the
	// transaction must still be at the version read when the writes commit, otherwise fn is
	// run again. fn may therefore run more than once and must not have side effects outside tx.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// NewBatch starts a write batch that is committed atomically
	NewBatch() Batch
}

// Tx is the view of the store inside RunTransaction. Writes are buffered until commit.
type Tx interface {
	// Get decodes the document into dst. found is false when the document does not exist;
	// its absence is still part of the transaction's read set.
	Get(ctx context.Context, collection, id string, dst any) (found bool, err error)
	Set(collection, id string, doc any) error
	Delete(collection, id string)
}

// Batch accumulates writes without reading
type Batch interface {
	Set(collection, id string, doc any) error
	Delete(collection, id string)
	Len() int
	Commit(ctx context.Context) error
}

// Snapshot is a document as returned by Query
type Snapshot struct {
	ID      string
	Version int64
	Data    []byte
}

// DataTo decodes the snapshot into dst
func (s Snapshot) DataTo(dst any) error {
	return Decode(s.Data, dst)
}

// SnapshotsTo decodes every snapshot with a constructor for the element type
func SnapshotsTo[T any](snaps []Snapshot) ([]*T, error) {
	out := make([]*T, 0, len(snaps))
	for _, s := range snaps {
		v := new(T)
		if err := s.DataTo(v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// OpKind is the kind of a buffered write
type OpKind int

const (
	OpSet OpKind = iota
	OpDelete
)

// Op is a buffered write shared by transaction and batch implementations
type Op struct {
	Kind       OpKind
	Collection string
	ID         string
	Data       []byte
}

// Key identifies a document
type Key struct {
	Collection string
	ID         string
}

func (o Op) Key() Key {
	return Key{Collection: o.Collection, ID: o.ID}
}

// Ops buffers writes, keeping only the last write per document
type Ops struct {
	order []Key
	byKey map[Key]Op
}

func (o *Ops) Set(collection, id string, doc any) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	o.put(Op{Kind: OpSet, Collection: collection, ID: id, Data: data})
	return nil
}

func (o *Ops) Delete(collection, id string) {
	o.put(Op{Kind: OpDelete, Collection: collection, ID: id})
}

func (o *Ops) put(op Op) {
	if o.byKey == nil {
		o.byKey = make(map[Key]Op)
	}
	k := op.Key()
	if _, ok := o.byKey[k]; !ok {
		o.order = append(o.order, k)
	}
	o.byKey[k] = op
}

// Lookup returns the pending write for a document, if any
func (o *Ops) Lookup(collection, id string) (Op, bool) {
	op, ok := o.byKey[Key{Collection: collection, ID: id}]
	return op, ok
}

// List returns the pending writes in first-write order
func (o *Ops) List() []Op {
	out := make([]Op, 0, len(o.order))
	for _, k := range o.order {
		out = append(out, o.byKey[k])
	}
	return out
}

func (o *Ops) Len() int {
	return len(o.order)
}
