package document

import (
	"context"
	"time"

	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/sequence"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/logger"
)

type sequenceRepository struct {
	docs collection[sequence.Counter]
}

func NewSequenceRepository(store docstore.Store, log *logger.Logger) sequence.Repository {
	return &sequenceRepository{
		docs: newCollection[sequence.Counter](store, CollectionCounters, "counter", log),
	}
}

func (r *sequenceRepository) NextInTx(ctx context.Context, tx docstore.Tx, key string) (int, error) {
	var counter sequence.Counter
	found, err := tx.Get(ctx, CollectionCounters, key, &counter)
	if err != nil {
		return 0, err
	}

	next := 1
	if found {
		next = counter.Seq + 1
	}

	if err := tx.Set(CollectionCounters, key, sequence.Counter{Seq: next, UpdatedAt: time.Now().UTC()}); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *sequenceRepository) Get(ctx context.Context, key string) (int, error) {
	counter, err := r.docs.get(ctx, key)
	if err != nil {
		if ierr.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return counter.Seq, nil
}

func (r *sequenceRepository) Set(ctx context.Context, key string, value int) error {
	return r.docs.put(ctx, key, &sequence.Counter{Seq: value, UpdatedAt: time.Now().UTC()})
}

func (r *sequenceRepository) Stage(b docstore.Batch, key string, value int) error {
	return b.Set(CollectionCounters, key, sequence.Counter{Seq: value, UpdatedAt: time.Now().UTC()})
}
