// Package document implements the domain repositories on top of a docstore.Store.
package document

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/cache"
	"github.com/fleetledger/fleetledger/internal/docstore"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/logger"
)

// Collection names
const (
	CollectionInvoices     = "invoices"
	CollectionCounters     = "counters"
	CollectionCustomers    = "customers"
	CollectionVehicles     = "vehicles"
	CollectionTransporters = "transporters"
	CollectionContracts    = "contracts"
)

const (
	fieldCreatedAt    = "created_at"
	fieldBusinessMode = "business_mode"
	fieldStatus       = "status"
	fieldCustomerID   = "customer_id"
	fieldContractID   = "contract_id"
)

// collection is the typed access to one collection shared by the repositories
type collection[T any] struct {
	store  docstore.Store
	name   string
	entity string
	log    *logger.Logger

	cache       cache.Cache
	cachePrefix string
}

func newCollection[T any](store docstore.Store, name, entity string, log *logger.Logger) collection[T] {
	return collection[T]{store: store, name: name, entity: entity, log: log}
}

// cached serves get from c. Only for collections whose documents never change.
func (c collection[T]) cached(cc cache.Cache, prefix string) collection[T] {
	c.cache = cc
	c.cachePrefix = prefix
	return c
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	if c.cache != nil {
		if hit, ok := c.cache.Get(ctx, cache.GenerateKey(c.cachePrefix, id)); ok {
			if v, ok := hit.(T); ok {
				return &v, nil
			}
		}
	}

	v, err := c.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.cache != nil {
		c.cache.Set(ctx, cache.GenerateKey(c.cachePrefix, id), *v, 0)
	}
	return v, nil
}

func (c collection[T]) load(ctx context.Context, id string) (*T, error) {
	c.log.Debugw("getting document", "collection", c.name, "id", id)

	v := new(T)
	if err := c.store.Get(ctx, c.name, id, v); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("%s not found", c.entity).
				WithReportableDetails(map[string]any{
					c.entity + "_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHintf("Failed to get %s", c.entity).
			Mark(ierr.ErrDatabase)
	}
	return v, nil
}

func (c collection[T]) put(ctx context.Context, id string, v *T) error {
	c.log.Debugw("writing document", "collection", c.name, "id", id)

	if err := c.store.Set(ctx, c.name, id, v); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to save %s", c.entity).
			Mark(ierr.ErrDatabase)
	}
	if c.cache != nil {
		c.cache.Delete(ctx, cache.GenerateKey(c.cachePrefix, id))
	}
	return nil
}

func (c collection[T]) query(ctx context.Context, q docstore.Query) ([]*T, error) {
	snaps, err := c.store.Query(ctx, c.name, q)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to list %s", c.name).
			Mark(ierr.ErrDatabase)
	}
	items, err := docstore.SnapshotsTo[T](snaps)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Failed to decode %s", c.name).
			Mark(ierr.ErrDatabase)
	}
	return items, nil
}

func (c collection[T]) count(ctx context.Context, q docstore.Query) (int, error) {
	snaps, err := c.store.Query(ctx, c.name, q)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHintf("Failed to count %s", c.name).
			Mark(ierr.ErrDatabase)
	}
	return len(snaps), nil
}

func newestFirst() docstore.Query {
	return docstore.NewQuery().Order(fieldCreatedAt, docstore.Desc)
}

func oldestFirst() docstore.Query {
	return docstore.NewQuery().Order(fieldCreatedAt, docstore.Asc)
}
