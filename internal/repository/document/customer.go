package document

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/cache"
	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/customer"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/types"
)

type customerRepository struct {
	docs collection[customer.Customer]
}

func NewCustomerRepository(store docstore.Store, log *logger.Logger, c cache.Cache) customer.Repository {
	return &customerRepository{
		docs: newCollection[customer.Customer](store, CollectionCustomers, "customer", log).
			cached(c, cache.PrefixCustomer),
	}
}

func (r *customerRepository) Create(ctx context.Context, c *customer.Customer) error {
	return r.docs.put(ctx, c.ID, c)
}

func (r *customerRepository) Get(ctx context.Context, id string) (*customer.Customer, error) {
	return r.docs.get(ctx, id)
}

func (r *customerRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*customer.Customer, error) {
	items, err := r.docs.query(ctx, newestFirst())
	if err != nil {
		return nil, err
	}
	return types.Paginate(items, filter), nil
}

func (r *customerRepository) Count(ctx context.Context) (int, error) {
	return r.docs.count(ctx, docstore.NewQuery())
}
