package document

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/contract"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/types"
)

type contractRepository struct {
	docs collection[contract.Contract]
}

func NewContractRepository(store docstore.Store, log *logger.Logger) contract.Repository {
	return &contractRepository{
		docs: newCollection[contract.Contract](store, CollectionContracts, "contract", log),
	}
}

func (r *contractRepository) Create(ctx context.Context, c *contract.Contract) error {
	return r.docs.put(ctx, c.ID, c)
}

func (r *contractRepository) Get(ctx context.Context, id string) (*contract.Contract, error) {
	return r.docs.get(ctx, id)
}

func (r *contractRepository) Update(ctx context.Context, c *contract.Contract) error {
	return r.docs.put(ctx, c.ID, c)
}

func contractQuery(filter *types.ContractFilter) docstore.Query {
	q := newestFirst()
	if filter == nil {
		return q
	}
	if filter.Status != "" {
		q = q.Where(fieldStatus, string(filter.Status))
	}
	if filter.CustomerID != "" {
		q = q.Where(fieldCustomerID, filter.CustomerID)
	}
	return q
}

func (r *contractRepository) List(ctx context.Context, filter *types.ContractFilter) ([]*contract.Contract, error) {
	items, err := r.docs.query(ctx, contractQuery(filter))
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return items, nil
	}
	return types.Paginate(items, filter.QueryFilter), nil
}

func (r *contractRepository) Count(ctx context.Context, filter *types.ContractFilter) (int, error) {
	return r.docs.count(ctx, contractQuery(filter))
}
