package document

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/cache"
	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/transporter"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/types"
)

type transporterRepository struct {
	docs collection[transporter.Transporter]
}

func NewTransporterRepository(store docstore.Store, log *logger.Logger, c cache.Cache) transporter.Repository {
	return &transporterRepository{
		docs: newCollection[transporter.Transporter](store, CollectionTransporters, "transporter", log).
			cached(c, cache.PrefixTransporter),
	}
}

func (r *transporterRepository) Create(ctx context.Context, t *transporter.Transporter) error {
	return r.docs.put(ctx, t.ID, t)
}

func (r *transporterRepository) Get(ctx context.Context, id string) (*transporter.Transporter, error) {
	return r.docs.get(ctx, id)
}

func (r *transporterRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*transporter.Transporter, error) {
	items, err := r.docs.query(ctx, newestFirst())
	if err != nil {
		return nil, err
	}
	return types.Paginate(items, filter), nil
}

func (r *transporterRepository) Count(ctx context.Context) (int, error) {
	return r.docs.count(ctx, docstore.NewQuery())
}
