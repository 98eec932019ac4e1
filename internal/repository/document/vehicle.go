package document

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/cache"
	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/vehicle"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/types"
)

type vehicleRepository struct {
	docs collection[vehicle.Vehicle]
}

func NewVehicleRepository(store docstore.Store, log *logger.Logger, c cache.Cache) vehicle.Repository {
	return &vehicleRepository{
		docs: newCollection[vehicle.Vehicle](store, CollectionVehicles, "vehicle", log).
			cached(c, cache.PrefixVehicle),
	}
}

func (r *vehicleRepository) Create(ctx context.Context, v *vehicle.Vehicle) error {
	return r.docs.put(ctx, v.ID, v)
}

func (r *vehicleRepository) Get(ctx context.Context, id string) (*vehicle.Vehicle, error) {
	return r.docs.get(ctx, id)
}

func (r *vehicleRepository) List(ctx context.Context, filter *types.QueryFilter) ([]*vehicle.Vehicle, error) {
	items, err := r.docs.query(ctx, newestFirst())
	if err != nil {
		return nil, err
	}
	return types.Paginate(items, filter), nil
}

func (r *vehicleRepository) Count(ctx context.Context) (int, error) {
	return r.docs.count(ctx, docstore.NewQuery())
}
