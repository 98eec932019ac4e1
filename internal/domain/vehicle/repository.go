package vehicle

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/types"
)

// Repository defines the interface for vehicle data access
type Repository interface {
	Create(ctx context.Context, vehicle *Vehicle) error
	Get(ctx context.Context, id string) (*Vehicle, error)
	List(ctx context.Context, filter *types.QueryFilter) ([]*Vehicle, error)
	Count(ctx context.Context) (int, error)
}
