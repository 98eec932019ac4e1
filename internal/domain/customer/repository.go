package customer

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/types"
)

// Repository defines the interface for customer data access
type Repository interface {
	Create(ctx context.Context, customer *Customer) error
	Get(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context, filter *types.QueryFilter) ([]*Customer, error)
	Count(ctx context.Context) (int, error)
}
