package contract

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/types"
)

// Repository defines the interface for contract data access
type Repository interface {
	Create(ctx context.Context, contract *Contract) error
	Get(ctx context.Context, id string) (*Contract, error)
	Update(ctx context.Context, contract *Contract) error
	List(ctx context.Context, filter *types.ContractFilter) ([]*Contract, error)
	Count(ctx context.Context, filter *types.ContractFilter) (int, error)
}
