package transporter

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/types"
)

// Repository defines the interface for transporter data access
type Repository interface {
	Create(ctx context.Context, transporter *Transporter) error
	Get(ctx context.Context, id string) (*Transporter, error)
	List(ctx context.Context, filter *types.QueryFilter) ([]*Transporter, error)
	Count(ctx context.Context) (int, error)
}
