package sequence

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/docstore"
)

// Repository persists partition counters
type Repository interface {
	// NextInTx increments the counter inside tx and returns the new value. A missing
	// counter starts at 1.
	NextInTx(ctx context.Context, tx docstore.Tx, key string) (int, error)

	// Get returns the current value, zero when the counter does not exist
	Get(ctx context.Context, key string) (int, error)

	// Set overwrites the counter
	Set(ctx context.Context, key string, value int) error

	// Stage adds an overwrite of the counter to a batch
	Stage(b docstore.Batch, key string, value int) error
}
