package invoice

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Get retrieves an invoice by ID
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update replaces a stored invoice
	Update(ctx context.Context, invoice *Invoice) error

	// List retrieves invoices matching the filter, newest first
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the number of invoices matching the filter
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// ListByStoredMode returns the invoices whose business_mode equals mode exactly, oldest first
	ListByStoredMode(ctx context.Context, mode string) ([]*Invoice, error)

	// ListAll returns every invoice, oldest first
	ListAll(ctx context.Context) ([]*Invoice, error)

	// Latest returns the most recently created invoice of a partition, or nil
	Latest(ctx context.Context, mode types.BusinessMode) (*Invoice, error)

	// CreateInTx writes a new invoice inside a transaction
	CreateInTx(tx docstore.Tx, invoice *Invoice) error

	// Stage adds the write of an invoice to a batch
	Stage(b docstore.Batch, invoice *Invoice) error

	// StageDelete adds the removal of an invoice to a batch
	StageDelete(b docstore.Batch, id string)
}
