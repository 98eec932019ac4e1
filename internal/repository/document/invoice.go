package document

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/invoice"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/types"
)

type invoiceRepository struct {
	docs collection[invoice.Invoice]
	log  *logger.Logger
}

func NewInvoiceRepository(store docstore.Store, log *logger.Logger) invoice.Repository {
	return &invoiceRepository{
		docs: newCollection[invoice.Invoice](store, CollectionInvoices, "invoice", log),
		log:  log,
	}
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := r.docs.get(ctx, id)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, invoice.ErrNotFound(id)
		}
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	return r.docs.put(ctx, inv.ID, inv)
}

func invoiceQuery(filter *types.InvoiceFilter) docstore.Query {
	q := newestFirst()
	if filter == nil {
		return q
	}
	if filter.BusinessMode != "" {
		q = q.Where(fieldBusinessMode, string(filter.BusinessMode))
	}
	if filter.Status != "" {
		q = q.Where(fieldStatus, string(filter.Status))
	}
	if filter.CustomerID != "" {
		q = q.Where(fieldCustomerID, filter.CustomerID)
	}
	if filter.ContractID != "" {
		q = q.Where(fieldContractID, filter.ContractID)
	}
	return q
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	items, err := r.docs.query(ctx, invoiceQuery(filter))
	if err != nil {
		return nil, err
	}
	if filter == nil {
		return items, nil
	}
	return types.Paginate(items, filter.QueryFilter), nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return r.docs.count(ctx, invoiceQuery(filter))
}

func (r *invoiceRepository) ListByStoredMode(ctx context.Context, mode string) ([]*invoice.Invoice, error) {
	return r.docs.query(ctx, oldestFirst().Where(fieldBusinessMode, mode))
}

func (r *invoiceRepository) ListAll(ctx context.Context) ([]*invoice.Invoice, error) {
	return r.docs.query(ctx, oldestFirst())
}

func (r *invoiceRepository) Latest(ctx context.Context, mode types.BusinessMode) (*invoice.Invoice, error) {
	items, err := r.docs.query(ctx, newestFirst().Where(fieldBusinessMode, string(mode)).Take(1))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items[0], nil
}

func (r *invoiceRepository) CreateInTx(tx docstore.Tx, inv *invoice.Invoice) error {
	if err := tx.Set(CollectionInvoices, inv.ID, inv); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to save invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) Stage(b docstore.Batch, inv *invoice.Invoice) error {
	if err := b.Set(CollectionInvoices, inv.ID, inv); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to save invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *invoiceRepository) StageDelete(b docstore.Batch, id string) {
	r.log.Debugw("staging invoice delete", "invoice_id", id)
	b.Delete(CollectionInvoices, id)
}
