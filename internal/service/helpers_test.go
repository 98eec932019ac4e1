package service

import (
	"context"
	"time"

	"github.com/fleetledger/fleetledger/internal/api/dto"
	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/customer"
	"github.com/fleetledger/fleetledger/internal/domain/invoice"
	"github.com/fleetledger/fleetledger/internal/testutil"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/shopspring/decimal"
)

func newTestParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	return newTestParamsWith(s, s.GetStore(), s.GetConfig())
}

// newTestParamsWith builds the service dependencies over another store or configuration
func newTestParamsWith(s *testutil.BaseServiceTestSuite, store docstore.Store, cfg *config.Configuration) ServiceParams {
	stores := testutil.NewStores(store, s.GetLogger())
	return NewServiceParams(
		s.GetLogger(),
		cfg,
		store,
		stores.InvoiceRepo,
		stores.SequenceRepo,
		stores.CustomerRepo,
		stores.VehicleRepo,
		stores.TransporterRepo,
		stores.ContractRepo,
		s.GetPublisher(),
	)
}

func numPtr(s string) *types.Number {
	return types.NumberPtr(decimal.RequireFromString(s))
}

func decimalOf(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func b2cItem(description, quantity, rate string) dto.InvoiceItemRequest {
	return dto.InvoiceItemRequest{
		Description: description,
		WorkDate:    "2024-03-04",
		Quantity:    numPtr(quantity),
		Rate:        numPtr(rate),
	}
}

func b2bRequest(items ...dto.InvoiceItemRequest) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		BusinessMode:    types.BusinessModeB2B,
		CustomerName:    "Gulf Freight LLC",
		CustomerTRN:     "100234567800003",
		CustomerAddress: "Jebel Ali Free Zone, Dubai",
		Items:           items,
	}
}

func createTestCustomer(ctx context.Context, repo customer.Repository) *customer.Customer {
	c := &customer.Customer{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:      "Al Noor Trading",
		TRN:       "100000000000003",
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := repo.Create(ctx, c); err != nil {
		panic(err)
	}
	return c
}

// storedInvoice writes an invoice directly, bypassing numbering, the way older
// deployments left them
func storedInvoice(ctx context.Context, repo invoice.Repository, mode string, seq int, createdAt time.Time) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:           types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		BusinessMode: types.BusinessMode(mode),
		Status:       types.InvoiceStatusPending,
		Items: []invoice.LineItem{
			invoice.NewAmountLine(invoice.LineItem{Quantity: types.NewNumber(1), Rate: numPtr("100")}),
		},
		BaseModel: types.BaseModel{CreatedAt: createdAt, UpdatedAt: createdAt},
	}
	if seq > 0 {
		inv.Renumber(seq)
	}
	inv.Recalculate()
	if err := repo.Update(ctx, inv); err != nil {
		panic(err)
	}
	return inv
}
