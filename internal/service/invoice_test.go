package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fleetledger/fleetledger/internal/api/dto"
	"github.com/fleetledger/fleetledger/internal/domain/contract"
	"github.com/fleetledger/fleetledger/internal/domain/customer"
	"github.com/fleetledger/fleetledger/internal/domain/invoice"
	"github.com/fleetledger/fleetledger/internal/domain/transporter"
	"github.com/fleetledger/fleetledger/internal/domain/vehicle"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/testutil"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  InvoiceService
	customer *customer.Customer
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(newTestParams(&s.BaseServiceTestSuite))
	s.customer = createTestCustomer(s.GetContext(), s.GetStores().CustomerRepo)
}

func (s *InvoiceServiceSuite) b2cRequest(items ...dto.InvoiceItemRequest) dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		BusinessMode: types.BusinessModeB2C,
		CustomerID:   s.customer.ID,
		Items:        items,
	}
}

func (s *InvoiceServiceSuite) counter(mode types.BusinessMode) int {
	v, err := s.GetStores().SequenceRepo.Get(s.GetContext(), mode.SequenceKey())
	s.Require().NoError(err)
	return v
}

func (s *InvoiceServiceSuite) TestCreateInvoice_B2C() {
	resp, err := s.service.CreateInvoice(s.GetContext(), s.b2cRequest(
		b2cItem("Sand haulage", "2", "100"),
		b2cItem("Waiting time", "1", "50"),
	))
	s.Require().NoError(err)

	s.Equal(types.BusinessModeB2C, resp.BusinessMode)
	s.Equal(1, *resp.Sequence)
	s.Equal(invoice.FormatNumber(resp.CreatedAt, 1), resp.InvoiceNumber)
	s.Equal(types.InvoiceStatusPending, resp.Status)

	s.Require().Len(resp.Items, 2)
	s.True(decimalOf("210").Equal(resp.Items[0].BillTotal.Decimal))
	s.True(decimalOf("2.5").Equal(resp.Items[1].TaxAmount.Decimal))

	s.True(decimalOf("250").Equal(resp.Subtotal.Decimal))
	s.True(decimalOf("12.5").Equal(resp.TaxAmount.Decimal))
	s.True(decimalOf("12.5").Equal(resp.VAT5Percent.Decimal))
	s.True(decimalOf("262.5").Equal(resp.GrandTotal.Decimal))
	s.Equal("two hundred sixty two and five fils", resp.TotalInWords)

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(resp.InvoiceNumber, stored.InvoiceNumber)
	s.Equal(1, s.counter(types.BusinessModeB2C))

	s.True(s.GetPublisher().HasEvent(types.EventInvoiceCreated))
}

func (s *InvoiceServiceSuite) TestCreateInvoice_B2B() {
	resp, err := s.service.CreateInvoice(s.GetContext(), b2bRequest(
		dto.InvoiceItemRequest{Quantity: numPtr("3"), Rate: numPtr("100")},
	))
	s.Require().NoError(err)

	s.True(decimalOf("300").Equal(resp.Items[0].Amount.Decimal))
	s.True(decimalOf("300").Equal(resp.Subtotal.Decimal))
	s.True(decimalOf("15").Equal(resp.TaxAmount.Decimal))
	s.True(decimalOf("315").Equal(resp.GrandTotal.Decimal))
	s.Equal(types.CargoStatusAwaitingPickup, resp.CargoStatus)
	s.Equal(types.TransporterPaymentUnpaid, resp.TransporterPaymentStatus)
	s.Equal(1, *resp.Sequence)
}

func (s *InvoiceServiceSuite) TestCreateInvoice_BackdatedNumberUsesInvoiceDate() {
	req := s.b2cRequest(b2cItem("Sand haulage", "1", "100"))
	req.InvoiceDate = lo.ToPtr(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Require().NoError(err)
	s.Equal("INV-202503-0001", resp.InvoiceNumber)
	s.Equal(2025, resp.CreatedAt.Year())
	s.Equal(time.March, resp.CreatedAt.Month())
}

func (s *InvoiceServiceSuite) TestCreateInvoice_PartitionsNumberIndependently() {
	ctx := s.GetContext()
	for i := 0; i < 2; i++ {
		_, err := s.service.CreateInvoice(ctx, s.b2cRequest(b2cItem("Trip", "1", "10")))
		s.Require().NoError(err)
	}
	b2b, err := s.service.CreateInvoice(ctx, b2bRequest(
		dto.InvoiceItemRequest{Quantity: numPtr("1"), Rate: numPtr("10")},
	))
	s.Require().NoError(err)

	s.Equal(1, *b2b.Sequence)
	s.Equal(2, s.counter(types.BusinessModeB2C))
	s.Equal(1, s.counter(types.BusinessModeB2B))
}

func (s *InvoiceServiceSuite) TestCreateInvoice_ConcurrentCallersGetDistinctNumbers() {
	ctx := s.GetContext()
	const callers = 20

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		sequences []int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := s.service.CreateInvoice(ctx, s.b2cRequest(b2cItem("Trip", "1", "10")))
			if !s.NoError(err) {
				return
			}
			mu.Lock()
			sequences = append(sequences, *resp.Sequence)
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Len(sequences, callers)
	s.ElementsMatch(lo.RangeFrom(1, callers), sequences)
	s.Equal(callers, s.counter(types.BusinessModeB2C))
}

func (s *InvoiceServiceSuite) TestCreateInvoice_Validation() {
	tests := []struct {
		name string
		req  dto.CreateInvoiceRequest
	}{
		{
			name: "b2c without customer",
			req: dto.CreateInvoiceRequest{
				BusinessMode: types.BusinessModeB2C,
				Items:        []dto.InvoiceItemRequest{b2cItem("Trip", "1", "10")},
			},
		},
		{
			name: "b2c item without work date",
			req: s.b2cRequest(dto.InvoiceItemRequest{
				Description: "Trip",
				Quantity:    numPtr("1"),
				Rate:        numPtr("10"),
			}),
		},
		{
			name: "b2b without trn",
			req: dto.CreateInvoiceRequest{
				BusinessMode:    types.BusinessModeB2B,
				CustomerName:    "Gulf Freight LLC",
				CustomerAddress: "Dubai",
				Items:           []dto.InvoiceItemRequest{{Quantity: numPtr("1"), Rate: numPtr("1")}},
			},
		},
		{
			name: "zero quantity",
			req:  b2bRequest(dto.InvoiceItemRequest{Quantity: numPtr("0"), Rate: numPtr("1")}),
		},
		{
			name: "unknown business mode",
			req: dto.CreateInvoiceRequest{
				BusinessMode: "export",
				CustomerID:   s.customer.ID,
				Items:        []dto.InvoiceItemRequest{b2cItem("Trip", "1", "10")},
			},
		},
		{
			name: "no items",
			req:  s.b2cRequest(),
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.service.CreateInvoice(s.GetContext(), tt.req)
			s.Require().Error(err)
			s.True(ierr.IsValidation(err), "got %v", err)
		})
	}

	// nothing was numbered
	s.Equal(0, s.counter(types.BusinessModeB2C))
	s.Equal(0, s.counter(types.BusinessModeB2B))
}

func (s *InvoiceServiceSuite) TestCreateInvoice_UnknownReferences() {
	req := s.b2cRequest(b2cItem("Trip", "1", "10"))
	req.CustomerID = "cust_missing"
	_, err := s.service.CreateInvoice(s.GetContext(), req)
	s.True(ierr.IsNotFound(err))

	req = s.b2cRequest(b2cItem("Trip", "1", "10"))
	req.ContractID = "ctr_missing"
	_, err = s.service.CreateInvoice(s.GetContext(), req)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoice_FallsBackWhenTransactionsFail() {
	ctx := s.GetContext()
	storedInvoice(ctx, s.GetStores().InvoiceRepo, "b2c", 7, time.Now().UTC().Add(-time.Hour))

	store := testutil.NewTxUnavailableStore(s.GetStore())
	svc := NewInvoiceService(newTestParamsWith(&s.BaseServiceTestSuite, store, s.GetConfig()))

	resp, err := svc.CreateInvoice(ctx, s.b2cRequest(b2cItem("Trip", "1", "10")))
	s.Require().NoError(err)
	s.Equal(1, store.Attempts)
	s.Equal(8, *resp.Sequence)
	s.Equal(invoice.FormatNumber(resp.CreatedAt, 8), resp.InvoiceNumber)
	s.Equal(8, s.counter(types.BusinessModeB2C))
}

func (s *InvoiceServiceSuite) TestCreateInvoice_FallbackDisabled() {
	cfg := *s.GetConfig()
	cfg.Invoice.SequenceFallback = false
	store := testutil.NewTxUnavailableStore(s.GetStore())
	svc := NewInvoiceService(newTestParamsWith(&s.BaseServiceTestSuite, store, &cfg))

	_, err := svc.CreateInvoice(s.GetContext(), s.b2cRequest(b2cItem("Trip", "1", "10")))
	s.Require().Error(err)
	s.True(ierr.IsDatabase(err))

	invoices, err := s.GetStores().InvoiceRepo.ListAll(s.GetContext())
	s.Require().NoError(err)
	s.Empty(invoices)
}

func (s *InvoiceServiceSuite) TestCreateInvoice_PublishFailureIsNotSurfaced() {
	s.GetPublisher().FailWith(errors.New("broker down"))

	resp, err := s.service.CreateInvoice(s.GetContext(), s.b2cRequest(b2cItem("Trip", "1", "10")))
	s.Require().NoError(err)
	s.NotEmpty(resp.InvoiceNumber)
	s.Empty(s.GetPublisher().GetEvents())
}

func (s *InvoiceServiceSuite) TestGetInvoice_BackfillsLegacyTotalsWithoutPersisting() {
	ctx := s.GetContext()
	legacy := &invoice.Invoice{
		ID:            "inv_legacy",
		BusinessMode:  "B2C",
		InvoiceNumber: "INV-202301-0004",
		Status:        types.InvoiceStatusPaid,
		Items: []invoice.LineItem{
			{Quantity: types.NewNumber(4), UnitPrice: numPtr("25")},
		},
		TaxRate:   numPtr("5"),
		BillTotal: numPtr("0"),
		BaseModel: types.BaseModel{CreatedAt: time.Date(2023, 1, 9, 8, 0, 0, 0, time.UTC)},
	}
	s.Require().NoError(s.GetStores().InvoiceRepo.Update(ctx, legacy))

	resp, err := s.service.GetInvoice(ctx, legacy.ID)
	s.Require().NoError(err)
	s.True(decimalOf("100").Equal(resp.Subtotal.Decimal))
	s.True(decimalOf("5").Equal(resp.TaxAmount.Decimal))
	s.True(decimalOf("105").Equal(resp.BillTotal.Decimal))
	s.Equal("one hundred five", resp.TotalInWords)

	stored, err := s.GetStores().InvoiceRepo.Get(ctx, legacy.ID)
	s.Require().NoError(err)
	s.True(stored.BillTotal.IsZero())
	s.Nil(stored.TaxAmount)
	s.Empty(stored.TotalInWords)
}

func (s *InvoiceServiceSuite) TestGetInvoice_HydratesRelations() {
	ctx := s.GetContext()
	stores := s.GetStores()

	truck := &vehicle.Vehicle{ID: "veh_1", PlateNumber: "DXB-A-12345"}
	trailer := &vehicle.Vehicle{ID: "veh_2", PlateNumber: "DXB-B-777"}
	s.Require().NoError(stores.VehicleRepo.Create(ctx, truck))
	s.Require().NoError(stores.VehicleRepo.Create(ctx, trailer))
	carrier := &transporter.Transporter{ID: "trn_1", Name: "Desert Haulers", VehicleIDs: []string{"veh_2", "veh_gone"}}
	s.Require().NoError(stores.TransporterRepo.Create(ctx, carrier))

	req := s.b2cRequest(b2cItem("Trip", "1", "10"))
	req.VehicleID = truck.ID
	req.TransporterID = carrier.ID
	req.Items[0].VehicleID = "veh_gone"
	created, err := s.service.CreateInvoice(ctx, req)
	s.Require().NoError(err)

	resp, err := s.service.GetInvoice(ctx, created.ID)
	s.Require().NoError(err)
	s.Require().NotNil(resp.Customer)
	s.Equal(s.customer.Name, resp.Customer.Name)
	s.Equal("DXB-A-12345", resp.VehicleNumber)
	s.Require().Len(resp.Vehicles, 1)
	s.Equal(truck.ID, resp.Vehicles[0].ID)
	s.Require().NotNil(resp.Transporter)
	s.Require().Len(resp.Transporter.Vehicles, 1)
	s.Equal(trailer.ID, resp.Transporter.Vehicles[0].ID)
}

func (s *InvoiceServiceSuite) TestGetInvoice_MissingRelationsAreOmitted() {
	ctx := s.GetContext()
	inv := storedInvoice(ctx, s.GetStores().InvoiceRepo, "b2b", 1, time.Now().UTC())
	inv.CustomerID = "cust_gone"
	inv.TransporterID = "trn_gone"
	s.Require().NoError(s.GetStores().InvoiceRepo.Update(ctx, inv))

	resp, err := s.service.GetInvoice(ctx, inv.ID)
	s.Require().NoError(err)
	s.Nil(resp.Customer)
	s.Nil(resp.Transporter)
}

func (s *InvoiceServiceSuite) TestGetInvoice_NotFound() {
	_, err := s.service.GetInvoice(s.GetContext(), "inv_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestListInvoices() {
	ctx := s.GetContext()
	s.Require().NoError(s.GetStores().VehicleRepo.Create(ctx, &vehicle.Vehicle{ID: "veh_1", PlateNumber: "AUH-1"}))

	req := s.b2cRequest(b2cItem("Trip", "1", "10"))
	req.VehicleID = "veh_1"
	first, err := s.service.CreateInvoice(ctx, req)
	s.Require().NoError(err)

	req = s.b2cRequest(b2cItem("Trip", "1", "10"))
	req.VehicleID = "veh_gone"
	req.Items[0].VehicleNumber = "SHJ-9"
	second, err := s.service.CreateInvoice(ctx, req)
	s.Require().NoError(err)

	_, err = s.service.CreateInvoice(ctx, b2bRequest(dto.InvoiceItemRequest{Quantity: numPtr("1"), Rate: numPtr("5")}))
	s.Require().NoError(err)

	filter := types.NewInvoiceFilter()
	filter.BusinessMode = "B2C"
	resp, err := s.service.ListInvoices(ctx, filter)
	s.Require().NoError(err)

	s.Equal(2, resp.Pagination.Total)
	s.Require().Len(resp.Items, 2)
	// newest first
	s.Equal(second.ID, resp.Items[0].ID)
	s.Equal("SHJ-9", resp.Items[0].VehicleNumber)
	s.Equal(first.ID, resp.Items[1].ID)
	s.Equal("AUH-1", resp.Items[1].VehicleNumber)

	all, err := s.service.ListInvoices(ctx, nil)
	s.Require().NoError(err)
	s.Equal(3, all.Pagination.Total)
}

func (s *InvoiceServiceSuite) TestUpdateInvoice_RebuildsItems() {
	ctx := s.GetContext()
	created, err := s.service.CreateInvoice(ctx, s.b2cRequest(b2cItem("Trip", "1", "10")))
	s.Require().NoError(err)

	notes := "second trip added"
	resp, err := s.service.UpdateInvoice(ctx, created.ID, dto.UpdateInvoiceRequest{
		Items: &[]dto.InvoiceItemRequest{
			b2cItem("Trip", "1", "10"),
			b2cItem("Trip", "1", "90"),
		},
		Notes: &notes,
	})
	s.Require().NoError(err)
	s.True(decimalOf("100").Equal(resp.Subtotal.Decimal))
	s.True(decimalOf("105").Equal(resp.GrandTotal.Decimal))
	s.Equal(created.InvoiceNumber, resp.InvoiceNumber)
	s.Equal(notes, resp.Notes)
	s.True(s.GetPublisher().HasEvent(types.EventInvoiceUpdated))
}

func (s *InvoiceServiceSuite) TestUpdateInvoice_KeepsTotalsWithoutItems() {
	ctx := s.GetContext()
	created, err := s.service.CreateInvoice(ctx, s.b2cRequest(b2cItem("Trip", "2", "10")))
	s.Require().NoError(err)

	status := types.InvoiceStatusOverdue
	resp, err := s.service.UpdateInvoice(ctx, created.ID, dto.UpdateInvoiceRequest{Status: &status})
	s.Require().NoError(err)
	s.Equal(types.InvoiceStatusOverdue, resp.Status)
	s.True(created.GrandTotal.Equal(resp.GrandTotal.Decimal))
	s.Len(resp.Items, 1)
}

func (s *InvoiceServiceSuite) TestUpdateInvoice_InvalidItems() {
	ctx := s.GetContext()
	created, err := s.service.CreateInvoice(ctx, s.b2cRequest(b2cItem("Trip", "2", "10")))
	s.Require().NoError(err)

	_, err = s.service.UpdateInvoice(ctx, created.ID, dto.UpdateInvoiceRequest{
		Items: &[]dto.InvoiceItemRequest{{Quantity: numPtr("1"), Rate: numPtr("1")}},
	})
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) createContract() *contract.Contract {
	c := &contract.Contract{
		ID:         "ctr_1",
		CustomerID: s.customer.ID,
		Title:      "Quarry haulage Q1",
		Status:     types.ContractStatusActive,
		BaseModel:  types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().ContractRepo.Create(s.GetContext(), c))
	return c
}

func (s *InvoiceServiceSuite) TestUpdateInvoice_SettledB2CCompletesContract() {
	ctx := s.GetContext()
	c := s.createContract()

	req := s.b2cRequest(b2cItem("Trip", "1", "10"))
	req.ContractID = c.ID
	created, err := s.service.CreateInvoice(ctx, req)
	s.Require().NoError(err)

	paid := types.InvoiceStatusPaid
	_, err = s.service.UpdateInvoice(ctx, created.ID, dto.UpdateInvoiceRequest{Status: &paid})
	s.Require().NoError(err)

	stored, err := s.GetStores().ContractRepo.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(types.ContractStatusCompleted, stored.Status)
	s.Len(s.GetPublisher().EventsNamed(types.EventContractUpdated), 1)
}

func (s *InvoiceServiceSuite) TestUpdateInvoice_B2BNeedsDeliveryAndCarrierPayment() {
	ctx := s.GetContext()
	c := s.createContract()

	req := b2bRequest(dto.InvoiceItemRequest{Quantity: numPtr("1"), Rate: numPtr("10")})
	req.ContractID = c.ID
	created, err := s.service.CreateInvoice(ctx, req)
	s.Require().NoError(err)

	paid := types.InvoiceStatusPaid
	_, err = s.service.UpdateInvoice(ctx, created.ID, dto.UpdateInvoiceRequest{Status: &paid})
	s.Require().NoError(err)

	stored, err := s.GetStores().ContractRepo.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(types.ContractStatusActive, stored.Status)

	delivered := types.CargoStatusDelivered
	carrierPaid := types.TransporterPaymentPaid
	_, err = s.service.UpdateInvoice(ctx, created.ID, dto.UpdateInvoiceRequest{
		CargoStatus:              &delivered,
		TransporterPaymentStatus: &carrierPaid,
	})
	s.Require().NoError(err)

	stored, err = s.GetStores().ContractRepo.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(types.ContractStatusCompleted, stored.Status)
}

func (s *InvoiceServiceSuite) TestUpdateInvoice_CancelledContractStaysCancelled() {
	ctx := s.GetContext()
	c := s.createContract()
	c.Status = types.ContractStatusCancelled
	s.Require().NoError(s.GetStores().ContractRepo.Update(ctx, c))

	req := s.b2cRequest(b2cItem("Trip", "1", "10"))
	req.ContractID = c.ID
	created, err := s.service.CreateInvoice(ctx, req)
	s.Require().NoError(err)

	paid := types.InvoiceStatusPaid
	_, err = s.service.UpdateInvoice(ctx, created.ID, dto.UpdateInvoiceRequest{Status: &paid})
	s.Require().NoError(err)

	stored, err := s.GetStores().ContractRepo.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(types.ContractStatusCancelled, stored.Status)
	s.False(s.GetPublisher().HasEvent(types.EventContractUpdated))
}

func (s *InvoiceServiceSuite) TestDeleteInvoice_CompactsPartition() {
	ctx := s.GetContext()
	repo := s.GetStores().InvoiceRepo

	jan := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 3, 9, 0, 0, 0, time.UTC)
	first := storedInvoice(ctx, repo, "b2c", 1, jan)
	second := storedInvoice(ctx, repo, "b2c", 2, jan.Add(time.Hour))
	third := storedInvoice(ctx, repo, "b2c", 3, feb)
	fourth := storedInvoice(ctx, repo, "b2c", 4, feb.Add(time.Hour))
	other := storedInvoice(ctx, repo, "b2b", 2, jan)
	s.Require().NoError(s.GetStores().SequenceRepo.Set(ctx, types.BusinessModeB2C.SequenceKey(), 4))

	resp, err := s.service.DeleteInvoice(ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(3, resp.ResequencedCount)

	_, err = repo.Get(ctx, second.ID)
	s.True(ierr.IsNotFound(err))

	want := map[string]string{
		first.ID:  "INV-202401-0001",
		third.ID:  "INV-202402-0002",
		fourth.ID: "INV-202402-0003",
		other.ID:  "INV-202401-0002",
	}
	for id, number := range want {
		got, err := repo.Get(ctx, id)
		s.Require().NoError(err)
		s.Equal(number, got.InvoiceNumber, id)
	}
	s.Equal(3, s.counter(types.BusinessModeB2C))

	events := s.GetPublisher().EventsNamed(types.EventInvoiceDeleted)
	s.Require().Len(events, 1)
	var payload invoiceDeletedPayload
	s.Require().NoError(testutil.DecodePayload(events[0], &payload))
	s.Equal(second.ID, payload.InvoiceID)
	s.Equal(3, payload.ResequencedCount)
}

func (s *InvoiceServiceSuite) TestDeleteInvoice_OnlyRenumbersExactStoredMode() {
	ctx := s.GetContext()
	repo := s.GetStores().InvoiceRepo
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	legacy := storedInvoice(ctx, repo, "B2B", 5, base)
	target := storedInvoice(ctx, repo, "b2b", 1, base.Add(time.Hour))
	kept := storedInvoice(ctx, repo, "b2b", 2, base.Add(2*time.Hour))

	resp, err := s.service.DeleteInvoice(ctx, target.ID)
	s.Require().NoError(err)
	s.Equal(1, resp.ResequencedCount)

	got, err := repo.Get(ctx, kept.ID)
	s.Require().NoError(err)
	s.Equal("INV-202405-0001", got.InvoiceNumber)

	got, err = repo.Get(ctx, legacy.ID)
	s.Require().NoError(err)
	s.Equal("INV-202405-0005", got.InvoiceNumber)
	s.Equal(1, s.counter(types.BusinessModeB2B))
}

func (s *InvoiceServiceSuite) TestDeleteInvoice_LegacyModeLeavesCounter() {
	ctx := s.GetContext()
	repo := s.GetStores().InvoiceRepo

	for i := 0; i < 5; i++ {
		_, err := s.service.CreateInvoice(ctx, b2bRequest(dto.InvoiceItemRequest{Quantity: numPtr("1"), Rate: numPtr("100")}))
		s.Require().NoError(err)
	}
	s.Require().Equal(5, s.counter(types.BusinessModeB2B))

	legacy := storedInvoice(ctx, repo, "B2B", 7, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))

	resp, err := s.service.DeleteInvoice(ctx, legacy.ID)
	s.Require().NoError(err)
	s.Equal(0, resp.ResequencedCount)
	s.Equal(5, s.counter(types.BusinessModeB2B))

	next, err := s.service.CreateInvoice(ctx, b2bRequest(dto.InvoiceItemRequest{Quantity: numPtr("1"), Rate: numPtr("100")}))
	s.Require().NoError(err)
	s.Equal(6, *next.Sequence)
}

func (s *InvoiceServiceSuite) TestDeleteInvoice_WithoutSequenceDeletesAlone() {
	ctx := s.GetContext()
	repo := s.GetStores().InvoiceRepo
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	draft := storedInvoice(ctx, repo, "b2c", 0, base)
	draft.InvoiceNumber = "DRAFT"
	s.Require().NoError(repo.Update(ctx, draft))
	kept := storedInvoice(ctx, repo, "b2c", 3, base.Add(time.Hour))
	s.Require().NoError(s.GetStores().SequenceRepo.Set(ctx, types.BusinessModeB2C.SequenceKey(), 3))

	resp, err := s.service.DeleteInvoice(ctx, draft.ID)
	s.Require().NoError(err)
	s.Equal(0, resp.ResequencedCount)

	got, err := repo.Get(ctx, kept.ID)
	s.Require().NoError(err)
	s.Equal("INV-202405-0003", got.InvoiceNumber)
	s.Equal(3, s.counter(types.BusinessModeB2C))
}

func (s *InvoiceServiceSuite) TestDeleteInvoice_NotFound() {
	_, err := s.service.DeleteInvoice(s.GetContext(), "inv_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestResequenceInvoices() {
	ctx := s.GetContext()
	repo := s.GetStores().InvoiceRepo

	mar := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	apr := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	a := storedInvoice(ctx, repo, "B2B", 9, mar)
	b := storedInvoice(ctx, repo, "b2b", 4, apr)
	c := storedInvoice(ctx, repo, "b2c", 12, mar)
	exotic := storedInvoice(ctx, repo, "export", 3, mar)

	_, err := s.service.ResequenceInvoices(ctx, false)
	s.True(ierr.IsValidation(err))

	resp, err := s.service.ResequenceInvoices(ctx, true)
	s.Require().NoError(err)
	s.Equal(3, resp.Total)
	s.ElementsMatch([]dto.ResequencedPartition{
		{BusinessMode: types.BusinessModeB2B, Count: 2},
		{BusinessMode: types.BusinessModeB2C, Count: 1},
	}, resp.Partitions)
	s.Equal([]dto.SkippedPartition{{BusinessMode: "export", Count: 1}}, resp.Skipped)

	want := map[string]string{
		a.ID:      "INV-202403-0001",
		b.ID:      "INV-202404-0002",
		c.ID:      "INV-202403-0001",
		exotic.ID: "INV-202403-0003",
	}
	for id, number := range want {
		got, err := repo.Get(ctx, id)
		s.Require().NoError(err)
		s.Equal(number, got.InvoiceNumber, id)
	}

	got, err := repo.Get(ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(types.BusinessModeB2B, got.BusinessMode)

	s.Equal(2, s.counter(types.BusinessModeB2B))
	s.Equal(1, s.counter(types.BusinessModeB2C))
	s.True(s.GetPublisher().HasEvent(types.EventInvoicesResequenced))
}

func (s *InvoiceServiceSuite) TestGetSummary() {
	ctx := s.GetContext()
	repo := s.GetStores().InvoiceRepo
	now := time.Now().UTC()

	pending := storedInvoice(ctx, repo, "b2c", 1, now)
	paid := storedInvoice(ctx, repo, "b2b", 1, now)
	paid.Status = types.InvoiceStatusPaid
	s.Require().NoError(repo.Update(ctx, paid))
	cancelled := storedInvoice(ctx, repo, "B2B", 2, now)
	cancelled.Status = types.InvoiceStatusCancelled
	s.Require().NoError(repo.Update(ctx, cancelled))
	s.NotNil(pending)

	resp, err := s.service.GetSummary(ctx)
	s.Require().NoError(err)
	s.Equal(3, resp.TotalInvoices)
	s.Equal(map[string]int{"pending": 1, "paid": 1, "cancelled": 1}, resp.ByStatus)
	s.Equal(map[string]int{"b2c": 1, "b2b": 2}, resp.ByBusinessMode)
	// each stored invoice is 100 + 5% VAT
	s.True(decimalOf("315").Equal(resp.TotalBilled.Decimal))
	s.True(decimalOf("105").Equal(resp.TotalPaid.Decimal))
	s.True(decimalOf("105").Equal(resp.TotalOutstanding.Decimal))
}
