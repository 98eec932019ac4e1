package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/fleetledger/fleetledger/internal/api/dto"
	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/invoice"
	"github.com/fleetledger/fleetledger/internal/domain/vehicle"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/iter"
)

// listDecorationConcurrency bounds the vehicle lookups issued while decorating a page
const listDecorationConcurrency = 8

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) (*dto.DeleteInvoiceResponse, error)
	ResequenceInvoices(ctx context.Context, confirm bool) (*dto.ResequenceResponse, error)
	GetSummary(ctx context.Context) (*dto.InvoiceSummaryResponse, error)
}

type invoiceService struct {
	ServiceParams
	sequences SequenceService
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{
		ServiceParams: params,
		sequences:     NewSequenceService(params),
	}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.CustomerID != "" {
		if _, err := s.CustomerRepo.Get(ctx, req.CustomerID); err != nil {
			return nil, err
		}
	}
	if req.ContractID != "" {
		if _, err := s.ContractRepo.Get(ctx, req.ContractID); err != nil {
			return nil, err
		}
	}

	inv := req.ToInvoice(ctx)

	err := s.createNumbered(ctx, inv)
	if err != nil {
		if !s.shouldEstimate(err) {
			return nil, err
		}
		s.Logger.Warnw("sequence transaction failed, falling back to estimated invoice number",
			"business_mode", inv.BusinessMode,
			"invoice_id", inv.ID,
			"error", err,
		)
		if err := s.createEstimated(ctx, inv); err != nil {
			return nil, err
		}
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"business_mode", inv.BusinessMode,
	)

	s.publishEvent(ctx, types.EventInvoiceCreated, inv)
	return dto.NewInvoiceResponse(inv), nil
}

// createNumbered allocates the number and writes the invoice in one transaction
func (s *invoiceService) createNumbered(ctx context.Context, inv *invoice.Invoice) error {
	txCtx, cancel := context.WithTimeout(ctx, config.DefaultTxTimeout)
	defer cancel()

	return s.Store.RunTransaction(txCtx, func(ctx context.Context, tx docstore.Tx) error {
		alloc, err := s.sequences.Allocate(ctx, tx, inv.BusinessMode, inv.CreatedAt)
		if err != nil {
			return err
		}
		inv.Sequence = lo.ToPtr(alloc.Sequence)
		inv.InvoiceNumber = alloc.InvoiceNumber
		return s.InvoiceRepo.CreateInTx(tx, inv)
	})
}

// createEstimated numbers the invoice from the newest stored one and writes it together
// with the counter. Two concurrent callers can end up with the same number.
func (s *invoiceService) createEstimated(ctx context.Context, inv *invoice.Invoice) error {
	alloc, err := s.sequences.EstimateAllocation(ctx, inv.BusinessMode, inv.CreatedAt)
	if err != nil {
		return err
	}
	inv.Sequence = lo.ToPtr(alloc.Sequence)
	inv.InvoiceNumber = alloc.InvoiceNumber

	b := s.Store.NewBatch()
	if err := s.InvoiceRepo.Stage(b, inv); err != nil {
		return err
	}
	if err := s.SequenceRepo.Stage(b, inv.BusinessMode.SequenceKey(), alloc.Sequence); err != nil {
		return err
	}
	if err := b.Commit(ctx); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to save invoice").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

// shouldEstimate reports whether a failed allocation may use the scan based estimate
func (s *invoiceService) shouldEstimate(err error) bool {
	if !s.Config.Invoice.SequenceFallback {
		return false
	}
	return ierr.IsDatabase(err) ||
		ierr.IsVersionConflict(err) ||
		errors.Is(err, context.DeadlineExceeded)
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	if id == "" {
		return nil, ierr.NewError("invoice_id is required").
			WithHint("Invoice ID is required").
			Mark(ierr.ErrValidation)
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := dto.NewInvoiceResponse(inv)
	s.hydrate(ctx, resp)
	return resp, nil
}

// hydrate attaches the related records of an invoice. Every relation is optional: lookups
// that fail are logged and the relation is left out.
func (s *invoiceService) hydrate(ctx context.Context, resp *dto.InvoiceResponse) {
	inv := resp.Invoice
	resp.VehicleNumber = vehicleNumber(inv, nil)

	var wg conc.WaitGroup
	if inv.CustomerID != "" {
		wg.Go(func() {
			c, err := s.CustomerRepo.Get(ctx, inv.CustomerID)
			if err != nil {
				s.logRelationFailure("customer", inv.CustomerID, inv.ID, err)
				return
			}
			resp.Customer = c
		})
	}
	if ids := inv.VehicleIDs(); len(ids) > 0 {
		wg.Go(func() {
			resp.Vehicles = s.loadVehicles(ctx, inv.ID, ids)
			resp.VehicleNumber = vehicleNumber(inv, resp.Vehicles)
		})
	}
	if inv.TransporterID != "" {
		wg.Go(func() {
			t, err := s.TransporterRepo.Get(ctx, inv.TransporterID)
			if err != nil {
				s.logRelationFailure("transporter", inv.TransporterID, inv.ID, err)
				return
			}
			resp.Transporter = &dto.TransporterResponse{
				Transporter: t,
				Vehicles:    s.loadVehicles(ctx, inv.ID, t.VehicleIDs),
			}
		})
	}
	wg.Wait()
}

// loadVehicles fetches vehicles concurrently, dropping the ones that cannot be loaded
func (s *invoiceService) loadVehicles(ctx context.Context, invoiceID string, ids []string) []*vehicle.Vehicle {
	if len(ids) == 0 {
		return nil
	}
	loaded := iter.Map(ids, func(id *string) *vehicle.Vehicle {
		v, err := s.VehicleRepo.Get(ctx, *id)
		if err != nil {
			s.logRelationFailure("vehicle", *id, invoiceID, err)
			return nil
		}
		return v
	})
	return lo.Compact(loaded)
}

func (s *invoiceService) logRelationFailure(entity, id, invoiceID string, err error) {
	if ierr.IsNotFound(err) {
		s.Logger.Debugw("related record not found",
			"entity", entity,
			"id", id,
			"invoice_id", invoiceID,
		)
		return
	}
	s.Logger.Warnw("failed to load related record",
		"entity", entity,
		"id", id,
		"invoice_id", invoiceID,
		"error", err,
	)
}

// vehicleNumber is the plate of the invoice's own vehicle, else the first one typed on an item
func vehicleNumber(inv *invoice.Invoice, vehicles []*vehicle.Vehicle) string {
	if inv.VehicleID != "" {
		if v, ok := lo.Find(vehicles, func(v *vehicle.Vehicle) bool {
			return v.ID == inv.VehicleID
		}); ok {
			return v.PlateNumber
		}
	}
	for _, li := range inv.Items {
		if li.VehicleNumber != "" {
			return li.VehicleNumber
		}
	}
	return ""
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(invoices, func(inv *invoice.Invoice, _ int) *dto.InvoiceResponse {
		return dto.NewInvoiceResponse(inv)
	})

	decorator := iter.Iterator[*dto.InvoiceResponse]{MaxGoroutines: listDecorationConcurrency}
	decorator.ForEach(items, func(item **dto.InvoiceResponse) {
		s.decorateListItem(ctx, *item)
	})

	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

// decorateListItem fills the vehicle number of one row. Failures only cost the decoration.
func (s *invoiceService) decorateListItem(ctx context.Context, item *dto.InvoiceResponse) {
	inv := item.Invoice
	if inv.VehicleID == "" {
		item.VehicleNumber = vehicleNumber(inv, nil)
		return
	}
	v, err := s.VehicleRepo.Get(ctx, inv.VehicleID)
	if err != nil {
		s.logRelationFailure("vehicle", inv.VehicleID, inv.ID, err)
		item.VehicleNumber = vehicleNumber(inv, nil)
		return
	}
	item.VehicleNumber = vehicleNumber(inv, []*vehicle.Vehicle{v})
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	mode, modeErr := inv.Partition()
	if req.Items != nil && modeErr != nil {
		return nil, ierr.WithError(modeErr).
			WithHintf("Items cannot be rebuilt for business mode %q", inv.BusinessMode).
			Mark(ierr.ErrInvalidOperation)
	}

	if req.ContractID != nil && *req.ContractID != "" {
		if _, err := s.ContractRepo.Get(ctx, *req.ContractID); err != nil {
			return nil, err
		}
	}

	if err := req.Apply(ctx, inv, mode); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	if inv.IsSettled(mode) {
		s.completeContract(ctx, inv)
	}

	s.publishEvent(ctx, types.EventInvoiceUpdated, inv)
	return dto.NewInvoiceResponse(inv), nil
}

// completeContract closes the active contract of a settled invoice. The invoice update has
// already been stored, so failures here are logged rather than returned.
func (s *invoiceService) completeContract(ctx context.Context, inv *invoice.Invoice) {
	if inv.ContractID == "" {
		return
	}

	c, err := s.ContractRepo.Get(ctx, inv.ContractID)
	if err != nil {
		s.logRelationFailure("contract", inv.ContractID, inv.ID, err)
		return
	}
	if !c.IsActive() {
		return
	}

	c.Status = types.ContractStatusCompleted
	c.Touch(ctx)
	if err := s.ContractRepo.Update(ctx, c); err != nil {
		s.Logger.Errorw("failed to complete contract for settled invoice",
			"contract_id", c.ID,
			"invoice_id", inv.ID,
			"error", err,
		)
		return
	}

	s.Logger.Infow("completed contract",
		"contract_id", c.ID,
		"invoice_id", inv.ID,
	)
	s.publishEvent(ctx, types.EventContractUpdated, c)
}

// invoiceDeletedPayload is the body of the invoice.deleted event
type invoiceDeletedPayload struct {
	InvoiceID        string `json:"invoice_id"`
	InvoiceNumber    string `json:"invoice_number"`
	BusinessMode     string `json:"business_mode"`
	ResequencedCount int    `json:"resequenced_count"`
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) (*dto.DeleteInvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resequenced := 0
	if _, ok := inv.SequenceNumber(); ok && inv.BusinessMode != "" {
		resequenced, err = s.deleteAndCompact(ctx, inv)
	} else {
		b := s.Store.NewBatch()
		s.InvoiceRepo.StageDelete(b, inv.ID)
		err = b.Commit(ctx)
	}
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to delete invoice").
			Mark(ierr.ErrDatabase)
	}

	s.Logger.Infow("deleted invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"resequenced_count", resequenced,
	)

	s.publishEvent(ctx, types.EventInvoiceDeleted, invoiceDeletedPayload{
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		BusinessMode:     string(inv.BusinessMode),
		ResequencedCount: resequenced,
	})

	return &dto.DeleteInvoiceResponse{
		Message:          "Invoice deleted successfully",
		ResequencedCount: resequenced,
	}, nil
}

// deleteAndCompact removes inv and renumbers the rest of its partition 1..N in one batch,
// then moves the counter to N. Only invoices storing exactly the same business_mode value
// are renumbered, and the counter only moves when that value is the canonical mode.
func (s *invoiceService) deleteAndCompact(ctx context.Context, inv *invoice.Invoice) (int, error) {
	partition, err := s.InvoiceRepo.ListByStoredMode(ctx, string(inv.BusinessMode))
	if err != nil {
		return 0, err
	}
	remaining := lo.Reject(partition, func(other *invoice.Invoice, _ int) bool {
		return other.ID == inv.ID
	})

	b := s.Store.NewBatch()
	s.InvoiceRepo.StageDelete(b, inv.ID)
	for i, other := range remaining {
		other.Renumber(i + 1)
		if err := s.InvoiceRepo.Stage(b, other); err != nil {
			return 0, err
		}
	}
	if err := b.Commit(ctx); err != nil {
		return 0, err
	}

	mode, err := inv.Partition()
	if err != nil {
		s.Logger.Warnw("deleted invoice has no known partition, counter left unchanged",
			"invoice_id", inv.ID,
			"business_mode", inv.BusinessMode,
		)
		return len(remaining), nil
	}
	if string(inv.BusinessMode) != string(mode) {
		// the counter belongs to the normalized partition, not to this legacy subset
		s.Logger.Warnw("deleted invoice stores a non-canonical business mode, counter left unchanged",
			"invoice_id", inv.ID,
			"business_mode", inv.BusinessMode,
			"sequence_key", mode.SequenceKey(),
		)
		return len(remaining), nil
	}
	if err := s.SequenceRepo.Set(ctx, mode.SequenceKey(), len(remaining)); err != nil {
		// the invoices are already renumbered; a resequencing run repairs the counter
		s.Logger.Errorw("failed to reset sequence counter after delete",
			"business_mode", mode,
			"sequence", len(remaining),
			"error", err,
		)
	}
	return len(remaining), nil
}

func (s *invoiceService) ResequenceInvoices(ctx context.Context, confirm bool) (*dto.ResequenceResponse, error) {
	if !confirm {
		return nil, ierr.NewError("resequencing not confirmed").
			WithHint("Renumbering every invoice requires confirm=true").
			Mark(ierr.ErrValidation)
	}

	all, err := s.InvoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	groups := lo.GroupBy(all, func(inv *invoice.Invoice) string {
		return strings.ToLower(strings.TrimSpace(string(inv.BusinessMode)))
	})
	keys := lo.Keys(groups)
	sort.Strings(keys)

	resp := &dto.ResequenceResponse{
		Partitions: make([]dto.ResequencedPartition, 0, len(keys)),
	}

	b := s.Store.NewBatch()
	for _, key := range keys {
		invoices := groups[key]
		mode, err := types.ParseBusinessMode(key)
		if err != nil {
			s.Logger.Warnw("skipping invoices with unknown business mode",
				"business_mode", key,
				"count", len(invoices),
			)
			resp.Skipped = append(resp.Skipped, dto.SkippedPartition{
				BusinessMode: key,
				Count:        len(invoices),
			})
			continue
		}

		for i, inv := range invoices {
			inv.BusinessMode = mode
			inv.Renumber(i + 1)
			if err := s.InvoiceRepo.Stage(b, inv); err != nil {
				return nil, err
			}
		}
		if err := s.SequenceRepo.Stage(b, mode.SequenceKey(), len(invoices)); err != nil {
			return nil, err
		}

		resp.Partitions = append(resp.Partitions, dto.ResequencedPartition{
			BusinessMode: mode,
			Count:        len(invoices),
		})
		resp.Total += len(invoices)
	}

	if b.Len() > 0 {
		if err := b.Commit(ctx); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to renumber invoices").
				Mark(ierr.ErrDatabase)
		}
	}

	resp.Message = "Invoices resequenced successfully"
	resp.CompletedAt = time.Now().UTC()

	s.Logger.Infow("resequenced invoices",
		"total", resp.Total,
		"partitions", len(resp.Partitions),
		"skipped", len(resp.Skipped),
	)

	s.publishEvent(ctx, types.EventInvoicesResequenced, resp)
	return resp, nil
}

func (s *invoiceService) GetSummary(ctx context.Context) (*dto.InvoiceSummaryResponse, error) {
	all, err := s.InvoiceRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	billed, paid, outstanding := decimal.Zero, decimal.Zero, decimal.Zero
	resp := &dto.InvoiceSummaryResponse{
		TotalInvoices:  len(all),
		ByStatus:       make(map[string]int),
		ByBusinessMode: make(map[string]int),
	}

	for _, stored := range all {
		inv := stored.WithBackfill()
		total := inv.Total()

		resp.ByStatus[string(inv.Status)]++
		if mode, err := inv.Partition(); err == nil {
			resp.ByBusinessMode[string(mode)]++
		} else {
			resp.ByBusinessMode[strings.ToLower(string(inv.BusinessMode))]++
		}

		billed = billed.Add(total)
		switch inv.Status {
		case types.InvoiceStatusPaid:
			paid = paid.Add(total)
		case types.InvoiceStatusPending, types.InvoiceStatusOverdue:
			outstanding = outstanding.Add(total)
		}
	}

	resp.TotalBilled = types.NumberFromDecimal(types.Round2(billed))
	resp.TotalPaid = types.NumberFromDecimal(types.Round2(paid))
	resp.TotalOutstanding = types.NumberFromDecimal(types.Round2(outstanding))
	return resp, nil
}
