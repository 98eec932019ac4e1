package dto

import (
	"context"
	"fmt"
	"time"

	"github.com/fleetledger/fleetledger/internal/domain/customer"
	"github.com/fleetledger/fleetledger/internal/domain/invoice"
	"github.com/fleetledger/fleetledger/internal/domain/transporter"
	"github.com/fleetledger/fleetledger/internal/domain/vehicle"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/fleetledger/fleetledger/internal/validator"
	"github.com/samber/lo"
)

// InvoiceItemRequest is one line of a create or update request
type InvoiceItemRequest struct {
	Description   string        `json:"description"`
	WorkDate      string        `json:"work_date"`
	VehicleID     string        `json:"vehicle_id"`
	VehicleNumber string        `json:"vehicle_number"`
	Unit          string        `json:"unit"`
	Quantity      *types.Number `json:"quantity"`
	Rate          *types.Number `json:"rate"`
}

func (r InvoiceItemRequest) toLineItem() invoice.LineItem {
	return invoice.LineItem{
		Description:   r.Description,
		WorkDate:      r.WorkDate,
		VehicleID:     r.VehicleID,
		VehicleNumber: r.VehicleNumber,
		Unit:          r.Unit,
		Quantity:      types.NumberFromDecimal(r.Quantity.OrZero()),
		Rate:          types.NumberPtr(r.Rate.OrZero()),
	}
}

// ValidateItems checks the per-item fields every business mode requires
func ValidateItems(mode types.BusinessMode, items []InvoiceItemRequest) error {
	details := make(map[string]any)
	for i, item := range items {
		prefix := fmt.Sprintf("items[%d].", i)
		if item.Quantity == nil {
			details[prefix+"quantity"] = "quantity is required"
		} else if !item.Quantity.IsPositive() {
			details[prefix+"quantity"] = "quantity must be greater than 0"
		}
		if item.Rate == nil {
			details[prefix+"rate"] = "rate is required"
		} else if item.Rate.IsNegative() {
			details[prefix+"rate"] = "rate must not be negative"
		}
		if mode == types.BusinessModeB2C {
			if item.WorkDate == "" {
				details[prefix+"work_date"] = "work_date is required"
			}
			if item.Description == "" {
				details[prefix+"description"] = "description is required"
			}
		}
	}
	if len(details) == 0 {
		return nil
	}
	return ierr.NewError("invalid invoice items").
		WithHint("Some invoice items are incomplete").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}

// BuildLineItems turns request items into stored rows: amount rows for B2B, VAT-per-line rows for B2C
func BuildLineItems(mode types.BusinessMode, items []InvoiceItemRequest) []invoice.LineItem {
	return lo.Map(items, func(item InvoiceItemRequest, _ int) invoice.LineItem {
		if mode == types.BusinessModeB2B {
			return invoice.NewAmountLine(item.toLineItem())
		}
		return invoice.NewVATLine(item.toLineItem())
	})
}

// CreateInvoiceRequest represents the request to create an invoice
type CreateInvoiceRequest struct {
	BusinessMode types.BusinessMode   `json:"business_mode" validate:"required,business_mode"`
	Items        []InvoiceItemRequest `json:"items" validate:"required,min=1"`

	CustomerID      string `json:"customer_id"`
	CustomerName    string `json:"customer_name"`
	CustomerTRN     string `json:"customer_trn"`
	CustomerAddress string `json:"customer_address"`
	VehicleID       string `json:"vehicle_id"`
	TransporterID   string `json:"transporter_id"`
	ContractID      string `json:"contract_id"`

	Status                   types.InvoiceStatus            `json:"status"`
	CargoStatus              types.CargoStatus              `json:"cargo_status"`
	TransporterPaymentStatus types.TransporterPaymentStatus `json:"transporter_payment_status"`

	TaxRate *types.Number `json:"tax_rate"`
	// InvoiceDate is the logical creation date. It backdates created_at, which sets the
	// month in the invoice number and the position in its partition.
	InvoiceDate *time.Time `json:"invoice_date"`
	DueDate     *time.Time `json:"due_date"`
	Notes       string     `json:"notes"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	mode, err := types.ParseBusinessMode(string(r.BusinessMode))
	if err != nil {
		return err
	}
	r.BusinessMode = mode

	details := make(map[string]any)
	switch mode {
	case types.BusinessModeB2C:
		if r.CustomerID == "" {
			details["customer_id"] = "customer_id is required for b2c invoices"
		}
	case types.BusinessModeB2B:
		if r.CustomerName == "" {
			details["customer_name"] = "customer_name is required for b2b invoices"
		}
		if r.CustomerTRN == "" {
			details["customer_trn"] = "customer_trn is required for b2b invoices"
		}
		if r.CustomerAddress == "" {
			details["customer_address"] = "customer_address is required for b2b invoices"
		}
	}
	if len(details) > 0 {
		return ierr.NewError("missing customer details").
			WithHintf("Customer details are required for %s invoices", mode).
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}

	if err := ValidateItems(mode, r.Items); err != nil {
		return err
	}

	if r.Status != "" {
		if err := r.Status.Validate(); err != nil {
			return err
		}
	}
	if r.CargoStatus != "" {
		if err := r.CargoStatus.Validate(); err != nil {
			return err
		}
	}
	if r.TransporterPaymentStatus != "" {
		if err := r.TransporterPaymentStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ToInvoice builds the unnumbered invoice with its rows and totals
func (r *CreateInvoiceRequest) ToInvoice(ctx context.Context) *invoice.Invoice {
	inv := &invoice.Invoice{
		ID:                       types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		BusinessMode:             r.BusinessMode,
		Status:                   lo.Ternary(r.Status == "", types.InvoiceStatusPending, r.Status),
		Items:                    BuildLineItems(r.BusinessMode, r.Items),
		TaxRate:                  r.TaxRate,
		CustomerID:               r.CustomerID,
		CustomerName:             r.CustomerName,
		CustomerTRN:              r.CustomerTRN,
		CustomerAddress:          r.CustomerAddress,
		VehicleID:                r.VehicleID,
		TransporterID:            r.TransporterID,
		ContractID:               r.ContractID,
		CargoStatus:              r.CargoStatus,
		TransporterPaymentStatus: r.TransporterPaymentStatus,
		InvoiceDate:              r.InvoiceDate,
		DueDate:                  r.DueDate,
		Notes:                    r.Notes,
		BaseModel:                types.GetDefaultBaseModel(ctx),
	}
	if r.InvoiceDate != nil {
		inv.CreatedAt = r.InvoiceDate.UTC()
	}
	if r.BusinessMode == types.BusinessModeB2B {
		if inv.CargoStatus == "" {
			inv.CargoStatus = types.CargoStatusAwaitingPickup
		}
		if inv.TransporterPaymentStatus == "" {
			inv.TransporterPaymentStatus = types.TransporterPaymentUnpaid
		}
	}
	inv.Recalculate()
	return inv
}

// UpdateInvoiceRequest is a partial update; absent fields are left unchanged
type UpdateInvoiceRequest struct {
	Items *[]InvoiceItemRequest `json:"items,omitempty"`

	Status                   *types.InvoiceStatus            `json:"status,omitempty"`
	CargoStatus              *types.CargoStatus              `json:"cargo_status,omitempty"`
	TransporterPaymentStatus *types.TransporterPaymentStatus `json:"transporter_payment_status,omitempty"`

	CustomerID      *string `json:"customer_id,omitempty"`
	CustomerName    *string `json:"customer_name,omitempty"`
	CustomerTRN     *string `json:"customer_trn,omitempty"`
	CustomerAddress *string `json:"customer_address,omitempty"`
	VehicleID       *string `json:"vehicle_id,omitempty"`
	TransporterID   *string `json:"transporter_id,omitempty"`
	ContractID      *string `json:"contract_id,omitempty"`

	TaxRate     *types.Number `json:"tax_rate,omitempty"`
	InvoiceDate *time.Time    `json:"invoice_date,omitempty"`
	DueDate     *time.Time    `json:"due_date,omitempty"`
	Notes       *string       `json:"notes,omitempty"`
}

func (r *UpdateInvoiceRequest) Validate() error {
	if r.Status != nil {
		if err := r.Status.Validate(); err != nil {
			return err
		}
	}
	if r.CargoStatus != nil {
		if err := r.CargoStatus.Validate(); err != nil {
			return err
		}
	}
	if r.TransporterPaymentStatus != nil {
		if err := r.TransporterPaymentStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges the provided fields into inv. Items are rebuilt and totals recomputed
// only when the request carries items.
func (r *UpdateInvoiceRequest) Apply(ctx context.Context, inv *invoice.Invoice, mode types.BusinessMode) error {
	if r.Items != nil {
		if err := ValidateItems(mode, *r.Items); err != nil {
			return err
		}
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	assign(&inv.CustomerID, r.CustomerID)
	assign(&inv.CustomerName, r.CustomerName)
	assign(&inv.CustomerTRN, r.CustomerTRN)
	assign(&inv.CustomerAddress, r.CustomerAddress)
	assign(&inv.VehicleID, r.VehicleID)
	assign(&inv.TransporterID, r.TransporterID)
	assign(&inv.ContractID, r.ContractID)
	assign(&inv.Notes, r.Notes)

	if r.Status != nil {
		inv.Status = *r.Status
	}
	if r.CargoStatus != nil {
		inv.CargoStatus = *r.CargoStatus
	}
	if r.TransporterPaymentStatus != nil {
		inv.TransporterPaymentStatus = *r.TransporterPaymentStatus
	}
	if r.TaxRate != nil {
		inv.TaxRate = r.TaxRate
	}
	if r.InvoiceDate != nil {
		inv.InvoiceDate = r.InvoiceDate
	}
	if r.DueDate != nil {
		inv.DueDate = r.DueDate
	}

	if r.Items != nil {
		inv.Items = BuildLineItems(mode, *r.Items)
		inv.Recalculate()
	}

	inv.Touch(ctx)
	return nil
}

// TransporterResponse is a transporter with its fleet
type TransporterResponse struct {
	*transporter.Transporter
	Vehicles []*vehicle.Vehicle `json:"vehicles,omitempty"`
}

// InvoiceResponse is an invoice as presented to clients. Legacy rows carry recomputed
// totals; related records are included when they exist.
type InvoiceResponse struct {
	*invoice.Invoice
	VehicleNumber string               `json:"vehicle_number,omitempty"`
	Customer      *customer.Customer   `json:"customer,omitempty"`
	Vehicles      []*vehicle.Vehicle   `json:"vehicles,omitempty"`
	Transporter   *TransporterResponse `json:"transporter,omitempty"`
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv.WithBackfill()}
}

// ListInvoicesResponse represents the response for listing invoices
type ListInvoicesResponse = types.ListResponse[*InvoiceResponse]

// DeleteInvoiceResponse reports how many invoices were renumbered
type DeleteInvoiceResponse struct {
	Message          string `json:"message"`
	ResequencedCount int    `json:"resequenced_count"`
}

// ResequencedPartition is the outcome for one business mode
type ResequencedPartition struct {
	BusinessMode types.BusinessMode `json:"business_mode"`
	Count        int                `json:"count"`
}

// SkippedPartition is a group of invoices whose business mode is not a known partition
type SkippedPartition struct {
	BusinessMode string `json:"business_mode"`
	Count        int    `json:"count"`
}

// ResequenceResponse summarises a resequencing run
type ResequenceResponse struct {
	Message     string                 `json:"message"`
	Total       int                    `json:"total"`
	Partitions  []ResequencedPartition `json:"partitions"`
	Skipped     []SkippedPartition     `json:"skipped,omitempty"`
	CompletedAt time.Time              `json:"completed_at"`
}

// InvoiceSummaryResponse aggregates invoice counts and amounts
type InvoiceSummaryResponse struct {
	TotalInvoices    int            `json:"total_invoices"`
	ByStatus         map[string]int `json:"by_status"`
	ByBusinessMode   map[string]int `json:"by_business_mode"`
	TotalBilled      types.Number   `json:"total_billed"`
	TotalPaid        types.Number   `json:"total_paid"`
	TotalOutstanding types.Number   `json:"total_outstanding"`
}
