package types

import (
	"strings"

	ierr "github.com/fleetledger/fleetledger/internal/errors"
)

// BusinessMode partitions invoices and their numbering sequences
type BusinessMode string

const (
	BusinessModeB2C BusinessMode = "b2c"
	BusinessModeB2B BusinessMode = "b2b"
)

// BusinessModes lists every supported partition
var BusinessModes = []BusinessMode{BusinessModeB2C, BusinessModeB2B}

// ParseBusinessMode normalises a stored or requested mode. Legacy documents carry mixed
// casing ("B2B"), so the comparison is case-insensitive; anything else is rejected.
func ParseBusinessMode(raw string) (BusinessMode, error) {
	mode := BusinessMode(strings.ToLower(strings.TrimSpace(raw)))
	if err := mode.Validate(); err != nil {
		return "", err
	}
	return mode, nil
}

func (m BusinessMode) String() string {
	return string(m)
}

func (m BusinessMode) Validate() error {
	switch m {
	case BusinessModeB2C, BusinessModeB2B:
		return nil
	}
	return ierr.NewError("invalid business mode").
		WithHintf("Business mode must be one of %s, %s", BusinessModeB2C, BusinessModeB2B).
		WithReportableDetails(map[string]any{
			"business_mode": string(m),
		}).
		Mark(ierr.ErrValidation)
}

// SequenceKey is the id of the counter document that numbers this partition
func (m BusinessMode) SequenceKey() string {
	return "invoices_" + string(m)
}

// InvoiceStatus is the payment lifecycle of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Validate() error {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusCancelled:
		return nil
	}
	return ierr.NewError("invalid invoice status").
		WithHint("Invoice status must be one of pending, paid, overdue, cancelled").
		WithReportableDetails(map[string]any{
			"status": string(s),
		}).
		Mark(ierr.ErrValidation)
}

// CargoStatus tracks the shipment behind a B2B invoice
type CargoStatus string

const (
	CargoStatusAwaitingPickup CargoStatus = "awaiting_pickup"
	CargoStatusInTransit      CargoStatus = "in_transit"
	CargoStatusDelivered      CargoStatus = "delivered"
	CargoStatusReturned       CargoStatus = "returned"
)

func (s CargoStatus) Validate() error {
	switch s {
	case CargoStatusAwaitingPickup, CargoStatusInTransit, CargoStatusDelivered, CargoStatusReturned:
		return nil
	}
	return ierr.NewError("invalid cargo status").
		WithHint("Cargo status must be one of awaiting_pickup, in_transit, delivered, returned").
		Mark(ierr.ErrValidation)
}

// TransporterPaymentStatus tracks whether the carrier was paid for a B2B invoice
type TransporterPaymentStatus string

const (
	TransporterPaymentUnpaid TransporterPaymentStatus = "unpaid"
	TransporterPaymentPaid   TransporterPaymentStatus = "paid"
)

func (s TransporterPaymentStatus) Validate() error {
	switch s {
	case TransporterPaymentUnpaid, TransporterPaymentPaid:
		return nil
	}
	return ierr.NewError("invalid transporter payment status").
		WithHint("Transporter payment status must be unpaid or paid").
		Mark(ierr.ErrValidation)
}

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	*QueryFilter
	BusinessMode BusinessMode  `json:"business_mode,omitempty" form:"business_mode"`
	Status       InvoiceStatus `json:"status,omitempty" form:"status"`
	CustomerID   string        `json:"customer_id,omitempty" form:"customer_id"`
	ContractID   string        `json:"contract_id,omitempty" form:"contract_id"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.BusinessMode != "" {
		mode, err := ParseBusinessMode(string(f.BusinessMode))
		if err != nil {
			return err
		}
		f.BusinessMode = mode
	}
	if f.Status != "" {
		if err := f.Status.Validate(); err != nil {
			return err
		}
	}
	return nil
}
