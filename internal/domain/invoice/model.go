package invoice

import (
	"time"

	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a numbered bill within one business mode partition. Totals are pointers
// because invoices written before totals were stored have none of them.
type Invoice struct {
	ID            string             `json:"id"`
	BusinessMode  types.BusinessMode `json:"business_mode"`
	InvoiceNumber string             `json:"invoice_number"`
	// Sequence is the 1-based position in the partition; legacy rows only carry it inside InvoiceNumber
	Sequence *int                `json:"sequence,omitempty"`
	Status   types.InvoiceStatus `json:"status"`
	Items    []LineItem          `json:"items"`

	Subtotal     *types.Number `json:"subtotal,omitempty"`
	TaxAmount    *types.Number `json:"tax_amount,omitempty"`
	VAT5Percent  *types.Number `json:"vat_5_percent,omitempty"`
	BillTotal    *types.Number `json:"bill_total,omitempty"`
	GrandTotal   *types.Number `json:"grand_total,omitempty"`
	TotalInWords string        `json:"total_in_words,omitempty"`
	TaxRate      *types.Number `json:"tax_rate,omitempty"`

	CustomerID      string `json:"customer_id,omitempty"`
	CustomerName    string `json:"customer_name,omitempty"`
	CustomerTRN     string `json:"customer_trn,omitempty"`
	CustomerAddress string `json:"customer_address,omitempty"`
	VehicleID       string `json:"vehicle_id,omitempty"`
	TransporterID   string `json:"transporter_id,omitempty"`
	ContractID      string `json:"contract_id,omitempty"`

	CargoStatus              types.CargoStatus              `json:"cargo_status,omitempty"`
	TransporterPaymentStatus types.TransporterPaymentStatus `json:"transporter_payment_status,omitempty"`

	InvoiceDate *time.Time `json:"invoice_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`

	types.BaseModel
}

// Partition returns the normalised business mode. Legacy rows may store it in upper case.
func (i *Invoice) Partition() (types.BusinessMode, error) {
	return types.ParseBusinessMode(string(i.BusinessMode))
}

// SequenceNumber returns the stored sequence, or the one parsed from the invoice number
func (i *Invoice) SequenceNumber() (int, bool) {
	if i.Sequence != nil {
		return *i.Sequence, true
	}
	return ParseSequence(i.InvoiceNumber)
}

// Renumber assigns a position in the partition and the matching invoice number
func (i *Invoice) Renumber(sequence int) {
	i.Sequence = &sequence
	i.InvoiceNumber = FormatNumber(i.CreatedAt, sequence)
}

// ApplyTotals stores computed totals and their words rendering
func (i *Invoice) ApplyTotals(t Totals) {
	i.Subtotal = types.NumberPtr(t.Subtotal)
	i.TaxAmount = types.NumberPtr(t.TaxAmount)
	i.VAT5Percent = types.NumberPtr(t.VAT5Percent)
	i.BillTotal = types.NumberPtr(t.BillTotal)
	i.GrandTotal = types.NumberPtr(t.GrandTotal)
	i.TotalInWords = AmountInWords(t.GrandTotal)
}

// Recalculate derives totals from the current items
func (i *Invoice) Recalculate() {
	i.ApplyTotals(ComputeTotals(i.Items, i.TaxRate.OrZero()))
}

// NeedsBackfill reports whether the stored totals predate the current schema
func (i *Invoice) NeedsBackfill() bool {
	return i.BillTotal == nil || i.BillTotal.IsZero() || i.TaxAmount == nil || i.VAT5Percent == nil
}

// WithBackfill returns the invoice as it should be presented. Legacy rows get a copy
// with recomputed totals; the receiver is never modified.
func (i *Invoice) WithBackfill() *Invoice {
	if !i.NeedsBackfill() {
		if i.TotalInWords != "" {
			return i
		}
		out := *i
		out.TotalInWords = AmountInWords(i.GrandTotal.OrZero())
		return &out
	}
	out := *i
	out.Recalculate()
	return &out
}

// Total is the grand total used for reporting
func (i *Invoice) Total() decimal.Decimal {
	if i.GrandTotal != nil {
		return i.GrandTotal.Decimal
	}
	return i.BillTotal.OrZero()
}

// IsSettled reports whether the invoice no longer needs any action. B2B invoices also need
// the cargo delivered and the transporter paid.
func (i *Invoice) IsSettled(mode types.BusinessMode) bool {
	if i.Status != types.InvoiceStatusPaid {
		return false
	}
	if mode != types.BusinessModeB2B {
		return true
	}
	return i.CargoStatus == types.CargoStatusDelivered &&
		i.TransporterPaymentStatus == types.TransporterPaymentPaid
}

// VehicleIDs lists every vehicle referenced by the invoice and its items, without duplicates
func (i *Invoice) VehicleIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	}
	add(i.VehicleID)
	for _, li := range i.Items {
		add(li.VehicleID)
	}
	return ids
}
