package invoice

import (
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is one billable row of an invoice. Rows written over the years carry different
// subsets of the monetary fields, so every one of them is optional and decodes leniently.
type LineItem struct {
	Description   string `json:"description,omitempty"`
	WorkDate      string `json:"work_date,omitempty"`
	VehicleID     string `json:"vehicle_id,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
	Unit          string `json:"unit,omitempty"`

	Quantity types.Number `json:"quantity"`
	// Rate is the price per unit; older rows store it as UnitPrice
	Rate      *types.Number `json:"rate,omitempty"`
	UnitPrice *types.Number `json:"unit_price,omitempty"`

	// Amount is quantity x rate, rounded to cents
	Amount *types.Number `json:"amount,omitempty"`

	// VAT-per-line rows
	BillAmount *types.Number `json:"bill_amount,omitempty"`
	TaxAmount  *types.Number `json:"tax_amount,omitempty"`
	BillTotal  *types.Number `json:"bill_total,omitempty"`
}

// Price returns the unit price, preferring unit_price over rate
func (li LineItem) Price() decimal.Decimal {
	if li.UnitPrice != nil {
		return li.UnitPrice.Decimal
	}
	return li.Rate.OrZero()
}

// NewAmountLine builds a row whose amount is quantity x rate
func NewAmountLine(base LineItem) LineItem {
	line := base
	amount := types.Round2(line.Quantity.Mul(line.Rate.OrZero()))
	line.Amount = types.NumberPtr(amount)
	line.BillAmount, line.TaxAmount, line.BillTotal = nil, nil, nil
	return line
}

// NewVATLine builds a row carrying its own net amount, VAT at the standard rate and gross total
func NewVATLine(base LineItem) LineItem {
	line := base
	net := types.Round2(line.Quantity.Mul(line.Rate.OrZero()))
	tax := types.Round2(net.Mul(StandardVATRate))
	line.Amount = nil
	line.BillAmount = types.NumberPtr(net)
	line.TaxAmount = types.NumberPtr(tax)
	line.BillTotal = types.NumberPtr(net.Add(tax))
	return line
}
