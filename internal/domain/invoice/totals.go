package invoice

import (
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/shopspring/decimal"
)

// StandardVATRate is the 5% VAT applied to amount based lines and VAT-per-line rows
var StandardVATRate = decimal.RequireFromString("0.05")

var hundred = decimal.NewFromInt(100)

// Totals is the computed money summary of an invoice. VAT5Percent mirrors TaxAmount.
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	VAT5Percent decimal.Decimal
	BillTotal   decimal.Decimal
	GrandTotal  decimal.Decimal
}

// Lines is a list of line items whose shape decides how totals are derived
type Lines interface {
	Totals(taxRatePercent decimal.Decimal) Totals
}

// AmountLines carry a precomputed amount per row. VAT is always the standard 5%.
type AmountLines []LineItem

// PerItemTotalLines carry net, tax and gross per row; each column is summed on its own.
type PerItemTotalLines []LineItem

// QuantityRateLines carry only quantity and price, or a net bill amount.
type QuantityRateLines []LineItem

// ClassifyLines picks the variant by inspecting the first row
func ClassifyLines(items []LineItem) Lines {
	switch {
	case len(items) == 0:
		return QuantityRateLines(nil)
	case items[0].Amount != nil:
		return AmountLines(items)
	case items[0].BillTotal != nil:
		return PerItemTotalLines(items)
	default:
		return QuantityRateLines(items)
	}
}

// ComputeTotals derives totals for items. An empty list yields zero totals.
func ComputeTotals(items []LineItem, taxRatePercent decimal.Decimal) Totals {
	return ClassifyLines(items).Totals(taxRatePercent)
}

func newTotals(subtotal, tax, billTotal decimal.Decimal) Totals {
	return Totals{
		Subtotal:    types.Round2(subtotal),
		TaxAmount:   types.Round2(tax),
		VAT5Percent: types.Round2(tax),
		BillTotal:   types.Round2(billTotal),
		GrandTotal:  types.Round2(billTotal),
	}
}

// Totals ignores the requested rate
func (l AmountLines) Totals(_ decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, li := range l {
		subtotal = subtotal.Add(li.Amount.OrZero())
	}
	subtotal = types.Round2(subtotal)
	tax := types.Round2(subtotal.Mul(StandardVATRate))
	return newTotals(subtotal, tax, subtotal.Add(tax))
}

func (l PerItemTotalLines) Totals(_ decimal.Decimal) Totals {
	subtotal, tax, billTotal := decimal.Zero, decimal.Zero, decimal.Zero
	for _, li := range l {
		subtotal = subtotal.Add(li.BillAmount.OrZero())
		tax = tax.Add(li.TaxAmount.OrZero())
		billTotal = billTotal.Add(li.BillTotal.OrZero())
	}
	return newTotals(subtotal, tax, billTotal)
}

func (l QuantityRateLines) Totals(taxRatePercent decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, li := range l {
		if li.BillAmount != nil {
			subtotal = subtotal.Add(li.BillAmount.Decimal)
			continue
		}
		subtotal = subtotal.Add(li.Quantity.Mul(li.Price()))
	}
	if taxRatePercent.IsNegative() {
		taxRatePercent = decimal.Zero
	}
	subtotal = types.Round2(subtotal)
	tax := types.Round2(subtotal.Mul(taxRatePercent).Div(hundred))
	return newTotals(subtotal, tax, subtotal.Add(tax))
}
