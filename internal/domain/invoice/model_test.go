package invoice

import (
	"testing"
	"time"

	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoice_WithBackfill(t *testing.T) {
	legacy := &Invoice{
		ID:           "inv_legacy",
		BusinessMode: types.BusinessModeB2C,
		Items: []LineItem{
			{Quantity: types.NewNumber(2), Rate: num("10")},
		},
		TaxRate:   num("5"),
		BillTotal: num("0"),
	}

	shown := legacy.WithBackfill()
	require.NotSame(t, legacy, shown)
	assert.True(t, dec("21").Equal(shown.BillTotal.Decimal))
	assert.True(t, dec("1").Equal(shown.VAT5Percent.Decimal))
	assert.Equal(t, "twenty one", shown.TotalInWords)

	// the stored record is untouched
	assert.True(t, legacy.BillTotal.IsZero())
	assert.Nil(t, legacy.TaxAmount)
	assert.Empty(t, legacy.TotalInWords)
}

func TestInvoice_WithBackfillKeepsCurrentRows(t *testing.T) {
	current := &Invoice{Items: []LineItem{{Amount: num("100")}}}
	current.Recalculate()
	assert.Same(t, current, current.WithBackfill())

	noWords := *current
	noWords.TotalInWords = ""
	shown := noWords.WithBackfill()
	assert.Equal(t, "one hundred five", shown.TotalInWords)
	assert.Empty(t, noWords.TotalInWords)
}

func TestInvoice_SequenceNumber(t *testing.T) {
	inv := &Invoice{InvoiceNumber: "INV-202401-0012"}
	seq, ok := inv.SequenceNumber()
	assert.True(t, ok)
	assert.Equal(t, 12, seq)

	inv.Sequence = lo.ToPtr(3)
	seq, ok = inv.SequenceNumber()
	assert.True(t, ok)
	assert.Equal(t, 3, seq)

	_, ok = (&Invoice{}).SequenceNumber()
	assert.False(t, ok)
}

func TestInvoice_Renumber(t *testing.T) {
	inv := &Invoice{}
	inv.CreatedAt = time.Date(2024, time.November, 30, 23, 0, 0, 0, time.UTC)
	inv.Renumber(4)
	assert.Equal(t, 4, *inv.Sequence)
	assert.Equal(t, "INV-202411-0004", inv.InvoiceNumber)
}

func TestInvoice_IsSettled(t *testing.T) {
	tests := []struct {
		name string
		inv  Invoice
		mode types.BusinessMode
		want bool
	}{
		{name: "b2c paid", inv: Invoice{Status: types.InvoiceStatusPaid}, mode: types.BusinessModeB2C, want: true},
		{name: "b2c pending", inv: Invoice{Status: types.InvoiceStatusPending}, mode: types.BusinessModeB2C},
		{name: "b2b paid only", inv: Invoice{Status: types.InvoiceStatusPaid}, mode: types.BusinessModeB2B},
		{
			name: "b2b fully settled",
			inv: Invoice{
				Status:                   types.InvoiceStatusPaid,
				CargoStatus:              types.CargoStatusDelivered,
				TransporterPaymentStatus: types.TransporterPaymentPaid,
			},
			mode: types.BusinessModeB2B,
			want: true,
		},
		{
			name: "b2b cargo in transit",
			inv: Invoice{
				Status:                   types.InvoiceStatusPaid,
				CargoStatus:              types.CargoStatusInTransit,
				TransporterPaymentStatus: types.TransporterPaymentPaid,
			},
			mode: types.BusinessModeB2B,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.inv.IsSettled(tt.mode))
		})
	}
}

func TestInvoice_VehicleIDs(t *testing.T) {
	inv := &Invoice{
		VehicleID: "veh_1",
		Items: []LineItem{
			{VehicleID: "veh_2"},
			{VehicleID: "veh_1"},
			{},
		},
	}
	assert.Equal(t, []string{"veh_1", "veh_2"}, inv.VehicleIDs())
}
