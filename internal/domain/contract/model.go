package contract

import (
	"time"

	"github.com/fleetledger/fleetledger/internal/types"
)

// Contract is a haulage agreement that invoices are billed against
type Contract struct {
	ID            string               `json:"id"`
	CustomerID    string               `json:"customer_id"`
	TransporterID string               `json:"transporter_id,omitempty"`
	VehicleID     string               `json:"vehicle_id,omitempty"`
	Title         string               `json:"title"`
	Status        types.ContractStatus `json:"status"`
	StartDate     *time.Time           `json:"start_date,omitempty"`
	EndDate       *time.Time           `json:"end_date,omitempty"`
	Value         *types.Number        `json:"value,omitempty"`
	types.BaseModel
}

// IsActive reports whether the contract still accepts work
func (c *Contract) IsActive() bool {
	return c.Status == types.ContractStatusActive
}
