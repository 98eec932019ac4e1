package customer

import (
	"github.com/fleetledger/fleetledger/internal/types"
)

// Customer represents a billed party
type Customer struct {
	// ID is the unique identifier for the customer
	ID string `json:"id"`

	// Name is the legal name printed on invoices
	Name string `json:"name"`

	// TRN is the tax registration number
	TRN string `json:"trn,omitempty"`

	// Address is the billing address
	Address string `json:"address,omitempty"`

	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`

	types.BaseModel
}
