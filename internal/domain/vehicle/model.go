package vehicle

import (
	"github.com/fleetledger/fleetledger/internal/types"
)

// Vehicle is a truck that performs the billed work
type Vehicle struct {
	ID            string        `json:"id"`
	PlateNumber   string        `json:"plate_number"`
	Type          string        `json:"type,omitempty"`
	Capacity      *types.Number `json:"capacity,omitempty"`
	TransporterID string        `json:"transporter_id,omitempty"`
	types.BaseModel
}
