package transporter

import (
	"github.com/fleetledger/fleetledger/internal/types"
)

// Transporter is a carrier company operating vehicles on our behalf
type Transporter struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Phone      string   `json:"phone,omitempty"`
	VehicleIDs []string `json:"vehicle_ids,omitempty"`
	types.BaseModel
}
