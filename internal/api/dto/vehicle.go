package dto

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/domain/vehicle"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/fleetledger/fleetledger/internal/validator"
)

// CreateVehicleRequest represents the request to register a vehicle
type CreateVehicleRequest struct {
	PlateNumber   string        `json:"plate_number" validate:"required,max=32"`
	Type          string        `json:"type" validate:"omitempty,max=64"`
	Capacity      *types.Number `json:"capacity"`
	TransporterID string        `json:"transporter_id"`
}

func (r *CreateVehicleRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateVehicleRequest) ToVehicle(ctx context.Context) *vehicle.Vehicle {
	return &vehicle.Vehicle{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_VEHICLE),
		PlateNumber:   r.PlateNumber,
		Type:          r.Type,
		Capacity:      r.Capacity,
		TransporterID: r.TransporterID,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// VehicleResponse represents the response for vehicle operations
type VehicleResponse struct {
	*vehicle.Vehicle
}

// ListVehiclesResponse represents the response for listing vehicles
type ListVehiclesResponse = types.ListResponse[*VehicleResponse]
