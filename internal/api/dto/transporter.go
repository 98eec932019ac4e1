package dto

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/domain/transporter"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/fleetledger/fleetledger/internal/validator"
	"github.com/samber/lo"
)

// CreateTransporterRequest represents the request to create a transporter
type CreateTransporterRequest struct {
	Name       string   `json:"name" validate:"required,max=255"`
	Phone      string   `json:"phone" validate:"omitempty,max=32"`
	VehicleIDs []string `json:"vehicle_ids" validate:"omitempty,dive,required"`
}

func (r *CreateTransporterRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateTransporterRequest) ToTransporter(ctx context.Context) *transporter.Transporter {
	return &transporter.Transporter{
		ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSPORTER),
		Name:       r.Name,
		Phone:      r.Phone,
		VehicleIDs: lo.Uniq(r.VehicleIDs),
		BaseModel:  types.GetDefaultBaseModel(ctx),
	}
}

// ListTransportersResponse represents the response for listing transporters
type ListTransportersResponse = types.ListResponse[*TransporterResponse]
