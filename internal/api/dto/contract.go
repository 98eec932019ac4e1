package dto

import (
	"context"
	"time"

	"github.com/fleetledger/fleetledger/internal/domain/contract"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/fleetledger/fleetledger/internal/validator"
)

// CreateContractRequest represents the request to create a contract
type CreateContractRequest struct {
	CustomerID    string        `json:"customer_id" validate:"required"`
	TransporterID string        `json:"transporter_id"`
	VehicleID     string        `json:"vehicle_id"`
	Title         string        `json:"title" validate:"required,max=255"`
	StartDate     *time.Time    `json:"start_date"`
	EndDate       *time.Time    `json:"end_date"`
	Value         *types.Number `json:"value"`
}

func (r *CreateContractRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.StartDate != nil && r.EndDate != nil && r.EndDate.Before(*r.StartDate) {
		return ierr.NewError("end date before start date").
			WithHint("Contract end date must not be before its start date").
			Mark(ierr.ErrValidation)
	}
	if r.Value != nil && r.Value.IsNegative() {
		return ierr.NewError("negative contract value").
			WithHint("Contract value must not be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateContractRequest) ToContract(ctx context.Context) *contract.Contract {
	return &contract.Contract{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CONTRACT),
		CustomerID:    r.CustomerID,
		TransporterID: r.TransporterID,
		VehicleID:     r.VehicleID,
		Title:         r.Title,
		Status:        types.ContractStatusActive,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		Value:         r.Value,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

// UpdateContractStatusRequest moves a contract through its lifecycle
type UpdateContractStatusRequest struct {
	Status types.ContractStatus `json:"status" validate:"required"`
}

func (r *UpdateContractStatusRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Status.Validate()
}

// ContractResponse represents the response for contract operations
type ContractResponse struct {
	*contract.Contract
}

// ListContractsResponse represents the response for listing contracts
type ListContractsResponse = types.ListResponse[*ContractResponse]
