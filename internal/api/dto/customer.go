package dto

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/domain/customer"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/fleetledger/fleetledger/internal/validator"
)

// CreateCustomerRequest represents the request to create a customer
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	TRN     string `json:"trn" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"omitempty,max=512"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
}

func (r *CreateCustomerRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateCustomerRequest) ToCustomer(ctx context.Context) *customer.Customer {
	return &customer.Customer{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CUSTOMER),
		Name:      r.Name,
		TRN:       r.TRN,
		Address:   r.Address,
		Email:     r.Email,
		Phone:     r.Phone,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
}

// CustomerResponse represents the response for customer operations
type CustomerResponse struct {
	*customer.Customer
}

// ListCustomersResponse represents the response for listing customers
type ListCustomersResponse = types.ListResponse[*CustomerResponse]
