package types

import (
	ierr "github.com/fleetledger/fleetledger/internal/errors"
)

// ContractStatus is the lifecycle of a haulage contract
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusCompleted ContractStatus = "completed"
	ContractStatusCancelled ContractStatus = "cancelled"
)

func (s ContractStatus) Validate() error {
	switch s {
	case ContractStatusActive, ContractStatusCompleted, ContractStatusCancelled:
		return nil
	}
	return ierr.NewError("invalid contract status").
		WithHint("Contract status must be one of active, completed, cancelled").
		WithReportableDetails(map[string]any{
			"status": string(s),
		}).
		Mark(ierr.ErrValidation)
}

// ContractFilter narrows contract listings
type ContractFilter struct {
	*QueryFilter
	Status     ContractStatus `json:"status,omitempty" form:"status"`
	CustomerID string         `json:"customer_id,omitempty" form:"customer_id"`
}

func NewContractFilter() *ContractFilter {
	return &ContractFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *ContractFilter) Validate() error {
	if f == nil || f.Status == "" {
		return nil
	}
	return f.Status.Validate()
}
