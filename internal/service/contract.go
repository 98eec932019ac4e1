package service

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/api/dto"
	"github.com/fleetledger/fleetledger/internal/domain/contract"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/samber/lo"
)

type ContractService interface {
	CreateContract(ctx context.Context, req dto.CreateContractRequest) (*dto.ContractResponse, error)
	GetContract(ctx context.Context, id string) (*dto.ContractResponse, error)
	ListContracts(ctx context.Context, filter *types.ContractFilter) (*dto.ListContractsResponse, error)
	UpdateContractStatus(ctx context.Context, id string, req dto.UpdateContractStatusRequest) (*dto.ContractResponse, error)
}

type contractService struct {
	ServiceParams
}

func NewContractService(params ServiceParams) ContractService {
	return &contractService{
		ServiceParams: params,
	}
}

func (s *contractService) CreateContract(ctx context.Context, req dto.CreateContractRequest) (*dto.ContractResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.CustomerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	if req.TransporterID != "" {
		if _, err := s.TransporterRepo.Get(ctx, req.TransporterID); err != nil {
			return nil, err
		}
	}
	if req.VehicleID != "" {
		if _, err := s.VehicleRepo.Get(ctx, req.VehicleID); err != nil {
			return nil, err
		}
	}

	c := req.ToContract(ctx)
	if err := s.ContractRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.Logger.Infow("created contract",
		"contract_id", c.ID,
		"customer_id", c.CustomerID,
	)
	return &dto.ContractResponse{Contract: c}, nil
}

func (s *contractService) GetContract(ctx context.Context, id string) (*dto.ContractResponse, error) {
	c, err := s.ContractRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.ContractResponse{Contract: c}, nil
}

func (s *contractService) ListContracts(ctx context.Context, filter *types.ContractFilter) (*dto.ListContractsResponse, error) {
	if filter == nil {
		filter = types.NewContractFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	contracts, err := s.ContractRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.ContractRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(contracts, func(c *contract.Contract, _ int) *dto.ContractResponse {
		return &dto.ContractResponse{Contract: c}
	})
	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}

func (s *contractService) UpdateContractStatus(ctx context.Context, id string, req dto.UpdateContractStatusRequest) (*dto.ContractResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.ContractRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == req.Status {
		return &dto.ContractResponse{Contract: c}, nil
	}

	c.Status = req.Status
	c.Touch(ctx)
	if err := s.ContractRepo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, types.EventContractUpdated, c)
	return &dto.ContractResponse{Contract: c}, nil
}
