package service

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/api/dto"
	"github.com/fleetledger/fleetledger/internal/domain/vehicle"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/samber/lo"
)

type VehicleService interface {
	CreateVehicle(ctx context.Context, req dto.CreateVehicleRequest) (*dto.VehicleResponse, error)
	GetVehicle(ctx context.Context, id string) (*dto.VehicleResponse, error)
	ListVehicles(ctx context.Context, filter *types.QueryFilter) (*dto.ListVehiclesResponse, error)
}

type vehicleService struct {
	ServiceParams
}

func NewVehicleService(params ServiceParams) VehicleService {
	return &vehicleService{
		ServiceParams: params,
	}
}

func (s *vehicleService) CreateVehicle(ctx context.Context, req dto.CreateVehicleRequest) (*dto.VehicleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.TransporterID != "" {
		if _, err := s.TransporterRepo.Get(ctx, req.TransporterID); err != nil {
			return nil, err
		}
	}

	v := req.ToVehicle(ctx)
	if err := s.VehicleRepo.Create(ctx, v); err != nil {
		return nil, err
	}

	s.Logger.Infow("registered vehicle",
		"vehicle_id", v.ID,
		"plate_number", v.PlateNumber,
	)
	return &dto.VehicleResponse{Vehicle: v}, nil
}

func (s *vehicleService) GetVehicle(ctx context.Context, id string) (*dto.VehicleResponse, error) {
	v, err := s.VehicleRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.VehicleResponse{Vehicle: v}, nil
}

func (s *vehicleService) ListVehicles(ctx context.Context, filter *types.QueryFilter) (*dto.ListVehiclesResponse, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}

	vehicles, err := s.VehicleRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.VehicleRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	items := lo.Map(vehicles, func(v *vehicle.Vehicle, _ int) *dto.VehicleResponse {
		return &dto.VehicleResponse{Vehicle: v}
	})
	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}
