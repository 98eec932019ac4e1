package service

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/api/dto"
	"github.com/fleetledger/fleetledger/internal/domain/transporter"
	"github.com/fleetledger/fleetledger/internal/domain/vehicle"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/samber/lo"
	"github.com/sourcegraph/conc/iter"
)

type TransporterService interface {
	CreateTransporter(ctx context.Context, req dto.CreateTransporterRequest) (*dto.TransporterResponse, error)
	GetTransporter(ctx context.Context, id string) (*dto.TransporterResponse, error)
	ListTransporters(ctx context.Context, filter *types.QueryFilter) (*dto.ListTransportersResponse, error)
}

type transporterService struct {
	ServiceParams
}

func NewTransporterService(params ServiceParams) TransporterService {
	return &transporterService{
		ServiceParams: params,
	}
}

func (s *transporterService) CreateTransporter(ctx context.Context, req dto.CreateTransporterRequest) (*dto.TransporterResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t := req.ToTransporter(ctx)
	vehicles, err := s.fleet(ctx, t.VehicleIDs)
	if err != nil {
		return nil, err
	}
	if len(vehicles) != len(t.VehicleIDs) {
		known := lo.Map(vehicles, func(v *vehicle.Vehicle, _ int) string { return v.ID })
		missing, _ := lo.Difference(t.VehicleIDs, known)
		return nil, ierr.NewError("unknown vehicles").
			WithHint("Some of the vehicles assigned to the transporter do not exist").
			WithReportableDetails(map[string]any{
				"vehicle_ids": missing,
			}).
			Mark(ierr.ErrNotFound)
	}

	if err := s.TransporterRepo.Create(ctx, t); err != nil {
		return nil, err
	}

	s.Logger.Infow("created transporter",
		"transporter_id", t.ID,
		"vehicles", len(t.VehicleIDs),
	)
	return &dto.TransporterResponse{Transporter: t, Vehicles: vehicles}, nil
}

// fleet loads the given vehicles concurrently. Missing vehicles are dropped; any other
// failure is returned.
func (s *transporterService) fleet(ctx context.Context, ids []string) ([]*vehicle.Vehicle, error) {
	type result struct {
		vehicle *vehicle.Vehicle
		err     error
	}
	results := iter.Map(ids, func(id *string) result {
		v, err := s.VehicleRepo.Get(ctx, *id)
		if err != nil && ierr.IsNotFound(err) {
			return result{}
		}
		return result{vehicle: v, err: err}
	})

	vehicles := make([]*vehicle.Vehicle, 0, len(results))
	for _, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		if r.vehicle != nil {
			vehicles = append(vehicles, r.vehicle)
		}
	}
	return vehicles, nil
}

func (s *transporterService) GetTransporter(ctx context.Context, id string) (*dto.TransporterResponse, error) {
	t, err := s.TransporterRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.fleet(ctx, t.VehicleIDs)
	if err != nil {
		return nil, err
	}
	return &dto.TransporterResponse{Transporter: t, Vehicles: vehicles}, nil
}

func (s *transporterService) ListTransporters(ctx context.Context, filter *types.QueryFilter) (*dto.ListTransportersResponse, error) {
	if filter == nil {
		filter = types.NewDefaultQueryFilter()
	}

	transporters, err := s.TransporterRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.TransporterRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	items := lo.Map(transporters, func(t *transporter.Transporter, _ int) *dto.TransporterResponse {
		return &dto.TransporterResponse{Transporter: t}
	})
	resp := types.NewListResponse(items, total, filter.GetLimit(), filter.GetOffset())
	return &resp, nil
}
