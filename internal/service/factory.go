package service

import (
	"context"

	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/domain/contract"
	"github.com/fleetledger/fleetledger/internal/domain/customer"
	"github.com/fleetledger/fleetledger/internal/domain/invoice"
	"github.com/fleetledger/fleetledger/internal/domain/sequence"
	"github.com/fleetledger/fleetledger/internal/domain/transporter"
	"github.com/fleetledger/fleetledger/internal/domain/vehicle"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	Store  docstore.Store

	// Repositories
	InvoiceRepo     invoice.Repository
	SequenceRepo    sequence.Repository
	CustomerRepo    customer.Repository
	VehicleRepo     vehicle.Repository
	TransporterRepo transporter.Repository
	ContractRepo    contract.Repository

	// Publishers
	EventPublisher publisher.EventPublisher
}

// NewServiceParams is the common constructor used by fx to build every service
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	store docstore.Store,
	invoiceRepo invoice.Repository,
	sequenceRepo sequence.Repository,
	customerRepo customer.Repository,
	vehicleRepo vehicle.Repository,
	transporterRepo transporter.Repository,
	contractRepo contract.Repository,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		Store:           store,
		InvoiceRepo:     invoiceRepo,
		SequenceRepo:    sequenceRepo,
		CustomerRepo:    customerRepo,
		VehicleRepo:     vehicleRepo,
		TransporterRepo: transporterRepo,
		ContractRepo:    contractRepo,
		EventPublisher:  eventPublisher,
	}
}

// publishEvent emits an event after a committed write. Failures are logged and never
// returned, the write they describe has already happened.
func (p ServiceParams) publishEvent(ctx context.Context, eventName string, payload any) {
	if p.EventPublisher == nil {
		return
	}
	if err := p.EventPublisher.Publish(ctx, eventName, payload); err != nil {
		p.Logger.Errorw("failed to publish event",
			"event_name", eventName,
			"error", err,
		)
	}
}
