package repository

import (
	"github.com/fleetledger/fleetledger/internal/cache"
	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/docstore"
	"github.com/fleetledger/fleetledger/internal/docstore/memory"
	"github.com/fleetledger/fleetledger/internal/domain/contract"
	"github.com/fleetledger/fleetledger/internal/domain/customer"
	"github.com/fleetledger/fleetledger/internal/domain/invoice"
	"github.com/fleetledger/fleetledger/internal/domain/sequence"
	"github.com/fleetledger/fleetledger/internal/domain/transporter"
	"github.com/fleetledger/fleetledger/internal/domain/vehicle"
	"github.com/fleetledger/fleetledger/internal/dynamodb"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/repository/document"
	"github.com/fleetledger/fleetledger/internal/types"
)

// NewStore opens the document store selected by store.type
func NewStore(cfg *config.Configuration, log *logger.Logger) (docstore.Store, error) {
	switch cfg.Store.Type {
	case types.StoreTypeDynamoDB:
		client, err := dynamodb.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		log.Infow("using dynamodb document store",
			"table", cfg.DynamoDB.TableName,
			"region", cfg.DynamoDB.Region)
		return dynamodb.NewStoreFromConfig(client, cfg, log), nil
	default:
		log.Infow("using in-memory document store")
		return memory.NewStore(memory.WithMaxAttempts(cfg.Invoice.MaxTxAttempts)), nil
	}
}

func NewInvoiceRepository(store docstore.Store, logger *logger.Logger) invoice.Repository {
	return document.NewInvoiceRepository(store, logger)
}

func NewSequenceRepository(store docstore.Store, logger *logger.Logger) sequence.Repository {
	return document.NewSequenceRepository(store, logger)
}

func NewCustomerRepository(store docstore.Store, logger *logger.Logger, c cache.Cache) customer.Repository {
	return document.NewCustomerRepository(store, logger, c)
}

func NewVehicleRepository(store docstore.Store, logger *logger.Logger, c cache.Cache) vehicle.Repository {
	return document.NewVehicleRepository(store, logger, c)
}

func NewTransporterRepository(store docstore.Store, logger *logger.Logger, c cache.Cache) transporter.Repository {
	return document.NewTransporterRepository(store, logger, c)
}

func NewContractRepository(store docstore.Store, logger *logger.Logger) contract.Repository {
	return document.NewContractRepository(store, logger)
}
