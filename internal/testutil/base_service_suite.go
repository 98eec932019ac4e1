package testutil

import (
	"context"
	"time"

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
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/repository/document"
	"github.com/fleetledger/fleetledger/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	InvoiceRepo     invoice.Repository
	SequenceRepo    sequence.Repository
	CustomerRepo    customer.Repository
	VehicleRepo     vehicle.Repository
	TransporterRepo transporter.Repository
	ContractRepo    contract.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	store     *memory.Store
	stores    Stores
	publisher *InMemoryPublisherService
	logger    *logger.Logger
	config    *config.Configuration
	now       time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	s.logger = logger.NewNoopLogger()
	s.config = config.GetDefaultConfig()
	s.now = time.Now().UTC()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.publisher.Clear()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.store = memory.NewStore(memory.WithMaxAttempts(s.config.Invoice.MaxTxAttempts))
	s.publisher = NewInMemoryEventPublisher()
	s.stores = NewStores(s.store, s.logger)
}

// NewStores builds the document repositories over store, sharing one fresh cache
func NewStores(store docstore.Store, log *logger.Logger) Stores {
	c := cache.NewInMemoryCache(config.GetDefaultConfig())
	return Stores{
		InvoiceRepo:     document.NewInvoiceRepository(store, log),
		SequenceRepo:    document.NewSequenceRepository(store, log),
		CustomerRepo:    document.NewCustomerRepository(store, log, c),
		VehicleRepo:     document.NewVehicleRepository(store, log, c),
		TransporterRepo: document.NewTransporterRepository(store, log, c),
		ContractRepo:    document.NewContractRepository(store, log),
	}
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStore returns the document store behind the repositories
func (s *BaseServiceTestSuite) GetStore() *memory.Store {
	return s.store
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPublisher returns the test event publisher
func (s *BaseServiceTestSuite) GetPublisher() *InMemoryPublisherService {
	return s.publisher
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
