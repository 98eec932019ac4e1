package main

import (
	"context"
	"time"

	_ "github.com/fleetledger/fleetledger/docs/swagger"

	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/fleetledger/fleetledger/internal/api"
	v1 "github.com/fleetledger/fleetledger/internal/api/v1"
	"github.com/fleetledger/fleetledger/internal/cache"
	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/publisher"
	"github.com/fleetledger/fleetledger/internal/pubsub"
	"github.com/fleetledger/fleetledger/internal/pubsub/kafka"
	"github.com/fleetledger/fleetledger/internal/pubsub/memory"
	"github.com/fleetledger/fleetledger/internal/pyroscope"
	"github.com/fleetledger/fleetledger/internal/repository"
	"github.com/fleetledger/fleetledger/internal/sentry"
	"github.com/fleetledger/fleetledger/internal/service"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/fleetledger/fleetledger/internal/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// @title Fleetledger API
// @version 1.0
// @description Invoice numbering and totals back office for transport
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter the token as *Bearer &lt;token&gt;*

func init() {
	// invoice numbers take their month from CreatedAt, keep it in UTC everywhere
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Document store
			repository.NewStore,

			// Cache
			fx.Annotate(cache.NewInMemoryCache, fx.As(new(cache.Cache))),

			// Events
			providePubSub,
			publisher.NewEventPublisher,

			// Repositories
			repository.NewInvoiceRepository,
			repository.NewSequenceRepository,
			repository.NewCustomerRepository,
			repository.NewVehicleRepository,
			repository.NewTransporterRepository,
			repository.NewContractRepository,
		),
	)

	// Monitoring
	opts = append(opts,
		sentry.Module(),
		pyroscope.Module(),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewInvoiceService,
			service.NewCustomerService,
			service.NewVehicleService,
			service.NewTransporterService,
			service.NewContractService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePubSub(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) (pubsub.PubSub, error) {
	var (
		ps  pubsub.PubSub
		err error
	)

	switch cfg.Event.PubSub {
	case types.KafkaPubSub:
		ps, err = kafka.NewPubSub(cfg, log)
		if err != nil {
			return nil, err
		}
	default:
		ps = memory.NewPubSub()
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return ps.Close()
		},
	})
	return ps, nil
}

func provideHandlers(
	cfg *config.Configuration,
	logger *logger.Logger,
	invoiceService service.InvoiceService,
	customerService service.CustomerService,
	vehicleService service.VehicleService,
	transporterService service.TransporterService,
	contractService service.ContractService,
) api.Handlers {
	return api.Handlers{
		Health:      v1.NewHealthHandler(cfg),
		Invoice:     v1.NewInvoiceHandler(invoiceService, logger),
		Customer:    v1.NewCustomerHandler(customerService, logger),
		Vehicle:     v1.NewVehicleHandler(vehicleService, logger),
		Transporter: v1.NewTransporterHandler(transporterService, logger),
		Contract:    v1.NewContractHandler(contractService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	ps pubsub.PubSub,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startEventLog(lc, ps, cfg, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
		startEventLog(lc, ps, cfg, log)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(r)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

// startEventLog tails the event topic into the log
func startEventLog(
	lc fx.Lifecycle,
	ps pubsub.PubSub,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := publisher.Consume(ctx, ps, cfg.Event.Topic, publisher.LogEvents(log), log); err != nil {
					log.Errorw("event log stopped", "topic", cfg.Event.Topic, "error", err)
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			log.Info("Shutting down event log...")
			cancel()
			return nil
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}
