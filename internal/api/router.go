package api

import (
	v1 "github.com/fleetledger/fleetledger/internal/api/v1"
	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/pyroscope"
	"github.com/fleetledger/fleetledger/internal/rest/middleware"
	"github.com/fleetledger/fleetledger/internal/sentry"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Health      *v1.HealthHandler
	Invoice     *v1.InvoiceHandler
	Customer    *v1.CustomerHandler
	Vehicle     *v1.VehicleHandler
	Transporter *v1.TransporterHandler
	Contract    *v1.ContractHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	sentrySvc *sentry.Service,
	pyroscopeSvc *pyroscope.Service,
) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(sentrySvc),
		middleware.PyroscopeMiddleware(pyroscopeSvc),
		middleware.ErrorHandler(sentrySvc, logger),
	)

	router.GET("/health", handlers.Health.Health)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1Router := router.Group("/v1")
	v1Router.Use(middleware.AuthenticateMiddleware(cfg, logger))

	invoices := v1Router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/stats/summary", handlers.Invoice.GetSummary)
		invoices.POST("/resequence", handlers.Invoice.ResequenceInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id", handlers.Invoice.UpdateInvoice)
		invoices.DELETE("/:id", handlers.Invoice.DeleteInvoice)
	}

	customers := v1Router.Group("/customers")
	{
		customers.POST("", handlers.Customer.CreateCustomer)
		customers.GET("", handlers.Customer.ListCustomers)
		customers.GET("/:id", handlers.Customer.GetCustomer)
	}

	vehicles := v1Router.Group("/vehicles")
	{
		vehicles.POST("", handlers.Vehicle.CreateVehicle)
		vehicles.GET("", handlers.Vehicle.ListVehicles)
		vehicles.GET("/:id", handlers.Vehicle.GetVehicle)
	}

	transporters := v1Router.Group("/transporters")
	{
		transporters.POST("", handlers.Transporter.CreateTransporter)
		transporters.GET("", handlers.Transporter.ListTransporters)
		transporters.GET("/:id", handlers.Transporter.GetTransporter)
	}

	contracts := v1Router.Group("/contracts")
	{
		contracts.POST("", handlers.Contract.CreateContract)
		contracts.GET("", handlers.Contract.ListContracts)
		contracts.GET("/:id", handlers.Contract.GetContract)
		contracts.PUT("/:id/status", handlers.Contract.UpdateContractStatus)
	}

	return router
}
