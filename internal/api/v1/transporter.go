package v1

import (
	"net/http"

	"github.com/fleetledger/fleetledger/internal/api/dto"
	ierr "github.com/fleetledger/fleetledger/internal/errors"
	"github.com/fleetledger/fleetledger/internal/logger"
	"github.com/fleetledger/fleetledger/internal/service"
	"github.com/fleetledger/fleetledger/internal/types"
	"github.com/fleetledger/fleetledger/internal/validator"
	"github.com/gin-gonic/gin"
)

type TransporterHandler struct {
	service service.TransporterService
	logger  *logger.Logger
}

func NewTransporterHandler(svc service.TransporterService, logger *logger.Logger) *TransporterHandler {
	return &TransporterHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateTransporter godoc
// @Summary Create a transporter
// @Tags Transporters
// @Accept json
// @Produce json
// @Param transporter body dto.CreateTransporterRequest true "Transporter details"
// @Success 201 {object} dto.TransporterResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /transporters [post]
func (h *TransporterHandler) CreateTransporter(c *gin.Context) {
	var req dto.CreateTransporterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTransporter(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetTransporter godoc
// @Summary Get a transporter by ID
// @Tags Transporters
// @Produce json
// @Param id path string true "Transporter ID"
// @Success 200 {object} dto.TransporterResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /transporters/{id} [get]
func (h *TransporterHandler) GetTransporter(c *gin.Context) {
	resp, err := h.service.GetTransporter(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListTransporters godoc
// @Summary List transporters
// @Tags Transporters
// @Produce json
// @Param filter query types.QueryFilter false "Filter"
// @Success 200 {object} dto.ListTransportersResponse
// @Router /transporters [get]
func (h *TransporterHandler) ListTransporters(c *gin.Context) {
	filter := types.NewDefaultQueryFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid query parameters").
			Mark(ierr.ErrValidation))
		return
	}
	if err := validator.ValidateRequest(filter); err != nil {
		c.Error(err)
		return
	}

	resp, err := h.service.ListTransporters(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
