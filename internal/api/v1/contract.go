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

type ContractHandler struct {
	service service.ContractService
	logger  *logger.Logger
}

func NewContractHandler(svc service.ContractService, logger *logger.Logger) *ContractHandler {
	return &ContractHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateContract godoc
// @Summary Create a contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract body dto.CreateContractRequest true "Contract details"
// @Success 201 {object} dto.ContractResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /contracts [post]
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req dto.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateContract(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetContract godoc
// @Summary Get a contract by ID
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} dto.ContractResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /contracts/{id} [get]
func (h *ContractHandler) GetContract(c *gin.Context) {
	resp, err := h.service.GetContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListContracts godoc
// @Summary List contracts
// @Tags Contracts
// @Produce json
// @Param filter query types.ContractFilter false "Filter"
// @Success 200 {object} dto.ListContractsResponse
// @Router /contracts [get]
func (h *ContractHandler) ListContracts(c *gin.Context) {
	filter := types.NewContractFilter()
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

	resp, err := h.service.ListContracts(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateContractStatus godoc
// @Summary Change the status of a contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param status body dto.UpdateContractStatusRequest true "New status"
// @Success 200 {object} dto.ContractResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /contracts/{id}/status [put]
func (h *ContractHandler) UpdateContractStatus(c *gin.Context) {
	var req dto.UpdateContractStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdateContractStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
