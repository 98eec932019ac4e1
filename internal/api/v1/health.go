package v1

import (
	"net/http"

	"github.com/fleetledger/fleetledger/internal/api/dto"
	"github.com/fleetledger/fleetledger/internal/config"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	cfg *config.Configuration
}

func NewHealthHandler(cfg *config.Configuration) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{
		Status: "ok",
		Store:  string(h.cfg.Store.Type),
		Mode:   string(h.cfg.Deployment.Mode),
	})
}
