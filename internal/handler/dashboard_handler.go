package handler

import (
	"net/http"

	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler handles admin dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboardData godoc
// GET /api/v1/dashboard
// Returns catalogue counts, the current semester's scheduling progress and licence alerts.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	data, err := h.dashboardService.GetDashboardData(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}
