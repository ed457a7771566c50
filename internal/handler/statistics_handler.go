package handler

import (
	"net/http"

	"supplydesk/internal/service"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	router.GET("/dashboard", requireAdmin, h.GetDashboard)
}

// @Summary      Get dashboard summary
// @Description  Inventory totals, low stock items, inventory value and request figures
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} model.DashboardSummary
// @Failure      401 {object} response.ErrorBody "Unauthorized"
// @Failure      500 {object} response.ErrorBody "Internal server error"
// @Security     BearerAuth
// @Router       /api/dashboard [get]
func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	summary, err := h.statisticsService.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	c.JSON(http.StatusOK, summary)
}
