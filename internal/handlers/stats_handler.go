package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"baul-admin-api/internal/services"
)

// StatsHandler serves the sales statistics dashboard
type StatsHandler struct {
	statsService services.StatsService
}

// NewStatsHandler creates a new statistics handler
func NewStatsHandler(statsService services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// @Summary Sales statistics
// @Description KPIs, customer ranking, commissions and chart series for a date range
// @Tags estadisticas
// @Produce json
// @Param rango query string false "7d, 30d, 90d, ytd, month or custom" default(30d)
// @Param desde query string false "Custom range start (YYYY-MM-DD)"
// @Param hasta query string false "Custom range end (YYYY-MM-DD)"
// @Success 200 {object} analytics.Report
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /estadisticas/ventas [get]
func (h *StatsHandler) SalesReport(c *gin.Context) {
	var req services.SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid query parameters",
			Message: err.Error(),
		})
		return
	}

	report, err := h.statsService.SalesReport(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
