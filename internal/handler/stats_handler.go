package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutortrack/tutortrack-api/internal/service"
	"github.com/tutortrack/tutortrack-api/pkg/response"
)

// StatsHandler exposes the dashboard stats endpoint.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get godoc
// @Summary Dashboard stats
// @Description Student count, classes this week, revenue this month and unpaid session count.
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	stats, cached, err := h.stats.Compute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cached": cached})
}
