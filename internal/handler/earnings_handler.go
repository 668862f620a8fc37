package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutortrack/tutortrack-api/internal/service"
	"github.com/tutortrack/tutortrack-api/pkg/response"
)

// EarningsHandler exposes full-history earnings endpoints.
type EarningsHandler struct {
	earnings *service.EarningsService
}

// NewEarningsHandler constructs EarningsHandler.
func NewEarningsHandler(earnings *service.EarningsService) *EarningsHandler {
	return &EarningsHandler{earnings: earnings}
}

// Breakdown godoc
// @Summary Earnings breakdown
// @Description Lifetime earned, collected and outstanding totals across all sessions.
// @Tags Earnings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /earnings [get]
func (h *EarningsHandler) Breakdown(c *gin.Context) {
	breakdown, err := h.earnings.Breakdown(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, breakdown, nil)
}

// Export godoc
// @Summary Export an earnings report
// @Tags Earnings
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Success 200 {file} binary
// @Router /earnings/export [get]
func (h *EarningsHandler) Export(c *gin.Context) {
	result, err := h.earnings.Export(c.Request.Context(), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
