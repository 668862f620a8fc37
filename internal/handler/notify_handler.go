package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutortrack/tutortrack-api/internal/service"
	appErrors "github.com/tutortrack/tutortrack-api/pkg/errors"
	"github.com/tutortrack/tutortrack-api/pkg/response"
)

// NotifyHandler exposes parent email endpoints. A 202 means queued for
// delivery, not delivered.
type NotifyHandler struct {
	notifications *service.NotificationService
}

// NewNotifyHandler constructs NotifyHandler.
func NewNotifyHandler(notifications *service.NotificationService) *NotifyHandler {
	return &NotifyHandler{notifications: notifications}
}

// ClassSummary godoc
// @Summary Email a class summary
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body service.ClassSummaryRequest true "Summary payload"
// @Success 202 {object} response.Envelope
// @Router /notify/class-summary [post]
func (h *NotifyHandler) ClassSummary(c *gin.Context) {
	var req service.ClassSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.notifications.ClassSummary(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}

// PaymentReminder godoc
// @Summary Email a payment reminder
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body service.PaymentReminderRequest true "Reminder payload"
// @Success 202 {object} response.Envelope
// @Router /notify/payment-reminder [post]
func (h *NotifyHandler) PaymentReminder(c *gin.Context) {
	var req service.PaymentReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.notifications.PaymentReminder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}

// Custom godoc
// @Summary Email a custom message
// @Tags Notifications
// @Accept json
// @Produce json
// @Param payload body service.CustomMessageRequest true "Message payload"
// @Success 202 {object} response.Envelope
// @Router /notify/custom [post]
func (h *NotifyHandler) Custom(c *gin.Context) {
	var req service.CustomMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.notifications.Custom(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result, nil)
}
