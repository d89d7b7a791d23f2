package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mopshyai/carebowapp-sub005/internal/repository"
	"github.com/mopshyai/carebowapp-sub005/internal/service"
	"github.com/mopshyai/carebowapp-sub005/pkg/model"
	"go.uber.org/zap"
)

// SafetyHandler implements the check-in, SOS, and contact endpoints
type SafetyHandler struct {
	service *service.SafetyService
	logger  *zap.Logger
}

// NewSafetyHandler creates a new SafetyHandler
func NewSafetyHandler(service *service.SafetyService, logger *zap.Logger) *SafetyHandler {
	return &SafetyHandler{
		service: service,
		logger:  logger,
	}
}

// Status handles GET /api/v1/safety/status
func (h *SafetyHandler) Status(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), userID, time.Now())
	if err != nil {
		h.logger.Error("failed to get check-in status", zap.Error(err), zap.String("user_id", userID))
		internalError(c, "Failed to get check-in status", err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// SettingsRequest is the settings replacement body
type SettingsRequest struct {
	DailyCheckInEnabled          bool   `json:"dailyCheckInEnabled"`
	DailyCheckInTime             string `json:"dailyCheckInTime" binding:"required"`
	GracePeriodMinutes           int    `json:"gracePeriodMinutes" binding:"required"`
	ShareLocationOnSOS           bool   `json:"shareLocationOnSOS"`
	ShareLocationOnMissedCheckIn bool   `json:"shareLocationOnMissedCheckIn"`
	EscalationEnabled            bool   `json:"escalationEnabled"`
}

// GetSettings handles GET /api/v1/safety/settings
func (h *SafetyHandler) GetSettings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	status, err := h.service.GetStatus(c.Request.Context(), userID, time.Now())
	if err != nil {
		internalError(c, "Failed to load safety settings", err)
		return
	}

	c.JSON(http.StatusOK, status.Settings)
}

// UpdateSettings handles PUT /api/v1/safety/settings
func (h *SafetyHandler) UpdateSettings(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), userID, &service.SettingsUpdate{
		DailyCheckInEnabled:          req.DailyCheckInEnabled,
		DailyCheckInTime:             req.DailyCheckInTime,
		GracePeriodMinutes:           req.GracePeriodMinutes,
		ShareLocationOnSOS:           req.ShareLocationOnSOS,
		ShareLocationOnMissedCheckIn: req.ShareLocationOnMissedCheckIn,
		EscalationEnabled:            req.EscalationEnabled,
	})
	if err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// CheckIn handles POST /api/v1/safety/checkin
func (h *SafetyHandler) CheckIn(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	status, err := h.service.ConfirmCheckIn(c.Request.Context(), userID, time.Now())
	if err != nil {
		h.logger.Error("failed to confirm check-in", zap.Error(err), zap.String("user_id", userID))
		internalError(c, "Failed to confirm check-in", err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// RecordMissed handles POST /api/v1/safety/missed
func (h *SafetyHandler) RecordMissed(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	event, err := h.service.RecordMissedCheckIn(c.Request.Context(), userID, time.Now())
	if err != nil {
		// Duplicate or not-yet-missed are client-state conflicts, not
		// server failures.
		c.JSON(http.StatusConflict, ErrorResponse{
			Code:    "CONFLICT",
			Message: "Missed check-in not recorded",
			Details: stringPtr(err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, event)
}

// SOSRequest is the SOS trigger body
type SOSRequest struct {
	Message string `json:"message"`
}

// TriggerSOS handles POST /api/v1/safety/sos
func (h *SafetyHandler) TriggerSOS(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	// The message is optional and an empty body is fine. Nothing about
	// the request body may stop an SOS.
	var req SOSRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.TriggerSOS(c.Request.Context(), userID, req.Message, time.Now())
	if err != nil {
		h.logger.Error("failed to trigger SOS", zap.Error(err), zap.String("user_id", userID))
		internalError(c, "Failed to trigger SOS", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TestAlert handles POST /api/v1/safety/test-alert
func (h *SafetyHandler) TestAlert(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	event, err := h.service.SendTestAlert(c.Request.Context(), userID, time.Now())
	if err != nil {
		internalError(c, "Failed to send test alert", err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Events handles GET /api/v1/safety/events
func (h *SafetyHandler) Events(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.service.Events(c.Request.Context(), userID, limit)
	if err != nil {
		internalError(c, "Failed to list safety events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}

// ClearEvents handles DELETE /api/v1/safety/events
func (h *SafetyHandler) ClearEvents(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	cleared, err := h.service.ClearHistory(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "Failed to clear safety events", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"eventsRemoved": cleared})
}

// ContactRequest is the emergency contact create/update body
type ContactRequest struct {
	Name                  string `json:"name" binding:"required"`
	Phone                 string `json:"phone" binding:"required"`
	Relationship          string `json:"relationship"`
	NotifyOnSOS           bool   `json:"notifyOnSOS"`
	NotifyOnMissedCheckIn bool   `json:"notifyOnMissedCheckIn"`
}

func (r *ContactRequest) toModel() *model.EmergencyContact {
	return &model.EmergencyContact{
		Name:                  r.Name,
		Phone:                 r.Phone,
		Relationship:          r.Relationship,
		NotifyOnSOS:           r.NotifyOnSOS,
		NotifyOnMissedCheckIn: r.NotifyOnMissedCheckIn,
	}
}

// ListContacts handles GET /api/v1/safety/contacts
func (h *SafetyHandler) ListContacts(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	contacts, err := h.service.ListContacts(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "Failed to list emergency contacts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}

// CreateContact handles POST /api/v1/safety/contacts
func (h *SafetyHandler) CreateContact(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	contact, err := h.service.AddContact(c.Request.Context(), userID, req.toModel())
	if err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusCreated, contact)
}

// UpdateContact handles PUT /api/v1/safety/contacts/:id
func (h *SafetyHandler) UpdateContact(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	contact, err := h.service.UpdateContact(c.Request.Context(), userID, c.Param("id"), req.toModel())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    "NOT_FOUND",
				Message: "Emergency contact not found",
			})
			return
		}
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// DeleteContact handles DELETE /api/v1/safety/contacts/:id
func (h *SafetyHandler) DeleteContact(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteContact(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    "NOT_FOUND",
				Message: "Emergency contact not found",
			})
			return
		}
		internalError(c, "Failed to delete emergency contact", err)
		return
	}

	c.Status(http.StatusNoContent)
}
