package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mopshyai/carebowapp-sub005/internal/repository"
	"github.com/mopshyai/carebowapp-sub005/internal/service"
	"github.com/mopshyai/carebowapp-sub005/internal/triage"
	"github.com/mopshyai/carebowapp-sub005/pkg/model"
	"go.uber.org/zap"
)

// SymptomHandler implements the symptom entry endpoints
type SymptomHandler struct {
	service *service.SymptomService
	logger  *zap.Logger
}

// NewSymptomHandler creates a new SymptomHandler
func NewSymptomHandler(service *service.SymptomService, logger *zap.Logger) *SymptomHandler {
	return &SymptomHandler{
		service: service,
		logger:  logger,
	}
}

// SymptomRequest is the create/update request body
type SymptomRequest struct {
	ProfileID           string         `json:"profileId"`
	ProfileName         string         `json:"profileName"`
	ProfileRelationship string         `json:"profileRelationship"`
	Description         string         `json:"description" binding:"required"`
	Duration            model.Duration `json:"duration" binding:"required"`
	Severity            model.Severity `json:"severity" binding:"required"`
}

func (r *SymptomRequest) toInput() *service.SymptomInput {
	return &service.SymptomInput{
		ProfileID:           r.ProfileID,
		ProfileName:         r.ProfileName,
		ProfileRelationship: r.ProfileRelationship,
		Description:         r.Description,
		Duration:            r.Duration,
		Severity:            r.Severity,
	}
}

// SymptomEntryResponse wraps an entry with the advice phrase for its
// care suggestion.
type SymptomEntryResponse struct {
	model.SymptomEntry
	UrgencyAdvice string `json:"urgencyAdvice"`
}

func entryResponse(entry *model.SymptomEntry) SymptomEntryResponse {
	return SymptomEntryResponse{
		SymptomEntry:  *entry,
		UrgencyAdvice: triage.UrgencyAdvice(entry.CareSuggestion),
	}
}

// Create handles POST /api/v1/symptoms
func (h *SymptomHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.service.Create(c.Request.Context(), userID, req.toInput())
	if err != nil {
		h.logger.Error("failed to create symptom entry", zap.Error(err), zap.String("user_id", userID))
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusCreated, entryResponse(entry))
}

// Preview handles POST /api/v1/triage/preview — runs the engine without
// persisting anything.
func (h *SymptomHandler) Preview(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	var req SymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.service.Preview(req.toInput())
	if err != nil {
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":        result,
		"urgencyAdvice": triage.UrgencyAdvice(result.CareSuggestion),
	})
}

// List handles GET /api/v1/symptoms
func (h *SymptomHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entries, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list symptom entries", zap.Error(err), zap.String("user_id", userID))
		internalError(c, "Failed to list symptom entries", err)
		return
	}

	responses := make([]SymptomEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, entryResponse(&entries[i]))
	}

	c.JSON(http.StatusOK, gin.H{"entries": responses})
}

// Get handles GET /api/v1/symptoms/:id
func (h *SymptomHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    "NOT_FOUND",
				Message: "Symptom entry not found",
			})
			return
		}
		internalError(c, "Failed to get symptom entry", err)
		return
	}

	c.JSON(http.StatusOK, entryResponse(entry))
}

// Update handles PUT /api/v1/symptoms/:id — re-runs triage on the
// edited inputs.
func (h *SymptomHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req.toInput())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    "NOT_FOUND",
				Message: "Symptom entry not found",
			})
			return
		}
		h.logger.Error("failed to update symptom entry", zap.Error(err), zap.String("user_id", userID))
		badRequest(c, err)
		return
	}

	c.JSON(http.StatusOK, entryResponse(entry))
}

// Delete handles DELETE /api/v1/symptoms/:id
func (h *SymptomHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Code:    "NOT_FOUND",
				Message: "Symptom entry not found",
			})
			return
		}
		internalError(c, "Failed to delete symptom entry", err)
		return
	}

	c.Status(http.StatusNoContent)
}
