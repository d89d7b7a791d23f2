package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the common error body returned by all endpoints
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// requireUserID extracts the authenticated user from the X-User-ID
// header set by the API gateway. Aborts with 401 when missing.
func requireUserID(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    "UNAUTHORIZED",
			Message: "Missing X-User-ID header",
		})
		return "", false
	}
	return userID, true
}

// badRequest writes a validation error response
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: "Invalid request",
		Details: stringPtr(err.Error()),
	})
}

// internalError writes a generic server error response
func internalError(c *gin.Context, message string, err error) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: message,
		Details: stringPtr(err.Error()),
	})
}
