package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hanashi-app/backend/internal/apierr"
)

// Envelope is the shape of every API response: {"success": true, "data": ...}
// on the happy path, {"success": false, "error": ..., "message": ...} otherwise.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// RespondError maps a service error to its HTTP status. Internal messages are
// elided in release mode so storage details never leak to clients.
func RespondError(c *gin.Context, err error) {
	status := apierr.StatusOf(err)
	msg := err.Error()
	if status >= 500 && gin.Mode() == gin.ReleaseMode {
		msg = "an unexpected error occurred"
	}
	c.JSON(status, Envelope{
		Success: false,
		Error:   http.StatusText(status),
		Message: msg,
	})
}

func RespondErrorMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, Envelope{
		Success: false,
		Error:   http.StatusText(status),
		Message: msg,
	})
}
