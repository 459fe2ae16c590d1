package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/logger"
)

type HealthHandler struct {
	log *logger.Logger
	db  *gorm.DB
}

func NewHealthHandler(log *logger.Logger, db *gorm.DB) *HealthHandler {
	return &HealthHandler{
		log: log.With("handler", "HealthHandler"),
		db:  db,
	}
}

// GET /health
// Liveness plus a database round trip.
func (h *HealthHandler) Check(c *gin.Context) {
	dbStatus := "connected"
	status := "healthy"
	code := http.StatusOK

	if err := h.db.WithContext(c.Request.Context()).Exec("SELECT 1").Error; err != nil {
		h.log.Error("Database health check failed", "error", err)
		dbStatus = "disconnected"
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"success":   code == http.StatusOK,
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  dbStatus,
	})
}
