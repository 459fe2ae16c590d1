package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/services"
)

type ProgressHandler struct {
	log         *logger.Logger
	progressSvc services.ProgressService
}

func NewProgressHandler(log *logger.Logger, progressSvc services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		log:         log.With("handler", "ProgressHandler"),
		progressSvc: progressSvc,
	}
}

// GET /api/progress
// Aggregate learning progress over the whole result log.
func (h *ProgressHandler) GetLearningProgress(c *gin.Context) {
	progress, err := h.progressSvc.GetLearningProgress(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, progress)
}

// GET /api/progress/graph?period=week|month|year
func (h *ProgressHandler) GetProgressGraph(c *gin.Context) {
	period := c.DefaultQuery("period", "week")
	graph, err := h.progressSvc.GetProgressGraphData(c.Request.Context(), period)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"period":      period,
		"data_points": graph.DataPoints,
		"levels":      graph.Levels,
	})
}
