package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/observability"
	"github.com/hanashi-app/backend/internal/services"
)

type AdminHandler struct {
	log         *logger.Logger
	storyGenSvc services.StoryGenService
	progressSvc services.ProgressService
	metrics     *observability.Metrics
}

func NewAdminHandler(
	log *logger.Logger,
	storyGenSvc services.StoryGenService,
	progressSvc services.ProgressService,
	metrics *observability.Metrics,
) *AdminHandler {
	return &AdminHandler{
		log:         log.With("handler", "AdminHandler"),
		storyGenSvc: storyGenSvc,
		progressSvc: progressSvc,
		metrics:     metrics,
	}
}

// POST /api/admin/stories/generate
// Generate and persist a new branching story at the requested level.
func (h *AdminHandler) GenerateStory(c *gin.Context) {
	var input services.GenerateStoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondErrorMessage(c, http.StatusBadRequest, "level and theme are required")
		return
	}

	story, err := h.storyGenSvc.GenerateStory(c.Request.Context(), input)
	if err != nil {
		h.metrics.IncStoryGenerated(input.Level, "error")
		RespondError(c, err)
		return
	}
	h.metrics.IncStoryGenerated(story.LevelJLPT, "ok")
	RespondCreated(c, story)
}

// POST /api/admin/reset-results
// Wipe the quiz result log.
func (h *AdminHandler) ResetResults(c *gin.Context) {
	deleted, err := h.progressSvc.ResetResults(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": deleted})
}
