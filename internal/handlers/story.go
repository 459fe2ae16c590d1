package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/services"
)

type StoryHandler struct {
	log      *logger.Logger
	storySvc services.StoryService
}

func NewStoryHandler(log *logger.Logger, storySvc services.StoryService) *StoryHandler {
	return &StoryHandler{
		log:      log.With("handler", "StoryHandler"),
		storySvc: storySvc,
	}
}

// GET /api/stories
// List stories, optionally filtered by ?level=N5-A1 etc.
func (h *StoryHandler) GetStoryList(c *gin.Context) {
	stories, err := h.storySvc.GetStoryList(c.Request.Context(), c.Query("level"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, stories)
}

// GET /api/stories/:id
func (h *StoryHandler) GetStoryByID(c *gin.Context) {
	story, err := h.storySvc.GetStoryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, story)
}

// GET /api/stories/:id/chapters
// All chapters of a story with their choices, tree order.
func (h *StoryHandler) GetChaptersByStoryID(c *gin.Context) {
	chapters, err := h.storySvc.GetChaptersByStoryID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, chapters)
}

// GET /api/chapters/:id
func (h *StoryHandler) GetChapterByID(c *gin.Context) {
	chapter, err := h.storySvc.GetChapterByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, chapter)
}
