package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/observability"
	"github.com/hanashi-app/backend/internal/services"
)

type TTSHandler struct {
	log     *logger.Logger
	ttsSvc  services.TTSService
	metrics *observability.Metrics
}

func NewTTSHandler(log *logger.Logger, ttsSvc services.TTSService, metrics *observability.Metrics) *TTSHandler {
	return &TTSHandler{
		log:     log.With("handler", "TTSHandler"),
		ttsSvc:  ttsSvc,
		metrics: metrics,
	}
}

// POST /api/tts/synthesize
// Synthesize Japanese speech for a chapter text, returned as a data URL.
func (h *TTSHandler) SynthesizeSpeech(c *gin.Context) {
	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondErrorMessage(c, http.StatusBadRequest, "text is required")
		return
	}

	start := time.Now()
	audioURL, err := h.ttsSvc.SynthesizeSpeech(c.Request.Context(), input.Text)
	if err != nil {
		h.metrics.ObserveTTS("error", time.Since(start))
		RespondError(c, err)
		return
	}
	h.metrics.ObserveTTS("ok", time.Since(start))
	RespondOK(c, gin.H{"audioUrl": audioURL})
}
