package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/observability"
	"github.com/hanashi-app/backend/internal/services"
)

type QuizHandler struct {
	log     *logger.Logger
	quizSvc services.QuizService
	metrics *observability.Metrics
}

func NewQuizHandler(log *logger.Logger, quizSvc services.QuizService, metrics *observability.Metrics) *QuizHandler {
	return &QuizHandler{
		log:     log.With("handler", "QuizHandler"),
		quizSvc: quizSvc,
		metrics: metrics,
	}
}

// GET /api/quizzes
// One randomly selected quiz with its choices.
func (h *QuizHandler) GetRandomQuiz(c *gin.Context) {
	quiz, err := h.quizSvc.GetRandomQuiz(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, quiz)
}

// GET /api/quizzes/story/:storyId
// All quizzes of a story, easiest first, with a count.
func (h *QuizHandler) GetQuizzesByStoryID(c *gin.Context) {
	quizzes, err := h.quizSvc.GetQuizzesByStoryID(c.Request.Context(), c.Param("storyId"))
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"quizzes": quizzes,
		"count":   len(quizzes),
	})
}

// POST /api/quizzes/answer
// Evaluate a submitted answer and append it to the result log.
func (h *QuizHandler) SubmitQuizAnswer(c *gin.Context) {
	var input services.SubmitAnswerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondErrorMessage(c, http.StatusBadRequest, "quiz_id, user_answer, and response_method are required")
		return
	}

	feedback, err := h.quizSvc.SubmitQuizAnswer(c.Request.Context(), input)
	if err != nil {
		RespondError(c, err)
		return
	}
	h.metrics.IncQuizAnswer(input.ResponseMethod, feedback.IsCorrect)
	RespondOK(c, feedback)
}
