package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/hanashi-app/backend/internal/handlers"
	"github.com/hanashi-app/backend/internal/middleware"
	"github.com/hanashi-app/backend/internal/observability"
)

type RouterConfig struct {
	RequestLog      *middleware.RequestLogMiddleware
	MetricsMW       *middleware.MetricsMiddleware
	Metrics         *observability.Metrics
	TracingEnabled  bool
	HealthHandler   *handlers.HealthHandler
	StoryHandler    *handlers.StoryHandler
	QuizHandler     *handlers.QuizHandler
	ProgressHandler *handlers.ProgressHandler
	TTSHandler      *handlers.TTSHandler
	AdminHandler    *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLog != nil {
		router.Use(cfg.RequestLog.Handler())
	}
	if cfg.MetricsMW != nil {
		router.Use(cfg.MetricsMW.Handler())
	}
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("hanashi-backend"))
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		api.GET("/health", cfg.HealthHandler.Check)
		if cfg.Metrics != nil {
			api.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
		}

		// Stories
		api.GET("/stories", cfg.StoryHandler.GetStoryList)
		api.GET("/stories/:id", cfg.StoryHandler.GetStoryByID)
		api.GET("/stories/:id/chapters", cfg.StoryHandler.GetChaptersByStoryID)
		api.GET("/chapters/:id", cfg.StoryHandler.GetChapterByID)

		// Quizzes
		api.GET("/quizzes", cfg.QuizHandler.GetRandomQuiz)
		api.GET("/quizzes/story/:storyId", cfg.QuizHandler.GetQuizzesByStoryID)
		api.POST("/quizzes/answer", cfg.QuizHandler.SubmitQuizAnswer)

		// Progress
		api.GET("/progress", cfg.ProgressHandler.GetLearningProgress)
		api.GET("/progress/graph", cfg.ProgressHandler.GetProgressGraph)

		// TTS
		if cfg.TTSHandler != nil {
			api.POST("/tts/synthesize", cfg.TTSHandler.SynthesizeSpeech)
		}

		// Admin
		if cfg.AdminHandler != nil {
			admin := api.Group("/admin")
			admin.POST("/stories/generate", cfg.AdminHandler.GenerateStory)
			admin.POST("/reset-results", cfg.AdminHandler.ResetResults)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		handlers.RespondErrorMessage(c, http.StatusNotFound, "route not found")
	})

	return router
}

func allowedOrigins() []string {
	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		parts := strings.Split(raw, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		if len(origins) > 0 {
			return origins
		}
	}
	return []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://localhost:5174",
	}
}
