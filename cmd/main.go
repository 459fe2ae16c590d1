package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hanashi-app/backend/internal/clients/gcp"
	"github.com/hanashi-app/backend/internal/db"
	"github.com/hanashi-app/backend/internal/handlers"
	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/middleware"
	"github.com/hanashi-app/backend/internal/observability"
	"github.com/hanashi-app/backend/internal/repos"
	"github.com/hanashi-app/backend/internal/server"
	"github.com/hanashi-app/backend/internal/services"
	"github.com/hanashi-app/backend/internal/utils"
)

func main() {
	_ = godotenv.Load()

	// Logger
	appEnv := os.Getenv("APP_ENV")
	logMode := "development"
	if appEnv == "production" {
		logMode = "production"
		gin.SetMode(gin.ReleaseMode)
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Tracing
	otelShutdown := observability.InitTracing(ctx, log, observability.OtelConfig{
		ServiceName: "hanashi-backend",
		Environment: appEnv,
		Version:     os.Getenv("APP_VERSION"),
	})

	// Metrics
	metrics := observability.New()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()
	metrics.StartPostgresCollector(ctx, log, thePG, 0)

	// Repos
	log.Info("Setting up repos...")
	storyRepo := repos.NewStoryRepo(thePG, log)
	chapterRepo := repos.NewChapterRepo(thePG, log)
	choiceRepo := repos.NewChoiceRepo(thePG, log)
	quizRepo := repos.NewQuizRepo(thePG, log)
	quizResultRepo := repos.NewQuizResultRepo(thePG, log)

	// Clients
	ttsClient, err := gcp.NewTextToSpeech(log)
	if err != nil {
		log.Warn("Text-to-speech client unavailable, synthesis disabled", "error", err)
	} else {
		defer ttsClient.Close()
	}
	openaiClient, err := services.NewOpenAIClient(log)
	if err != nil {
		log.Warn("OpenAI client unavailable, story generation disabled", "error", err)
	}

	// Services
	log.Info("Setting up services...")
	storyService := services.NewStoryService(thePG, log, storyRepo, chapterRepo)
	quizService := services.NewQuizService(thePG, log, quizRepo, quizResultRepo, storyRepo)
	progressService := services.NewProgressService(thePG, log, quizRepo, quizResultRepo)
	var synth services.SpeechSynthesizer
	if ttsClient != nil {
		synth = ttsClient
	}
	ttsService := services.NewTTSService(log, synth)
	storyGenService := services.NewStoryGenService(log, thePG, openaiClient, storyRepo, chapterRepo, choiceRepo, quizRepo)

	// Handlers
	log.Info("Setting up handlers...")
	healthHandler := handlers.NewHealthHandler(log, thePG)
	storyHandler := handlers.NewStoryHandler(log, storyService)
	quizHandler := handlers.NewQuizHandler(log, quizService, metrics)
	progressHandler := handlers.NewProgressHandler(log, progressService)
	ttsHandler := handlers.NewTTSHandler(log, ttsService, metrics)
	adminHandler := handlers.NewAdminHandler(log, storyGenService, progressService, metrics)

	// Router
	router := server.NewRouter(server.RouterConfig{
		RequestLog:      middleware.NewRequestLogMiddleware(log),
		MetricsMW:       middleware.NewMetricsMiddleware(metrics),
		Metrics:         metrics,
		TracingEnabled:  otelShutdown != nil,
		HealthHandler:   healthHandler,
		StoryHandler:    storyHandler,
		QuizHandler:     quizHandler,
		ProgressHandler: progressHandler,
		TTSHandler:      ttsHandler,
		AdminHandler:    adminHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("Forced shutdown", "error", err)
	}
	if otelShutdown != nil {
		if err := otelShutdown(shutdownCtx); err != nil {
			log.Warn("Tracer shutdown failed", "error", err)
		}
	}
	log.Info("Server stopped")
}
