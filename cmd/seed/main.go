package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/hanashi-app/backend/internal/db"
	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/seed"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New("development")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := seed.Run(ctx, log, postgresService.DB()); err != nil {
		log.Fatal("Seeding failed", "error", err)
	}
	log.Info("Done")
}
