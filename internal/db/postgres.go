package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/types"
	"github.com/hanashi-app/backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "hanashi", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...", "host", postgresHost, "db", postgresName)
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresService{db: gormDB, log: serviceLog}, nil
}

// Migrate creates the content and result tables plus the foreign keys that
// give stories exclusive ownership of their chapters and quizzes.
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&types.Story{},
		&types.Chapter{},
		&types.Choice{},
		&types.Quiz{},
		&types.QuizChoice{},
		&types.QuizResult{},
	)
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := Migrate(s.db); err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	constraints := []struct {
		name string
		stmt string
	}{
		{"fk_chapter_story_id", `ALTER TABLE "chapter" ADD CONSTRAINT "fk_chapter_story_id" FOREIGN KEY ("story_id") REFERENCES "story"("id") ON DELETE CASCADE`},
		{"fk_choice_chapter_id", `ALTER TABLE "choice" ADD CONSTRAINT "fk_choice_chapter_id" FOREIGN KEY ("chapter_id") REFERENCES "chapter"("id") ON DELETE CASCADE`},
		{"fk_choice_next_chapter_id", `ALTER TABLE "choice" ADD CONSTRAINT "fk_choice_next_chapter_id" FOREIGN KEY ("next_chapter_id") REFERENCES "chapter"("id") ON DELETE CASCADE`},
		{"fk_quiz_story_id", `ALTER TABLE "quiz" ADD CONSTRAINT "fk_quiz_story_id" FOREIGN KEY ("story_id") REFERENCES "story"("id") ON DELETE CASCADE`},
		{"fk_quiz_choice_quiz_id", `ALTER TABLE "quiz_choice" ADD CONSTRAINT "fk_quiz_choice_quiz_id" FOREIGN KEY ("quiz_id") REFERENCES "quiz"("id") ON DELETE CASCADE`},
		{"fk_quiz_result_quiz_id", `ALTER TABLE "quiz_result" ADD CONSTRAINT "fk_quiz_result_quiz_id" FOREIGN KEY ("quiz_id") REFERENCES "quiz"("id") ON DELETE CASCADE`},
	}
	for _, c := range constraints {
		var exists bool
		if err := s.db.Raw(`SELECT EXISTS (SELECT 1 FROM information_schema.table_constraints WHERE constraint_name = ?)`, c.name).Scan(&exists).Error; err != nil {
			return fmt.Errorf("check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.stmt).Error; err != nil {
			return fmt.Errorf("add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
