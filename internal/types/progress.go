package types

import (
	"time"

	"github.com/google/uuid"
)

type LevelProgress struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Accuracy  float64 `json:"accuracy"`
}

type LearningProgress struct {
	TotalQuizzes     int                      `json:"total_quizzes"`
	CorrectCount     int                      `json:"correct_count"`
	AccuracyRate     float64                  `json:"accuracy_rate"`
	LevelProgress    map[string]LevelProgress `json:"level_progress"`
	LastUpdated      time.Time                `json:"last_updated"`
	CompletedStories []uuid.UUID              `json:"completed_stories"`
}

type ProgressDataPoint struct {
	Date         time.Time `json:"date"`
	AccuracyRate float64   `json:"accuracy_rate"`
	Level        string    `json:"level"`
}

type ProgressGraphData struct {
	DataPoints []ProgressDataPoint `json:"data_points"`
	Levels     []string            `json:"levels"`
}
