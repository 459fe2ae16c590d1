package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/hanashi-app/backend/internal/db"
	"github.com/hanashi-app/backend/internal/repos"
	"github.com/hanashi-app/backend/internal/types"
)

type testDeps struct {
	db          *gorm.DB
	storyRepo   repos.StoryRepo
	chapterRepo repos.ChapterRepo
	quizRepo    repos.QuizRepo
	resultRepo  repos.QuizResultRepo
}

// newTestDB opens a per-test in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func createTestStory(t *testing.T, gdb *gorm.DB, level string) *types.Story {
	t.Helper()
	story := &types.Story{
		Title:         "テストストーリー",
		Description:   "test story",
		LevelJLPT:     level,
		LevelCEFR:     types.CEFRForJLPT[level],
		EstimatedTime: 5,
	}
	require.NoError(t, gdb.Create(story).Error)
	return story
}

type testChoice struct {
	text        string
	correct     bool
	explanation string
}

func createTestQuiz(t *testing.T, gdb *gorm.DB, story *types.Story, level string, createdAt time.Time, choices ...testChoice) *types.Quiz {
	t.Helper()
	quiz := &types.Quiz{
		StoryID:         story.ID,
		QuestionText:    "質問",
		QuestionType:    types.QuestionTypeReading,
		DifficultyLevel: level,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	for _, c := range choices {
		qc := types.QuizChoice{
			ChoiceText: c.text,
			IsCorrect:  c.correct,
		}
		if c.explanation != "" {
			expl := c.explanation
			qc.Explanation = &expl
		}
		quiz.Choices = append(quiz.Choices, &qc)
	}
	require.NoError(t, gdb.Create(quiz).Error)
	return quiz
}

func createTestResult(t *testing.T, gdb *gorm.DB, quiz *types.Quiz, correct bool, answeredAt time.Time) *types.QuizResult {
	t.Helper()
	answer := quiz.Choices[0].ID
	result := &types.QuizResult{
		QuizID:         quiz.ID,
		UserAnswer:     answer,
		IsCorrect:      correct,
		ResponseMethod: types.ResponseMethodText,
		AnsweredAt:     answeredAt,
	}
	require.NoError(t, gdb.Omit("Quiz").Create(result).Error)
	return result
}
