package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hanashi-app/backend/internal/apierr"
	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/repos"
	"github.com/hanashi-app/backend/internal/types"
)

func newProgressService(t *testing.T, now time.Time) (ProgressService, *testDeps) {
	t.Helper()
	gdb := newTestDB(t)
	log := logger.NewNop()
	deps := &testDeps{
		db:         gdb,
		storyRepo:  repos.NewStoryRepo(gdb, log),
		quizRepo:   repos.NewQuizRepo(gdb, log),
		resultRepo: repos.NewQuizResultRepo(gdb, log),
	}
	svc := NewProgressService(gdb, log, deps.quizRepo, deps.resultRepo).(*progressService)
	svc.now = func() time.Time { return now }
	return svc, deps
}

func TestGetLearningProgress_EmptyLog(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newProgressService(t, now)

	progress, err := svc.GetLearningProgress(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, progress.TotalQuizzes)
	require.Equal(t, 0, progress.CorrectCount)
	require.Equal(t, 0.0, progress.AccuracyRate)
	require.Equal(t, now, progress.LastUpdated)
	require.Empty(t, progress.CompletedStories)
	require.Len(t, progress.LevelProgress, len(types.JLPTLevels))
	for _, level := range types.JLPTLevels {
		require.Equal(t, types.LevelProgress{}, progress.LevelProgress[level])
	}
}

func TestGetLearningProgress_AccuracyRounding(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, deps := newProgressService(t, now)
	story := createTestStory(t, deps.db, types.LevelN5)
	quiz := createTestQuiz(t, deps.db, story, types.LevelN5, now, testChoice{text: "a", correct: true})

	createTestResult(t, deps.db, quiz, true, now.Add(-3*time.Hour))
	createTestResult(t, deps.db, quiz, true, now.Add(-2*time.Hour))
	createTestResult(t, deps.db, quiz, false, now.Add(-1*time.Hour))

	progress, err := svc.GetLearningProgress(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, progress.TotalQuizzes)
	require.Equal(t, 2, progress.CorrectCount)
	// 2/3 rounds to one decimal.
	require.Equal(t, 66.7, progress.AccuracyRate)
	require.WithinDuration(t, now.Add(-1*time.Hour), progress.LastUpdated, time.Second)
}

func TestGetLearningProgress_PerLevelBreakdown(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, deps := newProgressService(t, now)
	storyN5 := createTestStory(t, deps.db, types.LevelN5)
	storyN3 := createTestStory(t, deps.db, types.LevelN3)
	quizN5 := createTestQuiz(t, deps.db, storyN5, types.LevelN5, now, testChoice{text: "a", correct: true})
	createTestQuiz(t, deps.db, storyN5, types.LevelN5, now, testChoice{text: "a", correct: true})
	quizN3 := createTestQuiz(t, deps.db, storyN3, types.LevelN3, now, testChoice{text: "a", correct: true})

	for i := 0; i < 4; i++ {
		createTestResult(t, deps.db, quizN5, true, now.Add(time.Duration(-i)*time.Hour))
	}
	createTestResult(t, deps.db, quizN5, false, now)
	createTestResult(t, deps.db, quizN3, true, now)

	progress, err := svc.GetLearningProgress(context.Background())
	require.NoError(t, err)

	n5 := progress.LevelProgress[types.LevelN5]
	require.Equal(t, 5, n5.Completed)
	require.Equal(t, 2, n5.Total)
	require.Equal(t, 80.0, n5.Accuracy)

	n3 := progress.LevelProgress[types.LevelN3]
	require.Equal(t, 1, n3.Completed)
	require.Equal(t, 1, n3.Total)
	require.Equal(t, 100.0, n3.Accuracy)

	require.Equal(t, types.LevelProgress{}, progress.LevelProgress[types.LevelN1])

	require.ElementsMatch(t, []string{storyN5.ID.String(), storyN3.ID.String()}, []string{
		progress.CompletedStories[0].String(),
		progress.CompletedStories[1].String(),
	})
}

func TestGetProgressGraphData_InvalidPeriod(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newProgressService(t, now)

	_, err := svc.GetProgressGraphData(context.Background(), "decade")
	require.Equal(t, http.StatusBadRequest, apierr.StatusOf(err))
}

func TestGetProgressGraphData_EmptyPeriodListsAllLevels(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, deps := newProgressService(t, now)
	story := createTestStory(t, deps.db, types.LevelN5)
	quiz := createTestQuiz(t, deps.db, story, types.LevelN5, now, testChoice{text: "a", correct: true})

	// Ten days old: outside the week window.
	createTestResult(t, deps.db, quiz, true, now.AddDate(0, 0, -10))

	graph, err := svc.GetProgressGraphData(context.Background(), "week")
	require.NoError(t, err)
	require.Empty(t, graph.DataPoints)
	require.Equal(t, types.JLPTLevels, graph.Levels)
}

func TestGetProgressGraphData_BucketsByDayAndLevel(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	svc, deps := newProgressService(t, now)
	storyN5 := createTestStory(t, deps.db, types.LevelN5)
	storyN4 := createTestStory(t, deps.db, types.LevelN4)
	quizN5 := createTestQuiz(t, deps.db, storyN5, types.LevelN5, now, testChoice{text: "a", correct: true})
	quizN4 := createTestQuiz(t, deps.db, storyN4, types.LevelN4, now, testChoice{text: "a", correct: true})

	dayOne := time.Date(2026, 6, 13, 8, 0, 0, 0, time.UTC)
	createTestResult(t, deps.db, quizN5, true, dayOne)
	createTestResult(t, deps.db, quizN5, false, dayOne.Add(5*time.Hour))
	createTestResult(t, deps.db, quizN4, true, dayOne.Add(2*time.Hour))
	dayTwo := time.Date(2026, 6, 14, 10, 0, 0, 0, time.UTC)
	createTestResult(t, deps.db, quizN5, true, dayTwo)

	graph, err := svc.GetProgressGraphData(context.Background(), "week")
	require.NoError(t, err)
	require.Len(t, graph.DataPoints, 3)

	// Date ascending, easiest level first within a date.
	require.WithinDuration(t, time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC), graph.DataPoints[0].Date, time.Second)
	require.Equal(t, types.LevelN5, graph.DataPoints[0].Level)
	require.Equal(t, 50.0, graph.DataPoints[0].AccuracyRate)

	require.Equal(t, types.LevelN4, graph.DataPoints[1].Level)
	require.Equal(t, 100.0, graph.DataPoints[1].AccuracyRate)

	require.WithinDuration(t, time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC), graph.DataPoints[2].Date, time.Second)
	require.Equal(t, 100.0, graph.DataPoints[2].AccuracyRate)

	require.Equal(t, []string{types.LevelN5, types.LevelN4}, graph.Levels)
}

func TestResetResults(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	svc, deps := newProgressService(t, now)
	story := createTestStory(t, deps.db, types.LevelN5)
	quiz := createTestQuiz(t, deps.db, story, types.LevelN5, now, testChoice{text: "a", correct: true})
	createTestResult(t, deps.db, quiz, true, now)
	createTestResult(t, deps.db, quiz, false, now)

	deleted, err := svc.ResetResults(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, deleted)

	var count int64
	require.NoError(t, deps.db.Model(&types.QuizResult{}).Count(&count).Error)
	require.EqualValues(t, 0, count)

	// Resetting an empty log is a no-op.
	deleted, err = svc.ResetResults(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 0, deleted)
}
