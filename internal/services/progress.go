package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/apierr"
	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/repos"
	"github.com/hanashi-app/backend/internal/types"
)

type ProgressService interface {
	GetLearningProgress(ctx context.Context) (*types.LearningProgress, error)
	GetProgressGraphData(ctx context.Context, period string) (*types.ProgressGraphData, error)
	ResetResults(ctx context.Context) (int64, error)
}

type progressService struct {
	db         *gorm.DB
	log        *logger.Logger
	quizRepo   repos.QuizRepo
	resultRepo repos.QuizResultRepo
	now        func() time.Time
}

func NewProgressService(db *gorm.DB, baseLog *logger.Logger, quizRepo repos.QuizRepo, resultRepo repos.QuizResultRepo) ProgressService {
	return &progressService{
		db:         db,
		log:        baseLog.With("service", "ProgressService"),
		quizRepo:   quizRepo,
		resultRepo: resultRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetLearningProgress aggregates the whole result log. The three independent
// queries fan out concurrently; any failure fails the aggregate as a whole.
func (s *progressService) GetLearningProgress(ctx context.Context) (*types.LearningProgress, error) {
	var (
		results     []*types.QuizResult
		levelTotals map[string]int
		storyIDs    []uuid.UUID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		results, err = s.resultRepo.GetAll(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		levelTotals, err = s.quizRepo.CountByLevel(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		storyIDs, err = s.resultRepo.DistinctStoryIDs(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("GetLearningProgress failed", "error", err)
		return nil, apierr.Internal(fmt.Errorf("aggregate progress: %w", err))
	}

	totalQuizzes := len(results)
	correctCount := 0
	for _, r := range results {
		if r.IsCorrect {
			correctCount++
		}
	}
	accuracyRate := 0.0
	if totalQuizzes > 0 {
		accuracyRate = roundOneDecimal(float64(correctCount) / float64(totalQuizzes) * 100)
	}

	levelProgress := make(map[string]types.LevelProgress, len(types.JLPTLevels))
	for _, level := range types.JLPTLevels {
		completed, levelCorrect := 0, 0
		for _, r := range results {
			if r.Quiz == nil || r.Quiz.DifficultyLevel != level {
				continue
			}
			completed++
			if r.IsCorrect {
				levelCorrect++
			}
		}
		accuracy := 0.0
		if completed > 0 {
			accuracy = roundOneDecimal(float64(levelCorrect) / float64(completed) * 100)
		}
		levelProgress[level] = types.LevelProgress{
			Completed: completed,
			Total:     levelTotals[level],
			Accuracy:  accuracy,
		}
	}

	// Results come back newest first, so the first row carries the latest
	// submission time.
	lastUpdated := s.now()
	if len(results) > 0 {
		lastUpdated = results[0].AnsweredAt
	}
	if storyIDs == nil {
		storyIDs = []uuid.UUID{}
	}

	progress := &types.LearningProgress{
		TotalQuizzes:     totalQuizzes,
		CorrectCount:     correctCount,
		AccuracyRate:     accuracyRate,
		LevelProgress:    levelProgress,
		LastUpdated:      lastUpdated,
		CompletedStories: storyIDs,
	}

	s.log.Info("Learning progress calculated", "totalQuizzes", totalQuizzes, "correctCount", correctCount, "accuracyRate", accuracyRate)
	return progress, nil
}

// GetProgressGraphData buckets the period's results by calendar date and
// difficulty label. Levels lists the labels that actually have points, or the
// full reference list when the period yielded nothing.
func (s *progressService) GetProgressGraphData(ctx context.Context, period string) (*types.ProgressGraphData, error) {
	days, ok := periodDays[period]
	if !ok {
		return nil, apierr.InvalidArgument("invalid period parameter. Must be one of: week, month, year")
	}
	threshold := s.now().AddDate(0, 0, -days)

	results, err := s.resultRepo.GetSince(ctx, nil, threshold)
	if err != nil {
		s.log.Error("GetProgressGraphData failed", "error", err, "period", period)
		return nil, apierr.Internal(fmt.Errorf("get results since %s: %w", threshold.Format(time.RFC3339), err))
	}

	if len(results) == 0 {
		s.log.Debug("No quiz results in period", "period", period)
		return &types.ProgressGraphData{
			DataPoints: []types.ProgressDataPoint{},
			Levels:     append([]string{}, types.JLPTLevels...),
		}, nil
	}

	type bucket struct {
		correct int
		total   int
	}
	buckets := map[time.Time]map[string]*bucket{}
	for _, r := range results {
		if r.Quiz == nil {
			continue
		}
		day := r.AnsweredAt.UTC().Truncate(24 * time.Hour)
		level := r.Quiz.DifficultyLevel
		if buckets[day] == nil {
			buckets[day] = map[string]*bucket{}
		}
		if buckets[day][level] == nil {
			buckets[day][level] = &bucket{}
		}
		buckets[day][level].total++
		if r.IsCorrect {
			buckets[day][level].correct++
		}
	}

	points := make([]types.ProgressDataPoint, 0, len(buckets))
	seenLevels := map[string]bool{}
	for day, levelBuckets := range buckets {
		for level, b := range levelBuckets {
			points = append(points, types.ProgressDataPoint{
				Date:         day,
				AccuracyRate: roundOneDecimal(float64(b.correct) / float64(b.total) * 100),
				Level:        level,
			})
			seenLevels[level] = true
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if !points[i].Date.Equal(points[j].Date) {
			return points[i].Date.Before(points[j].Date)
		}
		// Easiest label first on equal dates keeps the output stable.
		return points[i].Level > points[j].Level
	})

	levels := make([]string, 0, len(seenLevels))
	for _, level := range types.JLPTLevels {
		if seenLevels[level] {
			levels = append(levels, level)
		}
	}

	s.log.Info("Progress graph data generated", "period", period, "dataPoints", len(points), "levels", len(levels))
	return &types.ProgressGraphData{DataPoints: points, Levels: levels}, nil
}

// ResetResults wipes the result log. This is the only sanctioned mutation of
// quiz results and is reachable only through the admin surface.
func (s *progressService) ResetResults(ctx context.Context) (int64, error) {
	deleted, err := s.resultRepo.DeleteAll(ctx, nil)
	if err != nil {
		s.log.Error("Failed to reset quiz results", "error", err)
		return 0, apierr.Internal(err)
	}
	s.log.Info("Quiz results reset", "deleted", deleted)
	return deleted, nil
}

var periodDays = map[string]int{
	"week":  7,
	"month": 30,
	"year":  365,
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}
