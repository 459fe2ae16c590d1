package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/types"
)

type QuizResultRepo interface {
	Create(ctx context.Context, tx *gorm.DB, result *types.QuizResult) (*types.QuizResult, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.QuizResult, error)
	GetSince(ctx context.Context, tx *gorm.DB, threshold time.Time) ([]*types.QuizResult, error)
	DistinctStoryIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type quizResultRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizResultRepo(db *gorm.DB, baseLog *logger.Logger) QuizResultRepo {
	return &quizResultRepo{db: db, log: baseLog.With("repo", "QuizResultRepo")}
}

func (r *quizResultRepo) Create(ctx context.Context, tx *gorm.DB, result *types.QuizResult) (*types.QuizResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Omit("Quiz").Create(result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// GetAll returns every recorded result, newest first, with the owning quiz
// loaded for its difficulty label and story id.
func (r *quizResultRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.QuizResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizResult
	if err := transaction.WithContext(ctx).
		Preload("Quiz").
		Order("answered_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizResultRepo) GetSince(ctx context.Context, tx *gorm.DB, threshold time.Time) ([]*types.QuizResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuizResult
	if err := transaction.WithContext(ctx).
		Preload("Quiz").
		Where("answered_at >= ?", threshold).
		Order("answered_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DistinctStoryIDs returns the story ids with at least one recorded result.
func (r *quizResultRepo) DistinctStoryIDs(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var storyIDs []uuid.UUID
	if err := transaction.WithContext(ctx).
		Model(&types.QuizResult{}).
		Joins("JOIN quiz ON quiz.id = quiz_result.quiz_id").
		Distinct().
		Pluck("quiz.story_id", &storyIDs).Error; err != nil {
		return nil, err
	}
	return storyIDs, nil
}

// DeleteAll is the bulk administrative reset, the only delete the result log
// supports.
func (r *quizResultRepo) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("1 = 1").
		Delete(&types.QuizResult{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
