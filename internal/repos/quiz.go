package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/types"
)

type QuizRepo interface {
	Create(ctx context.Context, tx *gorm.DB, quizzes []*types.Quiz) ([]*types.Quiz, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	GetByOffset(ctx context.Context, tx *gorm.DB, offset int) (*types.Quiz, error)
	GetByID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) (*types.Quiz, error)
	GetByStoryID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.Quiz, error)
	CountByLevel(ctx context.Context, tx *gorm.DB) (map[string]int, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(ctx context.Context, tx *gorm.DB, quizzes []*types.Quiz) ([]*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(quizzes) == 0 {
		return []*types.Quiz{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).Model(&types.Quiz{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetByOffset fetches the quiz at a row offset in primary-key order. Combined
// with Count this gives the approximately uniform random draw; it is not
// strictly uniform under concurrent writes between the two queries, which is
// accepted.
func (r *quizRepo) GetByOffset(ctx context.Context, tx *gorm.DB, offset int) (*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var quiz types.Quiz
	if err := transaction.WithContext(ctx).
		Preload("Choices").
		Order("id").
		Offset(offset).
		First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) GetByID(ctx context.Context, tx *gorm.DB, quizID uuid.UUID) (*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var quiz types.Quiz
	if err := transaction.WithContext(ctx).
		Preload("Choices").
		Where("id = ?", quizID).
		First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quiz, nil
}

// GetByStoryID returns a story's quizzes, easiest difficulty first (N5 sorts
// above N1 on descending label order) and oldest first within a difficulty.
func (r *quizRepo) GetByStoryID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var quizzes []*types.Quiz
	if err := transaction.WithContext(ctx).
		Preload("Choices").
		Where("story_id = ?", storyID).
		Order("difficulty_level DESC").
		Order("created_at ASC").
		Find(&quizzes).Error; err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (r *quizRepo) CountByLevel(ctx context.Context, tx *gorm.DB) (map[string]int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []struct {
		DifficultyLevel string
		Count           int
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Quiz{}).
		Select("difficulty_level, COUNT(*) AS count").
		Group("difficulty_level").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.DifficultyLevel] = row.Count
	}
	return counts, nil
}
