package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/types"
)

type StoryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, stories []*types.Story) ([]*types.Story, error)
	GetByID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) (*types.Story, error)
	GetAll(ctx context.Context, tx *gorm.DB, levelJLPT, levelCEFR string) ([]*types.Story, error)
	SetRootChapter(ctx context.Context, tx *gorm.DB, storyID, chapterID uuid.UUID) error
}

type storyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStoryRepo(db *gorm.DB, baseLog *logger.Logger) StoryRepo {
	return &storyRepo{db: db, log: baseLog.With("repo", "StoryRepo")}
}

func (r *storyRepo) Create(ctx context.Context, tx *gorm.DB, stories []*types.Story) ([]*types.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(stories) == 0 {
		return []*types.Story{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepo) GetByID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) (*types.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var story types.Story
	if err := transaction.WithContext(ctx).
		Where("id = ?", storyID).
		First(&story).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &story, nil
}

// GetAll returns stories, optionally filtered by level labels, easiest level
// first and newest first within a level.
func (r *storyRepo) GetAll(ctx context.Context, tx *gorm.DB, levelJLPT, levelCEFR string) ([]*types.Story, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Model(&types.Story{})
	if levelJLPT != "" {
		query = query.Where("level_jlpt = ?", levelJLPT)
	}
	if levelCEFR != "" {
		query = query.Where("level_cefr = ?", levelCEFR)
	}

	var stories []*types.Story
	if err := query.
		Order("level_jlpt DESC").
		Order("created_at DESC").
		Find(&stories).Error; err != nil {
		return nil, err
	}
	return stories, nil
}

func (r *storyRepo) SetRootChapter(ctx context.Context, tx *gorm.DB, storyID, chapterID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Story{}).
		Where("id = ?", storyID).
		Update("root_chapter_id", chapterID).Error
}
