package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/types"
)

type ChapterRepo interface {
	Create(ctx context.Context, tx *gorm.DB, chapters []*types.Chapter) ([]*types.Chapter, error)
	GetByID(ctx context.Context, tx *gorm.DB, chapterID uuid.UUID) (*types.Chapter, error)
	GetByStoryID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.Chapter, error)
}

type chapterRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChapterRepo(db *gorm.DB, baseLog *logger.Logger) ChapterRepo {
	return &chapterRepo{db: db, log: baseLog.With("repo", "ChapterRepo")}
}

func (r *chapterRepo) Create(ctx context.Context, tx *gorm.DB, chapters []*types.Chapter) ([]*types.Chapter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(chapters) == 0 {
		return []*types.Chapter{}, nil
	}

	// Choices reference chapters that may not exist yet at this point, so
	// they are created separately by ChoiceRepo after all chapters are in.
	if err := transaction.WithContext(ctx).Omit("Choices").Create(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}

func (r *chapterRepo) GetByID(ctx context.Context, tx *gorm.DB, chapterID uuid.UUID) (*types.Chapter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var chapter types.Chapter
	if err := transaction.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("id = ?", chapterID).
		First(&chapter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &chapter, nil
}

// GetByStoryID returns all chapters of a story in the deterministic reading
// order: depth ascending, then chapter number ascending.
func (r *chapterRepo) GetByStoryID(ctx context.Context, tx *gorm.DB, storyID uuid.UUID) ([]*types.Chapter, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var chapters []*types.Chapter
	if err := transaction.WithContext(ctx).
		Preload("Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Where("story_id = ?", storyID).
		Order("depth_level ASC").
		Order("chapter_number ASC").
		Find(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}
