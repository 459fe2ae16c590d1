package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/types"
)

type ChoiceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, choices []*types.Choice) ([]*types.Choice, error)
}

type choiceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChoiceRepo(db *gorm.DB, baseLog *logger.Logger) ChoiceRepo {
	return &choiceRepo{db: db, log: baseLog.With("repo", "ChoiceRepo")}
}

func (r *choiceRepo) Create(ctx context.Context, tx *gorm.DB, choices []*types.Choice) ([]*types.Choice, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(choices) == 0 {
		return []*types.Choice{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&choices).Error; err != nil {
		return nil, err
	}
	return choices, nil
}
