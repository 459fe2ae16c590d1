package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/apierr"
	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/repos"
	"github.com/hanashi-app/backend/internal/types"
)

type StoryService interface {
	GetStoryList(ctx context.Context, levelFilter string) ([]*types.Story, error)
	GetStoryByID(ctx context.Context, storyID string) (*types.Story, error)
	GetChapterByID(ctx context.Context, chapterID string) (*types.Chapter, error)
	GetChaptersByStoryID(ctx context.Context, storyID string) ([]*types.Chapter, error)
}

type storyService struct {
	db          *gorm.DB
	log         *logger.Logger
	storyRepo   repos.StoryRepo
	chapterRepo repos.ChapterRepo
}

func NewStoryService(db *gorm.DB, baseLog *logger.Logger, storyRepo repos.StoryRepo, chapterRepo repos.ChapterRepo) StoryService {
	return &storyService{
		db:          db,
		log:         baseLog.With("service", "StoryService"),
		storyRepo:   storyRepo,
		chapterRepo: chapterRepo,
	}
}

func (s *storyService) GetStoryList(ctx context.Context, levelFilter string) ([]*types.Story, error) {
	var levelJLPT, levelCEFR string
	if levelFilter != "" && levelFilter != "all" {
		levels, ok := types.LevelFilters[levelFilter]
		if !ok {
			return nil, apierr.InvalidArgument("invalid level filter: %s", levelFilter)
		}
		levelJLPT, levelCEFR = levels[0], levels[1]
	}

	stories, err := s.storyRepo.GetAll(ctx, nil, levelJLPT, levelCEFR)
	if err != nil {
		s.log.Error("GetStoryList failed", "error", err, "levelFilter", levelFilter)
		return nil, apierr.Internal(fmt.Errorf("get stories: %w", err))
	}
	s.log.Debug("Story list retrieved", "count", len(stories), "levelFilter", levelFilter)
	return stories, nil
}

func (s *storyService) GetStoryByID(ctx context.Context, storyID string) (*types.Story, error) {
	id, err := parseStoryID(storyID)
	if err != nil {
		return nil, err
	}

	story, repoErr := s.storyRepo.GetByID(ctx, nil, id)
	if repoErr != nil {
		s.log.Error("GetStoryByID failed", "error", repoErr, "storyID", storyID)
		return nil, apierr.Internal(fmt.Errorf("get story: %w", repoErr))
	}
	if story == nil {
		return nil, apierr.NotFound("story not found: %s", storyID)
	}
	return story, nil
}

func (s *storyService) GetChapterByID(ctx context.Context, chapterID string) (*types.Chapter, error) {
	if strings.TrimSpace(chapterID) == "" {
		return nil, apierr.InvalidArgument("chapter ID is required")
	}
	id, err := uuid.Parse(chapterID)
	if err != nil {
		return nil, apierr.NotFound("chapter not found: %s", chapterID)
	}

	chapter, repoErr := s.chapterRepo.GetByID(ctx, nil, id)
	if repoErr != nil {
		s.log.Error("GetChapterByID failed", "error", repoErr, "chapterID", chapterID)
		return nil, apierr.Internal(fmt.Errorf("get chapter: %w", repoErr))
	}
	if chapter == nil {
		return nil, apierr.NotFound("chapter not found: %s", chapterID)
	}
	s.log.Debug("Chapter retrieved", "chapterID", chapterID, "choices", len(chapter.Choices))
	return chapter, nil
}

func (s *storyService) GetChaptersByStoryID(ctx context.Context, storyID string) ([]*types.Chapter, error) {
	id, err := parseStoryID(storyID)
	if err != nil {
		return nil, err
	}

	story, repoErr := s.storyRepo.GetByID(ctx, nil, id)
	if repoErr != nil {
		s.log.Error("GetChaptersByStoryID failed", "error", repoErr, "storyID", storyID)
		return nil, apierr.Internal(fmt.Errorf("get story: %w", repoErr))
	}
	if story == nil {
		return nil, apierr.NotFound("story not found: %s", storyID)
	}

	chapters, repoErr := s.chapterRepo.GetByStoryID(ctx, nil, id)
	if repoErr != nil {
		s.log.Error("GetChaptersByStoryID failed", "error", repoErr, "storyID", storyID)
		return nil, apierr.Internal(fmt.Errorf("get chapters: %w", repoErr))
	}
	s.log.Debug("Chapters retrieved", "storyID", storyID, "count", len(chapters))
	return chapters, nil
}

func parseStoryID(storyID string) (uuid.UUID, error) {
	if strings.TrimSpace(storyID) == "" {
		return uuid.Nil, apierr.InvalidArgument("story ID is required")
	}
	id, err := uuid.Parse(storyID)
	if err != nil {
		return uuid.Nil, apierr.NotFound("story not found: %s", storyID)
	}
	return id, nil
}
