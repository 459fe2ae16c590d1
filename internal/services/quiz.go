package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/apierr"
	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/repos"
	"github.com/hanashi-app/backend/internal/types"
)

// noExplanationFallback is returned when neither the submitted nor the
// correct choice carries an explanation.
const noExplanationFallback = "解説がありません。"

type SubmitAnswerInput struct {
	QuizID         string `json:"quiz_id" binding:"required"`
	UserAnswer     string `json:"user_answer" binding:"required"`
	ResponseMethod string `json:"response_method" binding:"required"`
}

type QuizService interface {
	GetRandomQuiz(ctx context.Context) (*types.Quiz, error)
	GetQuizzesByStoryID(ctx context.Context, storyID string) ([]*types.Quiz, error)
	SubmitQuizAnswer(ctx context.Context, input SubmitAnswerInput) (*types.QuizFeedback, error)
}

type quizService struct {
	db         *gorm.DB
	log        *logger.Logger
	quizRepo   repos.QuizRepo
	resultRepo repos.QuizResultRepo
	storyRepo  repos.StoryRepo
}

func NewQuizService(
	db *gorm.DB,
	baseLog *logger.Logger,
	quizRepo repos.QuizRepo,
	resultRepo repos.QuizResultRepo,
	storyRepo repos.StoryRepo,
) QuizService {
	return &quizService{
		db:         db,
		log:        baseLog.With("service", "QuizService"),
		quizRepo:   quizRepo,
		resultRepo: resultRepo,
		storyRepo:  storyRepo,
	}
}

// GetRandomQuiz draws one quiz by counting rows and fetching a uniformly
// random offset. The two queries are not serialized against concurrent
// writes, so the draw is only approximately uniform; every quiz still has
// non-zero selection probability.
func (s *quizService) GetRandomQuiz(ctx context.Context) (*types.Quiz, error) {
	count, err := s.quizRepo.Count(ctx, nil)
	if err != nil {
		s.log.Error("GetRandomQuiz count failed", "error", err)
		return nil, apierr.Internal(fmt.Errorf("count quizzes: %w", err))
	}
	if count == 0 {
		return nil, apierr.NotFound("no quizzes available")
	}

	offset := rand.Intn(int(count))
	quiz, err := s.quizRepo.GetByOffset(ctx, nil, offset)
	if err != nil {
		s.log.Error("GetRandomQuiz fetch failed", "error", err, "offset", offset)
		return nil, apierr.Internal(fmt.Errorf("get quiz at offset: %w", err))
	}
	if quiz == nil {
		// The corpus shrank between count and fetch.
		return nil, apierr.NotFound("no quizzes available")
	}

	s.log.Debug("Random quiz retrieved", "quizID", quiz.ID, "difficultyLevel", quiz.DifficultyLevel)
	return quiz, nil
}

func (s *quizService) GetQuizzesByStoryID(ctx context.Context, storyID string) ([]*types.Quiz, error) {
	id, err := parseStoryID(storyID)
	if err != nil {
		return nil, err
	}

	story, repoErr := s.storyRepo.GetByID(ctx, nil, id)
	if repoErr != nil {
		s.log.Error("GetQuizzesByStoryID failed", "error", repoErr, "storyID", storyID)
		return nil, apierr.Internal(fmt.Errorf("get story: %w", repoErr))
	}
	if story == nil {
		return nil, apierr.NotFound("story not found: %s", storyID)
	}

	quizzes, repoErr := s.quizRepo.GetByStoryID(ctx, nil, id)
	if repoErr != nil {
		s.log.Error("GetQuizzesByStoryID failed", "error", repoErr, "storyID", storyID)
		return nil, apierr.Internal(fmt.Errorf("get quizzes: %w", repoErr))
	}
	return quizzes, nil
}

// SubmitQuizAnswer grades one submission and appends a result row. The
// choice lookup is scoped to the quiz's own choices so a choice id belonging
// to a different quiz is rejected, never graded. Grading and persistence run
// in one transaction.
func (s *quizService) SubmitQuizAnswer(ctx context.Context, input SubmitAnswerInput) (*types.QuizFeedback, error) {
	if strings.TrimSpace(input.QuizID) == "" {
		return nil, apierr.InvalidArgument("quiz ID is required")
	}
	if strings.TrimSpace(input.UserAnswer) == "" {
		return nil, apierr.InvalidArgument("user answer is required")
	}
	if strings.TrimSpace(input.ResponseMethod) == "" {
		return nil, apierr.InvalidArgument("response method is required")
	}
	if !types.ValidResponseMethod(input.ResponseMethod) {
		return nil, apierr.InvalidArgument("response method must be either %q or %q", types.ResponseMethodVoice, types.ResponseMethodText)
	}

	quizID, err := uuid.Parse(input.QuizID)
	if err != nil {
		return nil, apierr.NotFound("quiz not found: %s", input.QuizID)
	}

	var feedback *types.QuizFeedback
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quiz, err := s.quizRepo.GetByID(ctx, tx, quizID)
		if err != nil {
			return apierr.Internal(fmt.Errorf("get quiz: %w", err))
		}
		if quiz == nil {
			return apierr.NotFound("quiz not found: %s", input.QuizID)
		}

		answerID, err := uuid.Parse(input.UserAnswer)
		if err != nil {
			return apierr.InvalidArgument("invalid answer choice: %s", input.UserAnswer)
		}
		userChoice := quiz.ChoiceByID(answerID)
		if userChoice == nil {
			return apierr.InvalidArgument("invalid answer choice: %s", input.UserAnswer)
		}

		correctChoice := quiz.CorrectChoice()
		if correctChoice == nil {
			return apierr.Internal(fmt.Errorf("no correct answer found for quiz: %s", quiz.ID))
		}

		result := &types.QuizResult{
			QuizID:         quiz.ID,
			UserAnswer:     userChoice.ID,
			IsCorrect:      userChoice.IsCorrect,
			ResponseMethod: input.ResponseMethod,
		}
		if _, err := s.resultRepo.Create(ctx, tx, result); err != nil {
			return apierr.Internal(fmt.Errorf("save quiz result: %w", err))
		}

		explanation := noExplanationFallback
		if userChoice.Explanation != nil && *userChoice.Explanation != "" {
			explanation = *userChoice.Explanation
		} else if correctChoice.Explanation != nil && *correctChoice.Explanation != "" {
			explanation = *correctChoice.Explanation
		}

		feedback = &types.QuizFeedback{
			IsCorrect:   userChoice.IsCorrect,
			Explanation: explanation,
		}
		if !userChoice.IsCorrect {
			sample := correctChoice.ChoiceText
			feedback.SampleAnswer = &sample
		}

		s.log.Info("Quiz answer submitted", "quizID", quiz.ID, "isCorrect", userChoice.IsCorrect, "responseMethod", input.ResponseMethod)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return feedback, nil
}
