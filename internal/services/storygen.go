package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hanashi-app/backend/internal/apierr"
	"github.com/hanashi-app/backend/internal/logger"
	"github.com/hanashi-app/backend/internal/repos"
	"github.com/hanashi-app/backend/internal/types"
)

type GenerateStoryInput struct {
	Level        string `json:"level" binding:"required"`
	Theme        string `json:"theme" binding:"required"`
	ChapterCount int    `json:"chapter_count"`
}

// StoryGenService drives LLM-backed authoring of a branching story,
// validating the generated tree before persisting it in one transaction.
type StoryGenService interface {
	GenerateStory(ctx context.Context, input GenerateStoryInput) (*types.Story, error)
}

type storyGenService struct {
	log         *logger.Logger
	db          *gorm.DB
	llm         OpenAIClient
	storyRepo   repos.StoryRepo
	chapterRepo repos.ChapterRepo
	choiceRepo  repos.ChoiceRepo
	quizRepo    repos.QuizRepo
}

func NewStoryGenService(
	log *logger.Logger,
	db *gorm.DB,
	llm OpenAIClient,
	storyRepo repos.StoryRepo,
	chapterRepo repos.ChapterRepo,
	choiceRepo repos.ChoiceRepo,
	quizRepo repos.QuizRepo,
) StoryGenService {
	return &storyGenService{
		log:         log.With("service", "StoryGenService"),
		db:          db,
		llm:         llm,
		storyRepo:   storyRepo,
		chapterRepo: chapterRepo,
		choiceRepo:  choiceRepo,
		quizRepo:    quizRepo,
	}
}

type generatedChoice struct {
	Text         string `json:"text"`
	Description  string `json:"description"`
	NextIndex    int    `json:"next_index"`
	DisplayOrder int    `json:"display_order"`
}

type generatedChapter struct {
	Index           int                    `json:"index"`
	ParentIndex     *int                   `json:"parent_index"`
	Content         string                 `json:"content"`
	ContentWithRuby string                 `json:"content_with_ruby"`
	Translation     string                 `json:"translation"`
	Choices         []generatedChoice      `json:"choices"`
	Vocabulary      []types.VocabularyItem `json:"vocabulary"`
}

type generatedQuizChoice struct {
	Text        string `json:"text"`
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation"`
}

type generatedQuiz struct {
	QuestionText string                `json:"question_text"`
	QuestionType string                `json:"question_type"`
	Choices      []generatedQuizChoice `json:"choices"`
}

type generatedStory struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Chapters    []generatedChapter `json:"chapters"`
	Quizzes     []generatedQuiz    `json:"quizzes"`
}

func (s *storyGenService) GenerateStory(ctx context.Context, input GenerateStoryInput) (*types.Story, error) {
	level := strings.TrimSpace(input.Level)
	if !types.ValidJLPTLevel(level) {
		return nil, apierr.InvalidArgument("invalid level: %s", input.Level)
	}
	theme := strings.TrimSpace(input.Theme)
	if theme == "" {
		return nil, apierr.InvalidArgument("theme is required")
	}
	chapterCount := input.ChapterCount
	if chapterCount <= 0 {
		chapterCount = 4
	}
	if chapterCount > 12 {
		return nil, apierr.InvalidArgument("chapter_count must be at most 12")
	}
	if s.llm == nil {
		return nil, apierr.Unavailable(fmt.Errorf("story generation is not configured"))
	}

	gen, err := s.requestStory(ctx, level, theme, chapterCount)
	if err != nil {
		s.log.Error("Story generation request failed", "level", level, "error", err)
		return nil, apierr.Unavailable(err)
	}
	if err := validateGeneratedStory(gen); err != nil {
		s.log.Error("Generated story failed validation", "level", level, "error", err)
		return nil, apierr.Unavailable(err)
	}

	story, err := s.persistStory(ctx, level, gen)
	if err != nil {
		s.log.Error("Failed to persist generated story", "level", level, "error", err)
		return nil, apierr.Internal(err)
	}
	s.log.Info("Generated story", "story_id", story.ID, "level", level, "chapters", len(gen.Chapters), "quizzes", len(gen.Quizzes))
	return story, nil
}

func (s *storyGenService) requestStory(ctx context.Context, level, theme string, chapterCount int) (*generatedStory, error) {
	system := "You are a Japanese language teacher writing branching interactive stories for learners. " +
		"Write natural Japanese appropriate for the requested JLPT level, with furigana in the ruby field " +
		"using the 漢字(かんじ) convention and an English translation per chapter."
	user := fmt.Sprintf(
		"Write a branching story at JLPT level %s about: %s. Use about %d chapters. "+
			"Chapter 0 is the root. Every non-root chapter names its parent by index, and parents always "+
			"appear before their children. Chapters with children list one choice per child via next_index. "+
			"Include 3-8 vocabulary items per chapter and 3-5 comprehension quizzes with exactly one correct "+
			"choice each and an explanation per choice.",
		level, theme, chapterCount,
	)

	raw, err := s.llm.GenerateJSON(ctx, system, user, "branching_story", storySchema())
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encode model output: %w", err)
	}
	var gen generatedStory
	if err := json.Unmarshal(encoded, &gen); err != nil {
		return nil, fmt.Errorf("decode generated story: %w", err)
	}
	return &gen, nil
}

func validateGeneratedStory(gen *generatedStory) error {
	if strings.TrimSpace(gen.Title) == "" {
		return fmt.Errorf("generated story has no title")
	}
	if len(gen.Chapters) == 0 {
		return fmt.Errorf("generated story has no chapters")
	}

	seen := make(map[int]bool, len(gen.Chapters))
	rootCount := 0
	for i, ch := range gen.Chapters {
		if seen[ch.Index] {
			return fmt.Errorf("duplicate chapter index %d", ch.Index)
		}
		if ch.ParentIndex == nil {
			rootCount++
		} else if !seen[*ch.ParentIndex] {
			return fmt.Errorf("chapter %d references parent %d before it is defined", ch.Index, *ch.ParentIndex)
		}
		if strings.TrimSpace(ch.Content) == "" {
			return fmt.Errorf("chapter at position %d has empty content", i)
		}
		seen[ch.Index] = true
	}
	if rootCount != 1 {
		return fmt.Errorf("expected exactly one root chapter, got %d", rootCount)
	}
	for _, ch := range gen.Chapters {
		for _, c := range ch.Choices {
			if !seen[c.NextIndex] {
				return fmt.Errorf("chapter %d has a choice pointing to unknown chapter %d", ch.Index, c.NextIndex)
			}
		}
	}

	for i, q := range gen.Quizzes {
		if strings.TrimSpace(q.QuestionText) == "" {
			return fmt.Errorf("quiz at position %d has empty question text", i)
		}
		if len(q.Choices) < 2 {
			return fmt.Errorf("quiz at position %d needs at least two choices", i)
		}
		correct := 0
		for _, c := range q.Choices {
			if c.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("quiz at position %d has %d correct choices, want 1", i, correct)
		}
	}
	return nil
}

func (s *storyGenService) persistStory(ctx context.Context, level string, gen *generatedStory) (*types.Story, error) {
	estimated := 3 * len(gen.Chapters)
	story := &types.Story{
		Title:         gen.Title,
		Description:   gen.Description,
		LevelJLPT:     level,
		LevelCEFR:     types.CEFRForJLPT[level],
		EstimatedTime: estimated,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.storyRepo.Create(ctx, tx, []*types.Story{story}); err != nil {
			return err
		}

		// Assign ids up front so choices can point at chapters that are
		// persisted later in the same pass.
		chapterIDs := make(map[int]uuid.UUID, len(gen.Chapters))
		for _, ch := range gen.Chapters {
			chapterIDs[ch.Index] = uuid.New()
		}

		depths := make(map[int]int, len(gen.Chapters))
		numberPerDepth := make(map[int]int)
		var rootID uuid.UUID

		chapters := make([]*types.Chapter, 0, len(gen.Chapters))
		for _, ch := range gen.Chapters {
			depth := 0
			var parentID *uuid.UUID
			if ch.ParentIndex != nil {
				depth = depths[*ch.ParentIndex] + 1
				pid := chapterIDs[*ch.ParentIndex]
				parentID = &pid
			}
			depths[ch.Index] = depth
			numberPerDepth[depth]++

			chapter := &types.Chapter{
				ID:              chapterIDs[ch.Index],
				StoryID:         story.ID,
				ParentChapterID: parentID,
				ChapterNumber:   numberPerDepth[depth],
				DepthLevel:      depth,
				Content:         ch.Content,
				Vocabulary:      datatypes.JSONSlice[types.VocabularyItem](ch.Vocabulary),
			}
			if ruby := strings.TrimSpace(ch.ContentWithRuby); ruby != "" {
				chapter.ContentWithRuby = &ruby
			}
			if tr := strings.TrimSpace(ch.Translation); tr != "" {
				chapter.Translation = &tr
			}
			if ch.ParentIndex == nil {
				rootID = chapter.ID
			}
			chapters = append(chapters, chapter)
		}
		if _, err := s.chapterRepo.Create(ctx, tx, chapters); err != nil {
			return err
		}

		var choices []*types.Choice
		for _, ch := range gen.Chapters {
			for i, c := range ch.Choices {
				order := c.DisplayOrder
				if order <= 0 {
					order = i + 1
				}
				choice := &types.Choice{
					ChapterID:     chapterIDs[ch.Index],
					ChoiceText:    c.Text,
					NextChapterID: chapterIDs[c.NextIndex],
					DisplayOrder:  order,
				}
				if desc := strings.TrimSpace(c.Description); desc != "" {
					choice.ChoiceDescription = &desc
				}
				choices = append(choices, choice)
			}
		}
		if _, err := s.choiceRepo.Create(ctx, tx, choices); err != nil {
			return err
		}

		if err := s.storyRepo.SetRootChapter(ctx, tx, story.ID, rootID); err != nil {
			return err
		}
		story.RootChapterID = &rootID

		quizzes := make([]*types.Quiz, 0, len(gen.Quizzes))
		for _, q := range gen.Quizzes {
			questionType := q.QuestionType
			if !types.ValidQuestionType(questionType) {
				questionType = types.QuestionTypeReading
			}
			quiz := &types.Quiz{
				StoryID:         story.ID,
				QuestionText:    q.QuestionText,
				QuestionType:    questionType,
				DifficultyLevel: level,
				IsAIGenerated:   true,
			}
			for _, c := range q.Choices {
				qc := &types.QuizChoice{
					ChoiceText: c.Text,
					IsCorrect:  c.IsCorrect,
				}
				if expl := strings.TrimSpace(c.Explanation); expl != "" {
					qc.Explanation = &expl
				}
				quiz.Choices = append(quiz.Choices, qc)
			}
			quizzes = append(quizzes, quiz)
		}
		if len(quizzes) > 0 {
			if _, err := s.quizRepo.Create(ctx, tx, quizzes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return story, nil
}

func storySchema() map[string]any {
	choiceSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":          map[string]any{"type": "string"},
			"description":   map[string]any{"type": "string"},
			"next_index":    map[string]any{"type": "integer"},
			"display_order": map[string]any{"type": "integer"},
		},
		"required":             []string{"text", "description", "next_index", "display_order"},
		"additionalProperties": false,
	}
	vocabularySchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"word":    map[string]any{"type": "string"},
			"reading": map[string]any{"type": "string"},
			"meanings": map[string]any{
				"type":                 "object",
				"additionalProperties": map[string]any{"type": "string"},
			},
			"example": map[string]any{"type": "string"},
		},
		"required":             []string{"word", "reading", "meanings", "example"},
		"additionalProperties": false,
	}
	chapterSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"index":             map[string]any{"type": "integer"},
			"parent_index":      map[string]any{"type": []string{"integer", "null"}},
			"content":           map[string]any{"type": "string"},
			"content_with_ruby": map[string]any{"type": "string"},
			"translation":       map[string]any{"type": "string"},
			"choices":           map[string]any{"type": "array", "items": choiceSchema},
			"vocabulary":        map[string]any{"type": "array", "items": vocabularySchema},
		},
		"required":             []string{"index", "parent_index", "content", "content_with_ruby", "translation", "choices", "vocabulary"},
		"additionalProperties": false,
	}
	quizChoiceSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text":        map[string]any{"type": "string"},
			"is_correct":  map[string]any{"type": "boolean"},
			"explanation": map[string]any{"type": "string"},
		},
		"required":             []string{"text", "is_correct", "explanation"},
		"additionalProperties": false,
	}
	quizSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{"type": "string"},
			"question_type": map[string]any{"type": "string"},
			"choices":       map[string]any{"type": "array", "items": quizChoiceSchema},
		},
		"required":             []string{"question_text", "question_type", "choices"},
		"additionalProperties": false,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"chapters":    map[string]any{"type": "array", "items": chapterSchema},
			"quizzes":     map[string]any{"type": "array", "items": quizSchema},
		},
		"required":             []string{"title", "description", "chapters", "quizzes"},
		"additionalProperties": false,
	}
}
