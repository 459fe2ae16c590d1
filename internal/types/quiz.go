package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"quiz_id"`
	StoryID         uuid.UUID `gorm:"type:uuid;not null;index" json:"story_id"`
	QuestionText    string    `gorm:"column:question_text;not null" json:"question_text"`
	QuestionType    string    `gorm:"column:question_type;not null" json:"question_type"`
	DifficultyLevel string    `gorm:"column:difficulty_level;not null;index" json:"difficulty_level"`
	IsAIGenerated   bool      `gorm:"column:is_ai_generated;not null;default:false" json:"is_ai_generated"`
	SourceText      *string   `gorm:"column:source_text" json:"source_text,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`

	Choices []*QuizChoice `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"choices"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(_ *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// CorrectChoice returns the first choice marked correct, or nil. A quiz with
// no correct choice violates the authoring invariant.
func (q *Quiz) CorrectChoice() *QuizChoice {
	for _, c := range q.Choices {
		if c.IsCorrect {
			return c
		}
	}
	return nil
}

// ChoiceByID returns the choice with the given id scoped to this quiz, or nil.
func (q *Quiz) ChoiceByID(choiceID uuid.UUID) *QuizChoice {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return c
		}
	}
	return nil
}

type QuizChoice struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"choice_id"`
	QuizID      uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	ChoiceText  string    `gorm:"column:choice_text;not null" json:"choice_text"`
	IsCorrect   bool      `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
	Explanation *string   `gorm:"column:explanation" json:"explanation,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (QuizChoice) TableName() string { return "quiz_choice" }

func (c *QuizChoice) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// QuizFeedback is the response to an answer submission. SampleAnswer carries
// the correct choice's text only when the submission was wrong.
type QuizFeedback struct {
	IsCorrect    bool    `json:"is_correct"`
	Explanation  string  `json:"explanation"`
	SampleAnswer *string `json:"sample_answer,omitempty"`
}
