package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuizResult is one append-only log entry per answer submission. Rows are
// never updated; the only sanctioned delete is the bulk administrative reset.
type QuizResult struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"result_id"`
	QuizID         uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz           *Quiz     `gorm:"constraint:OnDelete:CASCADE;foreignKey:QuizID;references:ID" json:"quiz,omitempty"`
	UserAnswer     uuid.UUID `gorm:"type:uuid;column:user_answer;not null" json:"user_answer"`
	IsCorrect      bool      `gorm:"column:is_correct;not null" json:"is_correct"`
	ResponseMethod string    `gorm:"column:response_method;not null" json:"response_method"`
	AnsweredAt     time.Time `gorm:"column:answered_at;not null;index" json:"answered_at"`
}

func (QuizResult) TableName() string { return "quiz_result" }

func (r *QuizResult) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.AnsweredAt.IsZero() {
		r.AnsweredAt = time.Now().UTC()
	}
	return nil
}
