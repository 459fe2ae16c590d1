package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Story struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"story_id"`
	Title         string     `gorm:"column:title;not null" json:"title"`
	Description   string     `gorm:"column:description" json:"description"`
	LevelJLPT     string     `gorm:"column:level_jlpt;not null;index" json:"level_jlpt"`
	LevelCEFR     string     `gorm:"column:level_cefr;not null" json:"level_cefr"`
	EstimatedTime int        `gorm:"column:estimated_time;not null;default:0" json:"estimated_time"`
	ThumbnailURL  *string    `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	RootChapterID *uuid.UUID `gorm:"type:uuid" json:"root_chapter_id,omitempty"`
	CreatedAt     time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null" json:"updated_at"`

	Chapters []*Chapter `gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE" json:"-"`
	Quizzes  []*Quiz    `gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Story) TableName() string { return "story" }

func (s *Story) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
