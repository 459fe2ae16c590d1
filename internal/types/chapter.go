package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VocabularyItem annotates a word in a chapter. Meanings map language codes
// to a translation; the backend stores the map without interpreting it.
type VocabularyItem struct {
	Word     string            `json:"word"`
	Reading  string            `json:"reading"`
	Meanings map[string]string `json:"meanings"`
	Example  string            `json:"example,omitempty"`
}

// Chapter is one node of a story's narrative tree. ParentChapterID is nil
// only for the root; DepthLevel is 0 at the root and parent+1 below it.
// Branch convergence happens through Choice edges, never through the parent
// pointer.
type Chapter struct {
	ID              uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"chapter_id"`
	StoryID         uuid.UUID                            `gorm:"type:uuid;not null;index" json:"story_id"`
	ParentChapterID *uuid.UUID                           `gorm:"type:uuid;index" json:"parent_chapter_id,omitempty"`
	ChapterNumber   int                                  `gorm:"column:chapter_number;not null" json:"chapter_number"`
	DepthLevel      int                                  `gorm:"column:depth_level;not null;default:0" json:"depth_level"`
	Content         string                               `gorm:"column:content;not null" json:"content"`
	ContentWithRuby *string                              `gorm:"column:content_with_ruby" json:"content_with_ruby,omitempty"`
	Translation     *string                              `gorm:"column:translation" json:"translation,omitempty"`
	Vocabulary      datatypes.JSONSlice[VocabularyItem]  `gorm:"column:vocabulary" json:"vocabulary,omitempty"`
	CreatedAt       time.Time                            `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time                            `gorm:"not null" json:"updated_at"`

	Choices []*Choice `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"choices"`
}

func (Chapter) TableName() string { return "chapter" }

func (c *Chapter) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Choice is a labeled edge from a chapter to its destination chapter.
// Display order is unique per source chapter.
type Choice struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"choice_id"`
	ChapterID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_choice_chapter_order,priority:1" json:"chapter_id"`
	ChoiceText        string    `gorm:"column:choice_text;not null" json:"choice_text"`
	ChoiceDescription *string   `gorm:"column:choice_description" json:"choice_description,omitempty"`
	NextChapterID     uuid.UUID `gorm:"type:uuid;not null" json:"next_chapter_id"`
	DisplayOrder      int       `gorm:"column:display_order;not null;uniqueIndex:idx_choice_chapter_order,priority:2" json:"display_order"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
}

func (Choice) TableName() string { return "choice" }

func (c *Choice) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
