package notes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	HelpfulnessYes       = "yes"
	HelpfulnessNo        = "no"
	HelpfulnessPartially = "partially"

	FeedbackEntityNote = "note"
	MaxCommentLength   = 500
)

func ValidHelpfulness(v string) bool {
	switch v {
	case HelpfulnessYes, HelpfulnessNo, HelpfulnessPartially:
		return true
	}
	return false
}

type AIFeedback struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Tenant           string         `gorm:"column:tenant;not null;index" json:"tenant"`
	EntityType       string         `gorm:"column:entity_type;not null;index" json:"entity_type"`
	NoteID           uuid.UUID      `gorm:"type:uuid;column:note_id;not null;index" json:"note_id"`
	PersonID         *uuid.UUID     `gorm:"type:uuid;column:person_id;index" json:"person_id,omitempty"`
	AdminID          string         `gorm:"column:admin_id;index" json:"admin_id,omitempty"`
	Helpfulness      string         `gorm:"column:helpfulness;not null;index" json:"helpfulness"`
	UserComment      string         `gorm:"column:user_comment;size:500" json:"user_comment,omitempty"`
	FeedbackCategory string         `gorm:"column:feedback_category" json:"feedback_category,omitempty"`
	Tone             string         `gorm:"column:tone" json:"tone,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AIFeedback) TableName() string { return "ai_feedback" }

func (f *AIFeedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.EntityType == "" {
		f.EntityType = FeedbackEntityNote
	}
	return nil
}
