package notes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// AINote is a generated follow-up note stored by the service. Meta holds the
// full generated note as JSON.
type AINote struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Tenant            string         `gorm:"column:tenant;not null;index" json:"tenant"`
	Title             string         `gorm:"column:title;not null" json:"title"`
	PersonID          uuid.UUID      `gorm:"type:uuid;column:person_id;not null;index" json:"person_id"`
	RecipientID       uuid.UUID      `gorm:"type:uuid;column:recipient_id;not null;index" json:"recipient_id"`
	RecipientFamilyID *uuid.UUID     `gorm:"type:uuid;column:recipient_family_id;index" json:"recipient_family_id,omitempty"`
	TaskID            string         `gorm:"column:task_id;index" json:"task_id,omitempty"`
	NotesBody         string         `gorm:"column:notes_body;type:text" json:"notes_body"`
	Meta              datatypes.JSON `gorm:"column:meta;type:jsonb" json:"meta"`
	ScenarioType      string         `gorm:"column:scenario_type;index" json:"scenario_type"`
	ConfidenceScore   float64        `gorm:"column:confidence_score;not null;default:0" json:"confidence_score"`
	AIModelUsed       string         `gorm:"column:ai_model_used" json:"ai_model_used,omitempty"`
	AIReviewStatus    string         `gorm:"column:ai_review_status;not null;default:pending;index" json:"ai_review_status"`
	ExternalNoteID    string         `gorm:"column:external_note_id" json:"external_note_id,omitempty"`
	IsArchived        bool           `gorm:"column:is_archived;not null;default:false" json:"is_archived"`
	CreatedAt         time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AINote) TableName() string { return "ai_notes" }

func (n *AINote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.AIReviewStatus == "" {
		n.AIReviewStatus = ReviewStatusPending
	}
	return nil
}
