package notes

import (
	"time"

	"gorm.io/datatypes"
)

// FollowupReport is a built summary over a date range. ID is a ULID.
type FollowupReport struct {
	ID          string         `gorm:"column:id;primaryKey" json:"id"`
	Tenant      string         `gorm:"column:tenant;not null;index" json:"tenant"`
	PeriodStart time.Time      `gorm:"column:period_start;not null" json:"period_start"`
	PeriodEnd   time.Time      `gorm:"column:period_end;not null" json:"period_end"`
	NoteCount   int            `gorm:"column:note_count;not null;default:0" json:"note_count"`
	Summary     datatypes.JSON `gorm:"column:summary;type:jsonb" json:"summary"`
	Markdown    string         `gorm:"column:markdown;type:text" json:"markdown"`
	StorageURI  string         `gorm:"column:storage_uri" json:"storage_uri,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
}

func (FollowupReport) TableName() string { return "followup_reports" }
