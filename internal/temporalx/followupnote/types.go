package followupnote

import (
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

const (
	WorkflowName     = "followup_note"
	ActivityGenerate = "followup_note_generate"
)

type Input struct {
	Event domain.InboundEvent `json:"event"`
}

type Result struct {
	NoteID         string   `json:"note_id"`
	PersonID       string   `json:"person_id"`
	Tenant         string   `json:"tenant"`
	Confidence     float64  `json:"confidence_score"`
	FailedAnalyses []string `json:"failed_analyses,omitempty"`
}
