package domain

import "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain/notes"

type AINote = notes.AINote
type AIFeedback = notes.AIFeedback
type AIAuditLog = notes.AIAuditLog
type FollowupReport = notes.FollowupReport

// Models lists the tables owned by this service, in migration order.
func Models() []any {
	return []any{
		&AINote{},
		&AIFeedback{},
		&AIAuditLog{},
		&FollowupReport{},
	}
}
