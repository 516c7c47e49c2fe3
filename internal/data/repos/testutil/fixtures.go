package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

// SeedNote inserts an ai_notes row for recipient created at the given time.
func SeedNote(tb testing.TB, ctx context.Context, tx *gorm.DB, tenant string, recipient uuid.UUID, createdAt time.Time, meta string) *types.AINote {
	tb.Helper()
	if meta == "" {
		meta = "{}"
	}
	n := &types.AINote{
		ID:              uuid.New(),
		Tenant:          tenant,
		Title:           "AI Visitor Follow-up",
		PersonID:        uuid.New(),
		RecipientID:     recipient,
		NotesBody:       "body",
		Meta:            datatypes.JSON([]byte(meta)),
		ScenarioType:    string(types.ScenarioIndividualNew),
		ConfidenceScore: 0.6,
		CreatedAt:       createdAt.UTC(),
		UpdatedAt:       createdAt.UTC(),
	}
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		tb.Fatalf("seed note: %v", err)
	}
	return n
}

func SeedFeedback(tb testing.TB, ctx context.Context, tx *gorm.DB, tenant string, noteID uuid.UUID, helpfulness string) *types.AIFeedback {
	tb.Helper()
	fb := &types.AIFeedback{
		Tenant:      tenant,
		NoteID:      noteID,
		Helpfulness: helpfulness,
	}
	if err := tx.WithContext(ctx).Create(fb).Error; err != nil {
		tb.Fatalf("seed feedback: %v", err)
	}
	return fb
}
