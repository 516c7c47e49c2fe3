package notes

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	domainnotes "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain/notes"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

// FeedbackStats counts feedback rows per helpfulness value.
type FeedbackStats struct {
	Total       int64            `json:"total_feedback"`
	Helpfulness map[string]int64 `json:"helpfulness_breakdown"`
}

type AIFeedbackRepo interface {
	Create(dbc dbctx.Context, fb *types.AIFeedback) (*types.AIFeedback, error)
	ListByNote(dbc dbctx.Context, tenant string, noteID uuid.UUID) ([]*types.AIFeedback, error)
	Stats(dbc dbctx.Context, tenant string) (FeedbackStats, error)
}

type aiFeedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAIFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) AIFeedbackRepo {
	return &aiFeedbackRepo{
		db:  db,
		log: baseLog.With("repo", "AIFeedbackRepo"),
	}
}

func (r *aiFeedbackRepo) Create(dbc dbctx.Context, fb *types.AIFeedback) (*types.AIFeedback, error) {
	if fb == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(fb).Error; err != nil {
		return nil, err
	}
	return fb, nil
}

func (r *aiFeedbackRepo) ListByNote(dbc dbctx.Context, tenant string, noteID uuid.UUID) ([]*types.AIFeedback, error) {
	out := []*types.AIFeedback{}
	if noteID == uuid.Nil || tenant == "" {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("tenant = ? AND note_id = ? AND entity_type = ?", tenant, noteID, domainnotes.FeedbackEntityNote).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *aiFeedbackRepo) Stats(dbc dbctx.Context, tenant string) (FeedbackStats, error) {
	stats := FeedbackStats{Helpfulness: map[string]int64{
		domainnotes.HelpfulnessYes:       0,
		domainnotes.HelpfulnessNo:        0,
		domainnotes.HelpfulnessPartially: 0,
	}}
	if tenant == "" {
		return stats, nil
	}
	var rows []struct {
		Helpfulness string
		Count       int64
	}
	err := dbc.DB(r.db).
		Model(&types.AIFeedback{}).
		Select("helpfulness, COUNT(*) AS count").
		Where("tenant = ?", tenant).
		Group("helpfulness").
		Scan(&rows).Error
	if err != nil {
		return FeedbackStats{}, err
	}
	for _, row := range rows {
		stats.Helpfulness[row.Helpfulness] = row.Count
		stats.Total += row.Count
	}
	return stats, nil
}
