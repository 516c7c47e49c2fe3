package notes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

const defaultListLimit = 50

type AINoteRepo interface {
	Create(dbc dbctx.Context, note *types.AINote) (*types.AINote, error)
	GetByID(dbc dbctx.Context, tenant string, id uuid.UUID) (*types.AINote, error)
	ListByPerson(dbc dbctx.Context, tenant string, personID uuid.UUID, limit int) ([]*types.AINote, error)
	ListInRange(dbc dbctx.Context, tenant string, from, to time.Time) ([]*types.AINote, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type aiNoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAINoteRepo(db *gorm.DB, baseLog *logger.Logger) AINoteRepo {
	return &aiNoteRepo{
		db:  db,
		log: baseLog.With("repo", "AINoteRepo"),
	}
}

func (r *aiNoteRepo) Create(dbc dbctx.Context, note *types.AINote) (*types.AINote, error) {
	if note == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(note).Error; err != nil {
		return nil, err
	}
	return note, nil
}

// GetByID returns nil without error when the note does not exist for tenant.
func (r *aiNoteRepo) GetByID(dbc dbctx.Context, tenant string, id uuid.UUID) (*types.AINote, error) {
	if id == uuid.Nil || tenant == "" {
		return nil, nil
	}
	var note types.AINote
	err := dbc.DB(r.db).
		Where("id = ? AND tenant = ?", id, tenant).
		Limit(1).
		Find(&note).Error
	if err != nil {
		return nil, err
	}
	if note.ID == uuid.Nil {
		return nil, nil
	}
	return &note, nil
}

func (r *aiNoteRepo) ListByPerson(dbc dbctx.Context, tenant string, personID uuid.UUID, limit int) ([]*types.AINote, error) {
	out := []*types.AINote{}
	if personID == uuid.Nil || tenant == "" {
		return out, nil
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	err := dbc.DB(r.db).
		Where("tenant = ? AND recipient_id = ? AND is_archived = ?", tenant, personID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListInRange returns live notes created in [from, to), oldest first.
func (r *aiNoteRepo) ListInRange(dbc dbctx.Context, tenant string, from, to time.Time) ([]*types.AINote, error) {
	out := []*types.AINote{}
	if tenant == "" || !to.After(from) {
		return out, nil
	}
	err := dbc.DB(r.db).
		Where("tenant = ? AND is_archived = ? AND created_at >= ? AND created_at < ?", tenant, false, from.UTC(), to.UTC()).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *aiNoteRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).
		Model(&types.AINote{}).
		Where("id = ?", id).
		Updates(updates).Error
}
