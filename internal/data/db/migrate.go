package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}

// EnsureNoteIndexes adds the composite and partial indexes gorm tags cannot
// express. Postgres only.
func EnsureNoteIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_ai_notes_tenant_person_created", `
			CREATE INDEX IF NOT EXISTS idx_ai_notes_tenant_person_created
			ON ai_notes(tenant, person_id, created_at DESC)
			WHERE deleted_at IS NULL;
		`},
		{"idx_ai_notes_tenant_created", `
			CREATE INDEX IF NOT EXISTS idx_ai_notes_tenant_created
			ON ai_notes(tenant, created_at)
			WHERE deleted_at IS NULL AND is_archived = false;
		`},
		{"idx_ai_notes_meta_gin", `
			CREATE INDEX IF NOT EXISTS idx_ai_notes_meta_gin
			ON ai_notes USING GIN (meta jsonb_path_ops);
		`},
		{"idx_ai_feedback_tenant_note", `
			CREATE INDEX IF NOT EXISTS idx_ai_feedback_tenant_note
			ON ai_feedback(tenant, note_id)
			WHERE deleted_at IS NULL;
		`},
		{"idx_ai_audit_log_resource", `
			CREATE INDEX IF NOT EXISTS idx_ai_audit_log_resource
			ON ai_audit_log(resource_type, resource_id, timestamp DESC);
		`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureNoteIndexes(s.db); err != nil {
		s.log.Error("Note index migration failed", "error", err)
		return err
	}
	return nil
}
