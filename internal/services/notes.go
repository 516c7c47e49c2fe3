package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/sources"
	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	domainnotes "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain/notes"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime/bus"
)

const (
	MemberNoteType      = "ai_visitor_followup"
	ResourceTypeNote    = "ai_note"
	noteTitlePrefix     = "AI Visitor Follow-up"
	persistTargetAI     = "ai_notes"
	persistTargetMember = "member_notes"
)

// NoteGenerator is the follow-up pipeline.
type NoteGenerator interface {
	AggregateAndSynthesize(ctx context.Context, ev types.InboundEvent, tenant types.TenantRef) (types.GeneratedNote, error)
}

// MemberNoteWriter writes the member-facing copy into the tenant notes table.
type MemberNoteWriter interface {
	CreateNote(ctx context.Context, tenant types.TenantRef, n sources.NoteWrite) (string, error)
}

type NoteResult struct {
	Note   types.GeneratedNote `json:"note"`
	Record *types.AINote       `json:"record"`
}

type NoteService interface {
	Generate(dbc dbctx.Context, ev types.InboundEvent, tenant types.TenantRef) (*NoteResult, error)
	Preview(ctx context.Context, ev types.InboundEvent, tenant types.TenantRef) (types.GeneratedNote, error)
	Persist(dbc dbctx.Context, tenant types.TenantRef, note types.GeneratedNote) (*types.AINote, error)
	Get(dbc dbctx.Context, tenant types.TenantRef, id uuid.UUID) (*types.AINote, error)
	ListByPerson(dbc dbctx.Context, tenant types.TenantRef, personID uuid.UUID, limit int) ([]*types.AINote, error)
}

type NoteServiceConfig struct {
	// AuthorID is the person id the member-facing note is written as.
	AuthorID uuid.UUID
	Model    string
	// WriteMemberNotes enables the tenant notes table copy.
	WriteMemberNotes bool
}

type noteService struct {
	log      *logger.Logger
	pipeline NoteGenerator
	repo     repos.AINoteRepo
	members  MemberNoteWriter
	audit    *AuditRecorder
	events   bus.Bus
	metrics  *observability.Metrics
	cfg      NoteServiceConfig
}

func NewNoteService(
	baseLog *logger.Logger,
	pipeline NoteGenerator,
	repo repos.AINoteRepo,
	members MemberNoteWriter,
	audit *AuditRecorder,
	events bus.Bus,
	metrics *observability.Metrics,
	cfg NoteServiceConfig,
) NoteService {
	return &noteService{
		log:      baseLog.With("service", "NoteService"),
		pipeline: pipeline,
		repo:     repo,
		members:  members,
		audit:    audit,
		events:   events,
		metrics:  metrics,
		cfg:      cfg,
	}
}

func (s *noteService) Preview(ctx context.Context, ev types.InboundEvent, tenant types.TenantRef) (types.GeneratedNote, error) {
	return s.pipeline.AggregateAndSynthesize(ctx, ev, tenant)
}

func (s *noteService) Generate(dbc dbctx.Context, ev types.InboundEvent, tenant types.TenantRef) (*NoteResult, error) {
	note, err := s.pipeline.AggregateAndSynthesize(dbc.Ctx, ev, tenant)
	if err != nil {
		return nil, err
	}
	if tenant.IsZero() {
		if tenant, err = types.NewTenantRef(note.Tenant); err != nil {
			return nil, err
		}
	}
	rec, err := s.Persist(dbc, tenant, note)
	if err != nil {
		return &NoteResult{Note: note}, err
	}
	return &NoteResult{Note: note, Record: rec}, nil
}

// Persist stores the note in ai_notes, then best-effort writes the member copy.
// Only the ai_notes write can fail the call; it wraps types.ErrPersistFailed.
func (s *noteService) Persist(dbc dbctx.Context, tenant types.TenantRef, note types.GeneratedNote) (*types.AINote, error) {
	start := time.Now()
	rec, err := s.buildRecord(tenant, note)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Create(dbc, rec); err != nil {
		s.metrics.IncNotePersisted(persistTargetAI, "error")
		s.audit.Record(dbc, AuditEntry{
			Tenant:       tenant.Identifier,
			Action:       domainnotes.AuditActionGenerateNote,
			ResourceType: ResourceTypeNote,
			ResourceID:   note.PersonID,
			Started:      start,
			Err:          err,
		})
		s.publish(dbc.Ctx, realtime.NewEvent(realtime.EventNotePersistFailed, tenant.Identifier, map[string]any{
			"person_id": note.PersonID,
			"task_id":   note.TaskID,
		}))
		s.log.Error("Note persist failed", "tenant", tenant.Identifier, "person_id", note.PersonID, "error", err)
		return nil, fmt.Errorf("%w: %v", types.ErrPersistFailed, err)
	}
	s.metrics.IncNotePersisted(persistTargetAI, "ok")

	if s.cfg.WriteMemberNotes && s.members != nil {
		s.writeMemberNote(dbc, tenant, note, rec)
	}

	s.audit.Record(dbc, AuditEntry{
		Tenant:       tenant.Identifier,
		Action:       domainnotes.AuditActionGenerateNote,
		ResourceType: ResourceTypeNote,
		ResourceID:   rec.ID.String(),
		Details: map[string]any{
			"scenario_type":    string(note.ScenarioType),
			"confidence_score": note.ConfidenceScore,
			"failed_analyses":  note.FailedAnalyses,
			"external_note_id": rec.ExternalNoteID,
		},
		Started: start,
	})
	s.publish(dbc.Ctx, realtime.NewEvent(realtime.EventNoteGenerated, tenant.Identifier, map[string]any{
		"note_id":          rec.ID.String(),
		"person_id":        note.PersonID,
		"scenario_type":    string(note.ScenarioType),
		"confidence_score": note.ConfidenceScore,
	}))
	return rec, nil
}

func (s *noteService) buildRecord(tenant types.TenantRef, note types.GeneratedNote) (*types.AINote, error) {
	recipient, err := uuid.Parse(note.PersonID)
	if err != nil {
		return nil, types.NewValidationError("person_id", "generated note has no valid person id")
	}
	meta, err := json.Marshal(note)
	if err != nil {
		return nil, fmt.Errorf("encode note meta: %w", err)
	}
	rec := &types.AINote{
		Tenant:          tenant.Identifier,
		Title:           noteTitle(note),
		PersonID:        s.cfg.AuthorID,
		RecipientID:     recipient,
		TaskID:          note.TaskID,
		NotesBody:       note.RawContent,
		Meta:            datatypes.JSON(meta),
		ScenarioType:    string(note.ScenarioType),
		ConfidenceScore: note.ConfidenceScore,
		AIModelUsed:     s.cfg.Model,
	}
	if rec.PersonID == uuid.Nil {
		rec.PersonID = recipient
	}
	if fam, err := uuid.Parse(note.FamID); err == nil && fam != uuid.Nil {
		rec.RecipientFamilyID = &fam
	}
	return rec, nil
}

func (s *noteService) writeMemberNote(dbc dbctx.Context, tenant types.TenantRef, note types.GeneratedNote, rec *types.AINote) {
	externalID, err := s.members.CreateNote(dbc.Ctx, tenant, sources.NoteWrite{
		Title:          rec.Title,
		Body:           rec.NotesBody,
		Type:           MemberNoteType,
		AuthorID:       rec.PersonID,
		RecipientID:    rec.RecipientID,
		RecipientFamID: rec.RecipientFamilyID,
		Meta: map[string]any{
			"ai_note_id":       rec.ID.String(),
			"ai_generated":     true,
			"confidence_score": note.ConfidenceScore,
			"scenario_type":    string(note.ScenarioType),
			"task_id":          note.TaskID,
		},
	})
	if err != nil {
		s.metrics.IncNotePersisted(persistTargetMember, "error")
		s.log.Warn("Member note write failed", "tenant", tenant.Identifier, "ai_note_id", rec.ID, "error", err)
		return
	}
	s.metrics.IncNotePersisted(persistTargetMember, "ok")
	rec.ExternalNoteID = externalID
	if err := s.repo.UpdateFields(dbc, rec.ID, map[string]interface{}{"external_note_id": externalID}); err != nil {
		s.log.Warn("Failed to link member note", "ai_note_id", rec.ID, "external_note_id", externalID, "error", err)
	}
}

func (s *noteService) publish(ctx context.Context, ev realtime.Event) {
	if s.events == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("Note event publish failed", "type", string(ev.Type), "error", err)
	}
}

func (s *noteService) Get(dbc dbctx.Context, tenant types.TenantRef, id uuid.UUID) (*types.AINote, error) {
	rec, err := s.repo.GetByID(dbc, tenant.Identifier, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("note %s: %w", id, types.ErrNotFound)
	}
	return rec, nil
}

func (s *noteService) ListByPerson(dbc dbctx.Context, tenant types.TenantRef, personID uuid.UUID, limit int) ([]*types.AINote, error) {
	if personID == uuid.Nil {
		return nil, types.NewValidationError("person_id", "person_id is required")
	}
	return s.repo.ListByPerson(dbc, tenant.Identifier, personID, limit)
}

func noteTitle(n types.GeneratedNote) string {
	name := strings.TrimSpace(n.VisitorFullName)
	if name == "" {
		return noteTitlePrefix
	}
	return noteTitlePrefix + " - " + name
}
