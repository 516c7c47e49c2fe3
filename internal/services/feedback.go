package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/repos"
	types "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	domainnotes "github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain/notes"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/ctxutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime/bus"
)

type FeedbackInput struct {
	NoteID      uuid.UUID  `json:"note_id"`
	PersonID    *uuid.UUID `json:"person_id,omitempty"`
	Helpfulness string     `json:"helpfulness"`
	Comment     string     `json:"user_comment,omitempty"`
	Category    string     `json:"feedback_category,omitempty"`
	Tone        string     `json:"tone,omitempty"`
}

type NoteWithFeedback struct {
	Note     *types.AINote       `json:"note"`
	Feedback []*types.AIFeedback `json:"feedback"`
}

type FeedbackService interface {
	Submit(dbc dbctx.Context, tenant types.TenantRef, in FeedbackInput) (*types.AIFeedback, error)
	ForNote(dbc dbctx.Context, tenant types.TenantRef, noteID uuid.UUID) (*NoteWithFeedback, error)
	Stats(dbc dbctx.Context, tenant types.TenantRef) (repos.FeedbackStats, error)
}

type feedbackService struct {
	log      *logger.Logger
	notes    repos.AINoteRepo
	feedback repos.AIFeedbackRepo
	audit    *AuditRecorder
	events   bus.Bus
}

func NewFeedbackService(baseLog *logger.Logger, notes repos.AINoteRepo, feedback repos.AIFeedbackRepo, audit *AuditRecorder, events bus.Bus) FeedbackService {
	return &feedbackService{
		log:      baseLog.With("service", "FeedbackService"),
		notes:    notes,
		feedback: feedback,
		audit:    audit,
		events:   events,
	}
}

func (in FeedbackInput) normalize() FeedbackInput {
	in.Helpfulness = strings.ToLower(strings.TrimSpace(in.Helpfulness))
	in.Comment = strings.TrimSpace(in.Comment)
	in.Category = strings.TrimSpace(in.Category)
	in.Tone = strings.TrimSpace(in.Tone)
	return in
}

func (in FeedbackInput) validate() error {
	if in.NoteID == uuid.Nil {
		return types.NewValidationError("note_id", "note_id is required")
	}
	if !domainnotes.ValidHelpfulness(in.Helpfulness) {
		return types.NewValidationError("helpfulness", "helpfulness must be one of yes, no, partially")
	}
	if utf8.RuneCountInString(in.Comment) > domainnotes.MaxCommentLength {
		return types.NewValidationError("user_comment", fmt.Sprintf("comment exceeds %d characters", domainnotes.MaxCommentLength))
	}
	return nil
}

func (s *feedbackService) Submit(dbc dbctx.Context, tenant types.TenantRef, in FeedbackInput) (*types.AIFeedback, error) {
	start := time.Now()
	in = in.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}
	note, err := s.notes.GetByID(dbc, tenant.Identifier, in.NoteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("note %s: %w", in.NoteID, types.ErrNotFound)
	}

	fb := &types.AIFeedback{
		Tenant:           tenant.Identifier,
		EntityType:       domainnotes.FeedbackEntityNote,
		NoteID:           note.ID,
		PersonID:         in.PersonID,
		Helpfulness:      in.Helpfulness,
		UserComment:      in.Comment,
		FeedbackCategory: in.Category,
		Tone:             in.Tone,
	}
	if fb.PersonID == nil {
		rid := note.RecipientID
		fb.PersonID = &rid
	}
	if dbc.Ctx != nil {
		if rd := ctxutil.GetRequestData(dbc.Ctx); rd != nil {
			fb.AdminID = rd.UserID
		}
	}

	created, err := s.feedback.Create(dbc, fb)
	s.audit.Record(dbc, AuditEntry{
		Tenant:       tenant.Identifier,
		Action:       domainnotes.AuditActionSubmitFeedback,
		ResourceType: ResourceTypeNote,
		ResourceID:   note.ID.String(),
		Details:      map[string]any{"helpfulness": in.Helpfulness},
		Started:      start,
		Err:          err,
	})
	if err != nil {
		return nil, err
	}
	if s.events != nil && dbc.Ctx != nil {
		ev := realtime.NewEvent(realtime.EventFeedbackSubmitted, tenant.Identifier, map[string]any{
			"note_id":     note.ID.String(),
			"feedback_id": created.ID.String(),
			"helpfulness": created.Helpfulness,
		})
		if err := s.events.Publish(dbc.Ctx, ev); err != nil {
			s.log.Warn("Feedback event publish failed", "error", err)
		}
	}
	return created, nil
}

func (s *feedbackService) ForNote(dbc dbctx.Context, tenant types.TenantRef, noteID uuid.UUID) (*NoteWithFeedback, error) {
	note, err := s.notes.GetByID(dbc, tenant.Identifier, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fmt.Errorf("note %s: %w", noteID, types.ErrNotFound)
	}
	list, err := s.feedback.ListByNote(dbc, tenant.Identifier, noteID)
	if err != nil {
		return nil, err
	}
	return &NoteWithFeedback{Note: note, Feedback: list}, nil
}

func (s *feedbackService) Stats(dbc dbctx.Context, tenant types.TenantRef) (repos.FeedbackStats, error) {
	return s.feedback.Stats(dbc, tenant.Identifier)
}
