package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/response"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/services"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/temporalx/followupnote"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, ev domain.InboundEvent) (string, error)
}

type WorkflowStarter interface {
	Start(ctx context.Context, ev domain.InboundEvent) (followupnote.Started, error)
}

type FollowupHandler struct {
	notes     services.NoteService
	queue     Enqueuer
	workflows WorkflowStarter
}

// NewFollowupHandler accepts nil queue or workflows; those routes then answer 503.
func NewFollowupHandler(notes services.NoteService, queue Enqueuer, workflows WorkflowStarter) *FollowupHandler {
	return &FollowupHandler{notes: notes, queue: queue, workflows: workflows}
}

// POST /api/followup/notes
func (h *FollowupHandler) Generate(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	ev, ok := bindEvent(c, tenant)
	if !ok {
		return
	}
	res, err := h.notes.Generate(dbctx.New(c.Request.Context()), ev, tenant)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"note_id": res.Record.ID,
		"note":    res.Note,
		"record":  res.Record,
	})
}

// POST /api/followup/preview
func (h *FollowupHandler) Preview(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	ev, ok := bindEvent(c, tenant)
	if !ok {
		return
	}
	note, err := h.notes.Preview(c.Request.Context(), ev, tenant)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if wantsHTML(c) {
		writeMarkdownHTML(c, "Follow-up preview", note.RawContent)
		return
	}
	response.RespondOK(c, gin.H{"note": note})
}

// POST /api/followup/enqueue
func (h *FollowupHandler) Enqueue(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	if h.queue == nil {
		response.RespondErr(c, fmt.Errorf("intake stream: %w", domain.ErrNotConfigured))
		return
	}
	ev, ok := bindEvent(c, tenant)
	if !ok {
		return
	}
	id, err := h.queue.Enqueue(c.Request.Context(), ev)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message_id": id, "status": "queued"})
}

// POST /api/followup/workflows
func (h *FollowupHandler) StartWorkflow(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	if h.workflows == nil {
		response.RespondErr(c, fmt.Errorf("temporal: %w", domain.ErrNotConfigured))
		return
	}
	ev, ok := bindEvent(c, tenant)
	if !ok {
		return
	}
	started, err := h.workflows.Start(c.Request.Context(), ev)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondAccepted(c, started)
}
