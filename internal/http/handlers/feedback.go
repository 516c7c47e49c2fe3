package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/response"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/services"
)

type FeedbackHandler struct {
	feedback services.FeedbackService
}

func NewFeedbackHandler(feedback services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

// POST /api/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	var in services.FeedbackInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	fb, err := h.feedback.Submit(dbctx.New(c.Request.Context()), tenant, in)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"feedback": fb})
}

// GET /api/feedback/notes/:id
func (h *FeedbackHandler) ForNote(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_note_id", err)
		return
	}
	out, err := h.feedback.ForNote(dbctx.New(c.Request.Context()), tenant, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /api/feedback/stats
func (h *FeedbackHandler) Stats(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	stats, err := h.feedback.Stats(dbctx.New(c.Request.Context()), tenant)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, stats)
}
