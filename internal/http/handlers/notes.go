package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/response"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/services"
)

type NoteHandler struct {
	notes services.NoteService
}

func NewNoteHandler(notes services.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// GET /api/notes/:id
func (h *NoteHandler) GetNote(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_note_id", err)
		return
	}
	note, err := h.notes.Get(dbctx.New(c.Request.Context()), tenant, id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if wantsHTML(c) {
		writeMarkdownHTML(c, note.Title, note.NotesBody)
		return
	}
	response.RespondOK(c, gin.H{"note": note})
}

// GET /api/notes?person_id=&limit=
func (h *NoteHandler) ListNotes(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	personID, err := uuid.Parse(c.Query("person_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_person_id", err)
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
			return
		}
	}
	notes, err := h.notes.ListByPerson(dbctx.New(c.Request.Context()), tenant, personID, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notes": notes})
}
