package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/response"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/reports"
)

type ReportHandler struct {
	reports reports.Service
}

func NewReportHandler(svc reports.Service) *ReportHandler {
	return &ReportHandler{reports: svc}
}

type buildReportRequest struct {
	DateRangeStart string `json:"date_range_start"`
	DateRangeEnd   string `json:"date_range_end"`
}

// POST /api/reports
func (h *ReportHandler) Build(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	var req buildReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	from, err := parseDate("date_range_start", req.DateRangeStart)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	to, err := parseDate("date_range_end", req.DateRangeEnd)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	report, err := h.reports.Build(dbctx.New(c.Request.Context()), tenant, from, to)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"report": report})
}

// GET /api/reports/:id?format=json|markdown|html
func (h *ReportHandler) Get(c *gin.Context) {
	tenant, ok := tenantOrAbort(c)
	if !ok {
		return
	}
	report, err := h.reports.Get(dbctx.New(c.Request.Context()), tenant, c.Param("id"))
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	switch strings.ToLower(c.Query("format")) {
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown))
	case "html":
		writeMarkdownHTML(c, "Visitor Follow-up Summary", report.Markdown)
	default:
		response.RespondOK(c, gin.H{"report": report})
	}
}

// parseDate accepts RFC 3339 timestamps or bare dates, read as UTC midnight.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, domain.NewValidationError(field, field+" is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.NewValidationError(field, field+" must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
}
