package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/middleware"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/response"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

func tenantOrAbort(c *gin.Context) (domain.TenantRef, bool) {
	t, ok := middleware.TenantFrom(c)
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "tenant_required", errors.New("tenant is required"))
		return domain.TenantRef{}, false
	}
	return t, true
}

// bindEvent decodes an InboundEvent and pins it to the request tenant.
func bindEvent(c *gin.Context, tenant domain.TenantRef) (domain.InboundEvent, bool) {
	var ev domain.InboundEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return ev, false
	}
	if strings.TrimSpace(ev.Tenant) != "" {
		body, err := domain.NewTenantRef(ev.Tenant)
		if err != nil {
			response.RespondErr(c, err)
			return ev, false
		}
		if body.Identifier != tenant.Identifier {
			response.RespondErr(c, domain.NewValidationError("tenant", "event tenant does not match request tenant"))
			return ev, false
		}
	}
	ev.Tenant = tenant.Identifier
	return ev, true
}

func wantsHTML(c *gin.Context) bool {
	return strings.EqualFold(c.Query("format"), "html")
}

func writeMarkdownHTML(c *gin.Context, title, md string) {
	var buf bytes.Buffer
	buf.WriteString("<!doctype html><html><head><meta charset=\"utf-8\"><title>")
	buf.WriteString(htmlEscape(title))
	buf.WriteString("</title></head><body>")
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		response.RespondError(c, http.StatusInternalServerError, "render_failed", err)
		return
	}
	buf.WriteString("</body></html>")
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
