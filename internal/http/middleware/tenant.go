package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/http/response"
)

const (
	HeaderTenantID = "X-Tenant-ID"
	tenantKey      = "tenant_ref"
)

// RequireTenant resolves the tenant from X-Tenant-ID, or from the service
// token when the header is absent. A header that disagrees with the token is
// rejected.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestData(c)
		raw := strings.TrimSpace(c.GetHeader(HeaderTenantID))
		if raw == "" {
			raw = rd.Tenant
		}
		if raw == "" {
			response.RespondError(c, http.StatusBadRequest, "tenant_required", errors.New("X-Tenant-ID header is required"))
			c.Abort()
			return
		}
		tenant, err := domain.NewTenantRef(raw)
		if err != nil {
			response.RespondErr(c, err)
			c.Abort()
			return
		}
		if rd.Tenant != "" {
			if claimed, err := domain.NewTenantRef(rd.Tenant); err != nil || claimed.Identifier != tenant.Identifier {
				response.RespondError(c, http.StatusForbidden, "tenant_mismatch", errors.New("token is not valid for this tenant"))
				c.Abort()
				return
			}
		}
		rd.Tenant = tenant.Identifier
		c.Set(tenantKey, tenant)
		c.Next()
	}
}

// TenantFrom returns the tenant resolved by RequireTenant.
func TenantFrom(c *gin.Context) (domain.TenantRef, bool) {
	v, ok := c.Get(tenantKey)
	if !ok {
		return domain.TenantRef{}, false
	}
	t, ok := v.(domain.TenantRef)
	return t, ok && !t.IsZero()
}
