package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/ctxutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

const testSecret = "s3cret"

func signed(t *testing.T, claims ServiceClaims, secret string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func validClaims(tenant string) ServiceClaims {
	return ServiceClaims{
		Tenant: tenant,
		Email:  "ops@example.org",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "svc-connect",
			Issuer:    "vecapp",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

type seen struct {
	Tenant string `json:"tenant"`
	UserID string `json:"user_id"`
	Method string `json:"method"`
	Path   string `json:"endpoint"`
}

func newTestRouter(auth *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext())
	api := r.Group("/api")
	api.Use(auth.RequireServiceToken(), RequireTenant())
	api.GET("/notes/:id", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		tenant, _ := TenantFrom(c)
		c.JSON(http.StatusOK, seen{Tenant: tenant.Identifier, UserID: rd.UserID, Method: rd.Method, Path: rd.Endpoint})
	})
	return r
}

func do(r http.Handler, token, tenant string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/notes/abc", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if tenant != "" {
		req.Header.Set(HeaderTenantID, tenant)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestTenantFromHeaderWithoutAuth(t *testing.T) {
	r := newTestRouter(NewAuthMiddleware(logger.Nop(), "", ""))

	rec := do(r, "", "tenant_Grace")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got seen
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, seen{Tenant: "grace", Method: http.MethodGet, Path: "/api/notes/:id"}, got)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))

	assert.Equal(t, http.StatusBadRequest, do(r, "", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, "", "bad tenant!").Code)
}

func TestServiceToken(t *testing.T) {
	r := newTestRouter(NewAuthMiddleware(logger.Nop(), testSecret, "vecapp"))

	t.Run("missing", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, "", "grace").Code)
	})
	t.Run("wrong secret", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, do(r, signed(t, validClaims("grace"), "other"), "grace").Code)
	})
	t.Run("expired", func(t *testing.T) {
		c := validClaims("grace")
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		assert.Equal(t, http.StatusUnauthorized, do(r, signed(t, c, testSecret), "grace").Code)
	})
	t.Run("wrong issuer", func(t *testing.T) {
		c := validClaims("grace")
		c.Issuer = "someone-else"
		assert.Equal(t, http.StatusUnauthorized, do(r, signed(t, c, testSecret), "grace").Code)
	})
	t.Run("tenant from claim", func(t *testing.T) {
		rec := do(r, signed(t, validClaims("grace"), testSecret), "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got seen
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "grace", got.Tenant)
		assert.Equal(t, "svc-connect", got.UserID)
	})
	t.Run("header must match claim", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, do(r, signed(t, validClaims("grace"), testSecret), "hope").Code)
		assert.Equal(t, http.StatusOK, do(r, signed(t, validClaims("grace"), testSecret), "tenant_grace").Code)
	})
	t.Run("token without tenant claim uses header", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(r, signed(t, validClaims(""), testSecret), "hope").Code)
	})
}
