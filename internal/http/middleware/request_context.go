package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachRequestContext puts trace ids and the caller's request metadata on the
// request context. Auth and tenant middleware fill in the identity later.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		traceID := strings.TrimSpace(c.GetHeader(headerTraceID))
		if traceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				traceID = sc.TraceID().String()
			}
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = c.Request.URL.Path
		}
		ctx := ctxutil.WithTraceData(c.Request.Context(), &ctxutil.TraceData{
			TraceID:   traceID,
			RequestID: reqID,
		})
		ctx = ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
			Method:    c.Request.Method,
			Endpoint:  endpoint,
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}

func requestData(c *gin.Context) *ctxutil.RequestData {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		rd = &ctxutil.RequestData{Method: c.Request.Method, Endpoint: c.Request.URL.Path}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
	}
	return rd
}
