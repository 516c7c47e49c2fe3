package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/apierr"
)

// FromError maps service errors onto HTTP statuses.
func FromError(err error) *apierr.Error {
	var ae *apierr.Error
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	switch {
	case domain.IsValidationError(err), errors.Is(err, domain.ErrInvalidArgument):
		return apierr.BadRequest("validation_error", err)
	case errors.Is(err, domain.ErrNotFound):
		return apierr.NotFound("not_found", err)
	case errors.Is(err, domain.ErrPersistFailed):
		return apierr.New(http.StatusBadGateway, "persist_failed", err)
	case errors.Is(err, domain.ErrNotConfigured):
		return apierr.New(http.StatusServiceUnavailable, "not_configured", err)
	case errors.Is(err, domain.ErrSourceUnavailable):
		return apierr.New(http.StatusServiceUnavailable, "source_unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusGatewayTimeout, "timeout", err)
	default:
		return apierr.From(err, "internal_error")
	}
}

// RespondErr writes err as an error envelope. Internal errors are not echoed
// to the caller.
func RespondErr(c *gin.Context, err error) {
	ae := FromError(err)
	_ = c.Error(err)
	body := APIError{Code: ae.Code, Message: ae.Error()}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		body.Field = ve.Field
		body.Message = ve.Message
	}
	if ae.Status >= http.StatusInternalServerError && ae.Status != http.StatusBadGateway && ae.Status != http.StatusServiceUnavailable {
		body.Message = http.StatusText(ae.Status)
	}
	c.JSON(ae.Status, ErrorEnvelope{Error: body})
}
