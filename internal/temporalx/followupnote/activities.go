package followupnote

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/services"
)

type NoteGenerator interface {
	Generate(dbc dbctx.Context, ev domain.InboundEvent, tenant domain.TenantRef) (*services.NoteResult, error)
}

type Activities struct {
	Log   *logger.Logger
	Notes NoteGenerator
}

func (a *Activities) Generate(ctx context.Context, in Input) (Result, error) {
	if a == nil || a.Notes == nil {
		return Result{}, fmt.Errorf("followupnote: activity not configured")
	}
	ev := in.Event.Normalize()
	if err := ev.Validate(); err != nil {
		return Result{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidEvent, err)
	}
	tenant, err := domain.NewTenantRef(ev.Tenant)
	if err != nil {
		return Result{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidEvent, err)
	}

	activity.RecordHeartbeat(ctx, "generating")
	res, err := a.Notes.Generate(dbctx.New(ctx), ev, tenant)
	if err != nil {
		if domain.IsValidationError(err) {
			return Result{}, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidEvent, err)
		}
		if a.Log != nil {
			a.Log.Warn("Follow-up note activity failed", "tenant", tenant.Identifier, "person_id", ev.PersonID.String(), "persist_failed", errors.Is(err, domain.ErrPersistFailed), "error", err)
		}
		return Result{}, err
	}

	out := Result{
		PersonID:       res.Note.PersonID,
		Tenant:         tenant.Identifier,
		Confidence:     res.Note.ConfidenceScore,
		FailedAnalyses: res.Note.FailedAnalyses,
	}
	if res.Record != nil {
		out.NoteID = res.Record.ID.String()
	}
	return out, nil
}
