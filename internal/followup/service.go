package followup

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

// Pipeline runs resolve, aggregate, assemble and synthesize for one event.
type Pipeline struct {
	aggregator  *Aggregator
	synthesizer *Synthesizer
	log         *logger.Logger
	metrics     *observability.Metrics
}

func NewPipeline(aggregator *Aggregator, synthesizer *Synthesizer, baseLog *logger.Logger, metrics *observability.Metrics) *Pipeline {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	return &Pipeline{
		aggregator:  aggregator,
		synthesizer: synthesizer,
		log:         baseLog.With("service", "FollowupPipeline"),
		metrics:     metrics,
	}
}

// AggregateAndSynthesize returns a note for the event. A *domain.ValidationError
// means a malformed event, a tenant mismatch or an unknown visitor; an error
// wrapping domain.ErrSourceUnavailable means the visitor profile could not be
// read and the event should be retried.
func (p *Pipeline) AggregateAndSynthesize(ctx context.Context, ev domain.InboundEvent, tenant domain.TenantRef) (domain.GeneratedNote, error) {
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "followup.AggregateAndSynthesize")
	defer span.End()

	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return p.reject(span, "invalid", start, err)
	}
	if tenant.IsZero() {
		ref, err := domain.NewTenantRef(ev.Tenant)
		if err != nil {
			return p.reject(span, "invalid", start, err)
		}
		tenant = ref
	} else if ref, err := domain.NewTenantRef(ev.Tenant); err != nil || ref != tenant {
		return p.reject(span, "invalid", start, domain.NewValidationError("tenant", "event tenant does not match request tenant"))
	}

	sc := Resolve(ev)
	span.SetAttributes(
		attribute.String("followup.tenant", tenant.Identifier),
		attribute.String("followup.scenario", string(sc.Type)),
		attribute.Int("followup.related_ids", len(sc.RelatedIDs)),
	)
	log := p.log.With("tenant", tenant.Identifier, "scenario", string(sc.Type), "person_id", ev.PersonID.String())

	vc, err := p.aggregator.Aggregate(ctx, sc, tenant)
	if err != nil {
		log.Warn("Context assembly rejected", "error", err)
		return p.reject(span, string(sc.Type), start, err)
	}

	note := p.synthesizer.Synthesize(ctx, vc)
	span.SetAttributes(
		attribute.Float64("followup.confidence", note.ConfidenceScore),
		attribute.StringSlice("followup.failed_analyses", note.FailedAnalyses),
	)
	p.metrics.ObservePipeline(string(sc.Type), "ok", time.Since(start), note.ConfidenceScore)
	log.Info("Follow-up note generated",
		"confidence", note.ConfidenceScore,
		"failed_analyses", note.FailedAnalyses,
		"data_sources", len(note.DataSourcesUsed),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return note, nil
}

func (p *Pipeline) reject(span trace.Span, scenario string, start time.Time, err error) (domain.GeneratedNote, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.metrics.ObservePipeline(scenario, "rejected", time.Since(start), 0)
	return domain.GeneratedNote{}, err
}
