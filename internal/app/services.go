package app

import (
	"context"
	"fmt"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/data/sources"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/followup"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/intake"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/dbctx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime/bus"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/reports"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/services"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/temporalx/followupnote"
)

type Services struct {
	Pipeline  *followup.Pipeline
	Notes     services.NoteService
	Feedback  services.FeedbackService
	Reports   reports.Service
	Events    bus.Bus
	Intake    *intake.Consumer
	Producer  *intake.Producer
	Workflows *followupnote.Starter
}

func wireServices(log *logger.Logger, cfg Config, clients *Clients, r Repos, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	prompts, err := followup.LoadPrompts()
	if err != nil {
		return Services{}, fmt.Errorf("load prompts: %w", err)
	}

	policy := sources.RetryPolicyFromEnv()
	members := sources.NewMemberClient(clients.MemberPool, policy, log)
	var calendar followup.CalendarSource
	if clients.CalendarPool != nil {
		calendar = sources.NewCalendarClient(clients.CalendarPool, policy, log)
	}
	var connect followup.ConnectSource
	if clients.Mongo != nil {
		connect = sources.NewConnectClient(clients.Mongo, cfg.Environment, policy, log)
	}

	aggregator := followup.NewAggregator(members, calendar, connect, log,
		followup.WithConcurrency(cfg.AggregatorConcurrency),
		followup.WithAggregatorMetrics(metrics),
	)
	synthesizer := followup.NewSynthesizer(clients.LLM, prompts, log, followup.WithSynthesizerMetrics(metrics))
	pipeline := followup.NewPipeline(aggregator, synthesizer, log, metrics)

	var events bus.Bus = bus.NewMemoryBus()
	if clients.Redis != nil {
		channel := cfg.EventChannel
		if channel == "" {
			channel = bus.DefaultChannel
		}
		if events, err = bus.NewRedisBus(log, clients.Redis, channel); err != nil {
			return Services{}, fmt.Errorf("init note event bus: %w", err)
		}
	}

	audit := services.NewAuditRecorder(r.Audit, log)
	notes := services.NewNoteService(log, pipeline, r.Notes, members, audit, events, metrics, services.NoteServiceConfig{
		AuthorID:         cfg.NoteAuthorID,
		Model:            clients.LLM.Model(),
		WriteMemberNotes: cfg.WriteMemberNotes,
	})

	out := Services{
		Pipeline: pipeline,
		Notes:    notes,
		Feedback: services.NewFeedbackService(log, r.Notes, r.Feedback, audit, events),
		Reports:  reports.NewService(log, r.Notes, r.Reports, clients.ReportStore, audit, events),
		Events:   events,
	}

	if clients.Redis != nil {
		intakeCfg := intake.ConfigFromEnv()
		out.Producer = intake.NewProducer(clients.Redis, intakeCfg)
		out.Intake = intake.NewConsumer(clients.Redis, intake.HandlerFunc(func(ctx context.Context, ev domain.InboundEvent, tenant domain.TenantRef) error {
			_, err := notes.Generate(dbctx.New(ctx), ev, tenant)
			return err
		}), intakeCfg, log, metrics)
	}
	if clients.Temporal != nil {
		out.Workflows = &followupnote.Starter{Client: clients.Temporal, TaskQueue: clients.TemporalCfg.TaskQueue}
	}
	return out, nil
}
