package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

// Handler generates and stores the note for one event. A *domain.ValidationError
// means the event can never succeed; any other error asks for redelivery.
type Handler interface {
	Handle(ctx context.Context, ev domain.InboundEvent, tenant domain.TenantRef) error
}

type HandlerFunc func(ctx context.Context, ev domain.InboundEvent, tenant domain.TenantRef) error

func (f HandlerFunc) Handle(ctx context.Context, ev domain.InboundEvent, tenant domain.TenantRef) error {
	return f(ctx, ev, tenant)
}

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeInvalid   Outcome = "invalid"
	OutcomeFailed    Outcome = "failed"
)

type Stats struct {
	Received  int64 `json:"received"`
	Processed int64 `json:"processed"`
	Invalid   int64 `json:"invalid"`
	Failed    int64 `json:"failed"`
}

// Consumer reads visitor events from a Redis stream consumer group. Processed
// and invalid messages are acked; failed ones stay pending and are reclaimed
// after ReclaimIdle.
type Consumer struct {
	store   streamStore
	handler Handler
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics

	received  atomic.Int64
	processed atomic.Int64
	invalid   atomic.Int64
	failed    atomic.Int64
}

func NewConsumer(rdb goredis.UniversalClient, handler Handler, cfg Config, baseLog *logger.Logger, metrics *observability.Metrics) *Consumer {
	return newConsumer(redisStreams{rdb: rdb}, handler, cfg, baseLog, metrics)
}

func newConsumer(store streamStore, handler Handler, cfg Config, baseLog *logger.Logger, metrics *observability.Metrics) *Consumer {
	if baseLog == nil {
		baseLog = logger.Nop()
	}
	cfg = cfg.normalized()
	return &Consumer{
		store:   store,
		handler: handler,
		cfg:     cfg,
		log:     baseLog.With("component", "IntakeConsumer", "stream", cfg.Stream, "consumer", cfg.Consumer),
		metrics: metrics,
	}
}

func (c *Consumer) Stats() Stats {
	return Stats{
		Received:  c.received.Load(),
		Processed: c.processed.Load(),
		Invalid:   c.invalid.Load(),
		Failed:    c.failed.Load(),
	}
}

// Run polls until ctx is cancelled. Read errors back off and retry.
func (c *Consumer) Run(ctx context.Context) error {
	if err := c.store.EnsureGroup(ctx, c.cfg.Stream, c.cfg.Group); err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	c.log.Info("Intake consumer started", "group", c.cfg.Group, "concurrency", c.cfg.Concurrency)

	wait := time.Second
	lastReclaim := time.Time{}
	for {
		if ctx.Err() != nil {
			c.log.Info("Intake consumer stopped", "stats", c.Stats())
			return nil
		}
		reclaim := c.cfg.ReclaimIdle > 0 && time.Since(lastReclaim) >= c.cfg.ReclaimIdle
		if reclaim {
			lastReclaim = time.Now()
		}
		if _, err := c.poll(ctx, reclaim); err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.log.Warn("Intake read failed", "error", err, "retry_in", wait.String())
			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
			if wait < 30*time.Second {
				wait *= 2
			}
			continue
		}
		wait = time.Second
	}
}

// poll handles one batch: reclaimed messages first when asked, then new ones.
func (c *Consumer) poll(ctx context.Context, reclaim bool) (int, error) {
	var msgs []goredis.XMessage
	if reclaim {
		stale, err := c.store.Reclaim(ctx, c.cfg.Stream, c.cfg.Group, c.cfg.Consumer, c.cfg.ReclaimIdle, c.cfg.BatchSize)
		if err != nil {
			return 0, fmt.Errorf("reclaim: %w", err)
		}
		if len(stale) > 0 {
			c.log.Info("Reclaimed stale intake messages", "count", len(stale))
		}
		msgs = append(msgs, stale...)
	}
	fresh, err := c.store.Read(ctx, c.cfg.Stream, c.cfg.Group, c.cfg.Consumer, c.cfg.BatchSize, c.cfg.Block)
	if err != nil {
		return 0, fmt.Errorf("read: %w", err)
	}
	msgs = append(msgs, fresh...)
	if len(msgs) == 0 {
		return 0, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for _, m := range msgs {
		g.Go(func() error {
			c.handle(gctx, m)
			return nil
		})
	}
	_ = g.Wait()
	return len(msgs), nil
}

func (c *Consumer) handle(ctx context.Context, msg goredis.XMessage) {
	c.received.Add(1)
	outcome := c.process(ctx, msg)
	c.metrics.IncIntake(string(outcome))

	switch outcome {
	case OutcomeProcessed:
		c.processed.Add(1)
	case OutcomeInvalid:
		c.invalid.Add(1)
	case OutcomeFailed:
		c.failed.Add(1)
		return
	}
	if err := c.store.Ack(ctx, c.cfg.Stream, c.cfg.Group, msg.ID); err != nil {
		c.log.Warn("Intake ack failed", "message_id", msg.ID, "error", err)
	}
}

func (c *Consumer) process(ctx context.Context, msg goredis.XMessage) (outcome Outcome) {
	log := c.log.With("message_id", msg.ID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Intake handler panic", "panic", r)
			outcome = OutcomeFailed
		}
	}()

	ev, tenant, err := Decode(msg.Values)
	if err != nil {
		log.Warn("Dropping invalid intake message", "error", err)
		return OutcomeInvalid
	}
	log = log.With("tenant", tenant.Identifier, "person_id", ev.PersonID.String())

	if err := c.handler.Handle(ctx, ev, tenant); err != nil {
		if domain.IsValidationError(err) {
			log.Warn("Dropping unprocessable intake message", "error", err)
			return OutcomeInvalid
		}
		log.Error("Intake message failed, leaving pending", "error", err)
		return OutcomeFailed
	}
	log.Debug("Intake message processed")
	return OutcomeProcessed
}

// Decode parses and validates a stream entry.
func Decode(values map[string]any) (domain.InboundEvent, domain.TenantRef, error) {
	raw, ok := values[payloadField]
	if !ok {
		return domain.InboundEvent{}, domain.TenantRef{}, domain.NewValidationError(payloadField, "message has no payload")
	}
	var b []byte
	switch v := raw.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return domain.InboundEvent{}, domain.TenantRef{}, domain.NewValidationError(payloadField, fmt.Sprintf("unsupported payload type %T", raw))
	}
	var ev domain.InboundEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return domain.InboundEvent{}, domain.TenantRef{}, domain.NewValidationError(payloadField, "payload is not valid JSON: "+err.Error())
	}
	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return domain.InboundEvent{}, domain.TenantRef{}, err
	}
	tenant, err := domain.NewTenantRef(ev.Tenant)
	if err != nil {
		return domain.InboundEvent{}, domain.TenantRef{}, err
	}
	return ev, tenant, nil
}
