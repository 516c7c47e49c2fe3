package intake

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

// Producer appends visitor events to the intake stream.
type Producer struct {
	store  streamStore
	stream string
	maxLen int64
}

func NewProducer(rdb goredis.UniversalClient, cfg Config) *Producer {
	cfg = cfg.normalized()
	return &Producer{store: redisStreams{rdb: rdb}, stream: cfg.Stream, maxLen: cfg.MaxLen}
}

// Enqueue validates ev and returns the stream entry id.
func (p *Producer) Enqueue(ctx context.Context, ev domain.InboundEvent) (string, error) {
	ev = ev.Normalize()
	if err := ev.Validate(); err != nil {
		return "", err
	}
	if _, err := domain.NewTenantRef(ev.Tenant); err != nil {
		return "", err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return "", fmt.Errorf("encode event: %w", err)
	}
	id, err := p.store.Add(ctx, p.stream, p.maxLen, map[string]any{
		payloadField: string(b),
		"tenant":     ev.Tenant,
	})
	if err != nil {
		return "", fmt.Errorf("enqueue event: %w", err)
	}
	return id, nil
}
