package bus

import (
	"context"
	"sync"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, ev realtime.Event) error
	StartForwarder(ctx context.Context, onMsg func(ev realtime.Event)) error
	Close() error
}

// MemoryBus delivers events in-process. Used when Redis is not configured and
// in tests.
type MemoryBus struct {
	mu        sync.Mutex
	published []realtime.Event
	handlers  []func(realtime.Event)
}

func NewMemoryBus() *MemoryBus { return &MemoryBus{} }

func (b *MemoryBus) Publish(ctx context.Context, ev realtime.Event) error {
	b.mu.Lock()
	b.published = append(b.published, ev)
	handlers := append([]func(realtime.Event){}, b.handlers...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(ctx context.Context, onMsg func(ev realtime.Event)) error {
	if onMsg == nil {
		return nil
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, onMsg)
	b.mu.Unlock()
	return nil
}

func (b *MemoryBus) Close() error { return nil }

// Published returns a copy of every event seen so far.
func (b *MemoryBus) Published() []realtime.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]realtime.Event{}, b.published...)
}
