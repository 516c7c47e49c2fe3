package bus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/realtime"
)

func TestMemoryBusDeliversInOrder(t *testing.T) {
	t.Parallel()

	b := NewMemoryBus()
	var seen []realtime.EventType
	require.NoError(t, b.StartForwarder(context.Background(), func(ev realtime.Event) {
		seen = append(seen, ev.Type)
	}))

	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, realtime.NewEvent(realtime.EventNoteGenerated, "grace", map[string]any{"note_id": "n1"})))
	require.NoError(t, b.Publish(ctx, realtime.NewEvent(realtime.EventFeedbackSubmitted, "grace", nil)))

	assert.Equal(t, []realtime.EventType{realtime.EventNoteGenerated, realtime.EventFeedbackSubmitted}, seen)
	pub := b.Published()
	require.Len(t, pub, 2)
	assert.Equal(t, "n1", pub[0].Data["note_id"])
	assert.False(t, pub[0].At.IsZero())
}

func TestNewRedisBusRequiresClient(t *testing.T) {
	t.Parallel()

	_, err := NewRedisBus(logger.Nop(), nil, "")
	require.Error(t, err)
	_, err = NewRedisBus(nil, nil, "")
	require.Error(t, err)
}
