package intake

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/domain"
)

type fakeStore struct {
	mu       sync.Mutex
	pending  []goredis.XMessage
	stale    []goredis.XMessage
	acked    []string
	added    []map[string]any
	readErr  error
	groupErr error
}

func (f *fakeStore) EnsureGroup(context.Context, string, string) error { return f.groupErr }

func (f *fakeStore) Read(context.Context, string, string, string, int64, time.Duration) ([]goredis.XMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := f.pending
	f.pending = nil
	return out, nil
}

func (f *fakeStore) Reclaim(context.Context, string, string, string, time.Duration, int64) ([]goredis.XMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.stale
	f.stale = nil
	return out, nil
}

func (f *fakeStore) Ack(_ context.Context, _ string, _ string, ids ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, ids...)
	return nil
}

func (f *fakeStore) Add(_ context.Context, _ string, _ int64, values map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added = append(f.added, values)
	return "1-1", nil
}

func validPayload(t *testing.T, personID uuid.UUID) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"tenant":         "tenant_grace",
		"person_id":      personID,
		"fam_id":         uuid.New(),
		"family_context": "Individual",
		"family_history": "new",
	})
	require.NoError(t, err)
	return string(b)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	pid := uuid.New()
	ev, tenant, err := Decode(map[string]any{payloadField: validPayload(t, pid)})
	require.NoError(t, err)
	assert.Equal(t, pid, ev.PersonID)
	assert.Equal(t, domain.FamilyContextIndividual, ev.FamilyContext)
	assert.Equal(t, "grace", tenant.Identifier)

	bad := []map[string]any{
		{},
		{payloadField: 42},
		{payloadField: "{not json"},
		{payloadField: `{"tenant":"grace"}`},
	}
	for _, values := range bad {
		_, _, err := Decode(values)
		assert.True(t, domain.IsValidationError(err), "%v", values)
	}
}

func TestPollAckPolicy(t *testing.T) {
	t.Parallel()

	okID, failID, unknownID := uuid.New(), uuid.New(), uuid.New()
	store := &fakeStore{pending: []goredis.XMessage{
		{ID: "1-0", Values: map[string]any{payloadField: validPayload(t, okID)}},
		{ID: "2-0", Values: map[string]any{payloadField: "garbage"}},
		{ID: "3-0", Values: map[string]any{payloadField: validPayload(t, failID)}},
		{ID: "4-0", Values: map[string]any{payloadField: validPayload(t, unknownID)}},
	}}
	handler := HandlerFunc(func(_ context.Context, ev domain.InboundEvent, _ domain.TenantRef) error {
		switch ev.PersonID {
		case failID:
			return errors.New("llm down")
		case unknownID:
			return domain.NewValidationError("person_id", "visitor profile not found")
		}
		return nil
	})
	c := newConsumer(store, handler, Config{Consumer: "c1", Concurrency: 2}, nil, nil)

	n, err := c.poll(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.ElementsMatch(t, []string{"1-0", "2-0", "4-0"}, store.acked, "failed messages stay pending")
	assert.Equal(t, Stats{Received: 4, Processed: 1, Invalid: 2, Failed: 1}, c.Stats())
}

func TestPollReclaimsStaleMessages(t *testing.T) {
	t.Parallel()

	store := &fakeStore{stale: []goredis.XMessage{
		{ID: "9-0", Values: map[string]any{payloadField: validPayload(t, uuid.New())}},
	}}
	c := newConsumer(store, HandlerFunc(func(context.Context, domain.InboundEvent, domain.TenantRef) error { return nil }), Config{Consumer: "c1"}, nil, nil)

	n, err := c.poll(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"9-0"}, store.acked)
}

func TestPollRecoversHandlerPanics(t *testing.T) {
	t.Parallel()

	store := &fakeStore{pending: []goredis.XMessage{
		{ID: "1-0", Values: map[string]any{payloadField: validPayload(t, uuid.New())}},
	}}
	c := newConsumer(store, HandlerFunc(func(context.Context, domain.InboundEvent, domain.TenantRef) error { panic("boom") }), Config{Consumer: "c1"}, nil, nil)

	_, err := c.poll(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, store.acked)
	assert.Equal(t, int64(1), c.Stats().Failed)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	c := newConsumer(store, HandlerFunc(func(context.Context, domain.InboundEvent, domain.TenantRef) error { return nil }), Config{Consumer: "c1", Block: time.Millisecond}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.NoError(t, c.Run(ctx))
}

func TestRunFailsWithoutGroup(t *testing.T) {
	t.Parallel()

	store := &fakeStore{groupErr: errors.New("NOPERM")}
	c := newConsumer(store, nil, Config{}, nil, nil)
	require.Error(t, c.Run(context.Background()))
}

func TestProducerEnqueue(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	p := &Producer{store: store, stream: DefaultStream}

	id, err := p.Enqueue(context.Background(), domain.InboundEvent{
		Tenant:        "grace",
		PersonID:      uuid.New(),
		FamID:         uuid.New(),
		FamilyContext: "FAMILY",
		FamilyHistory: "existing",
	})
	require.NoError(t, err)
	assert.Equal(t, "1-1", id)
	require.Len(t, store.added, 1)

	ev, _, err := Decode(store.added[0])
	require.NoError(t, err)
	assert.Equal(t, domain.FamilyContextFamily, ev.FamilyContext)

	_, err = p.Enqueue(context.Background(), domain.InboundEvent{Tenant: "grace"})
	assert.True(t, domain.IsValidationError(err))
	assert.Len(t, store.added, 1)
}
