package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCompleter struct {
	errs  []error
	reply string
	calls int
	last  openai.ChatCompletionRequest
}

func (s *scriptedCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.calls++
	s.last = req
	if s.calls <= len(s.errs) {
		return openai.ChatCompletionResponse{}, s.errs[s.calls-1]
	}
	if s.reply == "" {
		return openai.ChatCompletionResponse{}, nil
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: s.reply}}},
	}, nil
}

func testClient(api completer, retries int) *Client {
	return newWithCompleter(nil, api, Config{Model: "test-model", MaxRetries: retries, Backoff: time.Millisecond})
}

func TestGenerateSendsPromptAndTemperature(t *testing.T) {
	t.Parallel()

	api := &scriptedCompleter{reply: `{"ok":true}`}
	out, err := testClient(api, 2).Generate(context.Background(), "hello", 0.3)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, "test-model", api.last.Model)
	assert.InDelta(t, 0.3, api.last.Temperature, 1e-6)
	require.Len(t, api.last.Messages, 1)
	assert.Equal(t, "hello", api.last.Messages[0].Content)
}

func TestGenerateRetriesThrottling(t *testing.T) {
	t.Parallel()

	api := &scriptedCompleter{
		errs: []error{
			&openai.APIError{HTTPStatusCode: 429, Message: "slow down"},
			&openai.RequestError{HTTPStatusCode: 503, Err: errors.New("unavailable")},
		},
		reply: "done",
	}
	out, err := testClient(api, 3).Generate(context.Background(), "p", 0.7)
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, 3, api.calls)
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	api := &scriptedCompleter{errs: []error{&openai.APIError{HTTPStatusCode: 400, Message: "bad"}}}
	_, err := testClient(api, 3).Generate(context.Background(), "p", 0.7)
	require.Error(t, err)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, "400", statusLabel(classify(&openai.APIError{HTTPStatusCode: 400})))
}

func TestGenerateGivesUpAfterMaxRetries(t *testing.T) {
	t.Parallel()

	throttled := &openai.APIError{HTTPStatusCode: 500, Message: "boom"}
	api := &scriptedCompleter{errs: []error{throttled, throttled, throttled}}
	_, err := testClient(api, 2).Generate(context.Background(), "p", 0.7)
	require.Error(t, err)
	assert.Equal(t, 3, api.calls)
}

func TestGenerateEmptyChoices(t *testing.T) {
	t.Parallel()

	_, err := testClient(&scriptedCompleter{}, 0).Generate(context.Background(), "p", 0.7)
	require.Error(t, err)
}

func TestGenerateHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	api := &scriptedCompleter{reply: "x"}
	_, err := testClient(api, 2).Generate(ctx, "p", 0.7)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, api.calls)
}

func TestNewRequiresKey(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{})
	require.Error(t, err)
}
