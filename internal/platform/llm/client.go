package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/observability"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/envutil"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/httpx"
	"github.com/Shamoo100/vecapp-ai-dev-sub000/internal/platform/logger"
)

const DefaultModel = "gpt-4o-mini"

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	MaxRetries int
	Timeout    time.Duration
	// Backoff is the first retry wait; it doubles per attempt.
	Backoff time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:     envutil.String("OPENAI_API_KEY", ""),
		BaseURL:    envutil.String("OPENAI_BASE_URL", ""),
		Model:      envutil.String("OPENAI_MODEL", DefaultModel),
		MaxTokens:  envutil.Int("OPENAI_MAX_TOKENS", 1500),
		MaxRetries: envutil.Int("OPENAI_MAX_RETRIES", 3),
		Timeout:    envutil.Seconds("OPENAI_TIMEOUT_SECONDS", 60),
		Backoff:    envutil.Millis("OPENAI_RETRY_BACKOFF_MS", 1000),
	}
}

type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client is the completion endpoint behind every analysis branch.
type Client struct {
	api        completer
	log        *logger.Logger
	model      string
	maxTokens  int
	maxRetries int
	timeout    time.Duration
	backoff    time.Duration
}

func New(log *logger.Logger, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return newWithCompleter(log, openai.NewClientWithConfig(oc), cfg), nil
}

func newWithCompleter(log *logger.Logger, api completer, cfg Config) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}
	return &Client{
		api:        api,
		log:        log.With("client", "LLM", "model", cfg.Model),
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
		timeout:    cfg.Timeout,
		backoff:    cfg.Backoff,
	}
}

func (c *Client) Model() string { return c.model }

// statusError exposes the upstream HTTP status to httpx.IsRetryableError.
type statusError struct {
	code int
	err  error
}

func (e *statusError) Error() string       { return e.err.Error() }
func (e *statusError) Unwrap() error       { return e.err }
func (e *statusError) HTTPStatusCode() int { return e.code }

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return &statusError{code: apiErr.HTTPStatusCode, err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return &statusError{code: reqErr.HTTPStatusCode, err: err}
	}
	return err
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var sc httpx.HTTPStatusCoder
	if errors.As(err, &sc) {
		return strconv.Itoa(sc.HTTPStatusCode())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}

// Generate sends prompt as a single user message and returns the first
// choice's text. Throttling, 5xx and timeouts are retried with doubling
// backoff and jitter.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: float32(temperature),
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	backoff := c.backoff
	start := time.Now()
	metrics := observability.Current()

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				metrics.ObserveLLMRequest(c.model, "empty", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
				return "", fmt.Errorf("llm returned no choices")
			}
			metrics.ObserveLLMRequest(c.model, "ok", time.Since(start), resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
			return resp.Choices[0].Message.Content, nil
		}

		err = classify(err)
		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			metrics.ObserveLLMRequest(c.model, statusLabel(err), time.Since(start), 0, 0)
			return "", fmt.Errorf("llm completion: %w", err)
		}

		sleepFor := httpx.RetryAfterDuration(nil, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("LLM request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}

	return "", fmt.Errorf("unreachable retry loop")
}
