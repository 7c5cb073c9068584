package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"mobsf-sidecar/internal/domain"
)

const (
	DefaultModel   = "gpt-4o"
	defaultTimeout = 2 * time.Minute
)

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("openai: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Err
}

// Client is a focused chat completions client on top of the official SDK.
// Any OpenAI-compatible endpoint can be targeted with WithBaseURL.
type Client struct {
	sdk     oai.Client
	baseURL string
	timeout time.Duration
}

type clientConfig struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

type Option func(*clientConfig)

func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout (default: 2 minutes).
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a Client authenticated with apiKey. SDK retries are
// disabled: a failed completion surfaces immediately.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai: API key must not be empty")
	}
	cfg := clientConfig{timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.timeout),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.httpClient))
	}

	return &Client{
		sdk:     oai.NewClient(reqOpts...),
		baseURL: cfg.baseURL,
		timeout: cfg.timeout,
	}, nil
}

// Chat sends messages to the Chat Completions endpoint and returns the
// content of the first choice unmodified.
func (c *Client) Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error) {
	if model == "" {
		return "", errors.New("openai: model must not be empty")
	}

	completion, err := c.sdk.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model:    model,
		Messages: toSDKMessages(messages),
	})
	if err != nil {
		var apiErr *oai.Error
		if errors.As(err, &apiErr) {
			return "", &HTTPStatusError{StatusCode: apiErr.StatusCode, Body: apiErr.Error(), Err: err}
		}
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", errors.New("openai: no choices in response")
	}
	return completion.Choices[0].Message.Content, nil
}

// toSDKMessages converts normalized messages to the SDK union type. Roles the
// API does not accept are sent as user messages.
func toSDKMessages(msgs []domain.ChatMessage) []oai.ChatCompletionMessageParamUnion {
	out := make([]oai.ChatCompletionMessageParamUnion, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case domain.RoleSystem:
			out[i] = oai.SystemMessage(m.Content)
		case domain.RoleDeveloper:
			out[i] = oai.DeveloperMessage(m.Content)
		case domain.RoleAssistant:
			out[i] = oai.AssistantMessage(m.Content)
		default:
			out[i] = oai.UserMessage(m.Content)
		}
	}
	return out
}
