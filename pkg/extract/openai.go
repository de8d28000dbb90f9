package extract

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lzdw/lzdraw/pkg/buildinfo"
	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/httputil"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// OpenAIClient calls an OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	http        *httputil.Client
	provider    string
	endpoint    string
	model       string
	temperature float64
	maxTokens   int
	logger      *log.Logger
	attempts    int
	delay       time.Duration
}

// NewOpenAIClient creates a client from cfg. Model and base URL default to
// the provider's; see [config.LLM.Resolved].
func NewOpenAIClient(cfg config.LLM, opts ...Option) *OpenAIClient {
	cfg = cfg.Resolved()
	o := buildOptions(cfg, opts)
	return &OpenAIClient{
		http: httputil.NewClient(o.httpClient, map[string]string{
			"Authorization": "Bearer " + cfg.APIKey,
			"User-Agent":    buildinfo.UserAgent(),
		}),
		provider:    cfg.Provider,
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      o.logger,
		attempts:    o.attempts,
		delay:       o.delay,
	}
}

func (c *OpenAIClient) Provider() string { return c.provider }
func (c *OpenAIClient) Model() string    { return c.model }

// Extract sends the questionnaire and parses the JSON reply.
func (c *OpenAIClient) Extract(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: UserPrompt(req)},
		},
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}

	var resp chatResponse
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		resp = chatResponse{}
		return c.http.PostJSON(ctx, c.endpoint, payload, &resp)
	})
	if err != nil {
		return nil, upstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New(errors.ErrCodeUpstream, "completion returned no choices")
	}

	c.logger.Debug("completion received",
		"provider", c.provider,
		"model", c.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"finish_reason", resp.Choices[0].FinishReason)

	return Parse(resp.Choices[0].Message.Content, req.ClientName)
}

// upstreamError maps transport and status failures to UPSTREAM_FAILURE.
// Cancellation is passed through unchanged.
func upstreamError(err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var se *httputil.StatusError
	if stderrors.As(err, &se) {
		return errors.Wrap(errors.ErrCodeUpstream, err, "API request failed: %d", se.StatusCode)
	}
	return errors.Wrap(errors.ErrCodeUpstream, err, "API request failed")
}

var _ Extractor = (*OpenAIClient)(nil)
