package extract

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"google.golang.org/genai"

	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/httputil"
)

// GeminiClient calls Google Gemini with a JSON response MIME type.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	logger      *log.Logger
	attempts    int
	delay       time.Duration
}

// NewGeminiClient creates a client from cfg. cfg.BaseURL, when set,
// replaces the public Gemini endpoint.
func NewGeminiClient(ctx context.Context, cfg config.LLM, opts ...Option) (*GeminiClient, error) {
	cfg = cfg.Resolved()
	o := buildOptions(cfg, opts)

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "create gemini client")
	}

	return &GeminiClient{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		maxTokens:   int32(cfg.MaxTokens),
		logger:      o.logger,
		attempts:    o.attempts,
		delay:       o.delay,
	}, nil
}

func (c *GeminiClient) Provider() string { return config.ProviderGemini }
func (c *GeminiClient) Model() string    { return c.model }

// Extract sends the questionnaire and parses the JSON reply.
func (c *GeminiClient) Extract(ctx context.Context, req Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
		MaxOutputTokens:   c.maxTokens,
		ResponseMIMEType:  "application/json",
	}
	contents := []*genai.Content{genai.NewContentFromText(UserPrompt(req), genai.RoleUser)}

	var resp *genai.GenerateContentResponse
	err := httputil.Retry(ctx, c.attempts, c.delay, func() error {
		var err error
		resp, err = c.client.Models.GenerateContent(ctx, c.model, contents, gc)
		return classifyGenAI(err)
	})
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeUpstream, err, "gemini request failed")
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New(errors.ErrCodeUpstream, "completion returned no candidates")
	}

	if u := resp.UsageMetadata; u != nil {
		c.logger.Debug("completion received",
			"provider", config.ProviderGemini,
			"model", c.model,
			"prompt_tokens", u.PromptTokenCount,
			"completion_tokens", u.CandidatesTokenCount)
	}

	return Parse(resp.Text(), req.ClientName)
}

// classifyGenAI marks rate limits and server errors as retryable.
func classifyGenAI(err error) error {
	if err == nil {
		return nil
	}
	var (
		apiErr    genai.APIError
		apiErrPtr *genai.APIError
		code      int
	)
	switch {
	case stderrors.As(err, &apiErr):
		code = apiErr.Code
	case stderrors.As(err, &apiErrPtr):
		code = apiErrPtr.Code
	}
	if code == http.StatusTooManyRequests || code >= 500 {
		return httputil.Retryable(err)
	}
	return err
}

var _ Extractor = (*GeminiClient)(nil)
