// Package extract turns a free-text workshop questionnaire into an
// architecture description by asking a language model.
//
// Two backends implement [Extractor]:
//
//   - [OpenAIClient]: any OpenAI-compatible chat-completions API (Groq by default)
//   - [GeminiClient]: Google Gemini through google.golang.org/genai
//
// Both send the same prompts ([SystemPrompt], [UserPrompt]) and parse the
// reply the same way ([Parse]). Use [New] to pick one from configuration:
//
//	ex, err := extract.New(ctx, cfg.LLM, extract.WithLogger(logger))
//	res, err := ex.Extract(ctx, extract.Request{Questionnaire: text})
//	// res.Architecture is decoded, normalized and validated
package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/httputil"
)

// Request is one extraction job.
type Request struct {
	// ClientName fills client_name when the model leaves it empty.
	ClientName string `json:"clientName,omitempty"`
	// Questionnaire is the workshop questionnaire text. Required.
	Questionnaire string `json:"questionnaire"`
	// ExtraNotes is optional context appended to the prompt.
	ExtraNotes string `json:"extraNotes,omitempty"`
}

// Validate rejects requests without questionnaire content.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Questionnaire) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "questionnaire content is required")
	}
	return nil
}

// Result is a successful extraction.
type Result struct {
	Architecture *arch.Architecture
	// Raw is the model's JSON after fence stripping.
	Raw json.RawMessage
}

// Extractor calls a model to produce an architecture.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*Result, error)
	// Provider and Model identify the backend; they are part of cache keys.
	Provider() string
	Model() string
}

type options struct {
	httpClient *http.Client
	logger     *log.Logger
	attempts   int
	delay      time.Duration
}

// Option configures an extraction client.
type Option func(*options)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRetry sets the number of attempts and the initial backoff for
// transient failures.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *options) {
		o.attempts = attempts
		o.delay = delay
	}
}

func buildOptions(cfg config.LLM, opts []Option) options {
	o := options{
		attempts: httputil.DefaultAttempts,
		delay:    httputil.DefaultDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = httputil.DefaultTimeout
		}
		o.httpClient = &http.Client{Timeout: timeout}
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return o
}

// New returns the extractor for cfg.Provider. The API key is required.
func New(ctx context.Context, cfg config.LLM, opts ...Option) (Extractor, error) {
	cfg = cfg.Resolved()
	if err := cfg.RequireKey(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case config.ProviderGroq, config.ProviderOpenAI:
		return NewOpenAIClient(cfg, opts...), nil
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg, opts...)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown llm provider %q", cfg.Provider)
	}
}
