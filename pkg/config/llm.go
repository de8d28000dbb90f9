package config

import "github.com/lzdw/lzdraw/pkg/errors"

// Provider defaults.
const (
	GroqBaseURL   = "https://api.groq.com/openai/v1"
	GroqModel     = "llama-3.3-70b-versatile"
	OpenAIBaseURL = "https://api.openai.com/v1"
	OpenAIModel   = "gpt-4o-mini"
	GeminiModel   = "gemini-2.0-flash"
)

// Resolved returns l with the provider's model and base URL filled in.
func (l LLM) Resolved() LLM {
	switch l.Provider {
	case ProviderGemini:
		if l.Model == "" {
			l.Model = GeminiModel
		}
	case ProviderOpenAI:
		if l.Model == "" {
			l.Model = OpenAIModel
		}
		if l.BaseURL == "" {
			l.BaseURL = OpenAIBaseURL
		}
	default:
		if l.Model == "" {
			l.Model = GroqModel
		}
		if l.BaseURL == "" {
			l.BaseURL = GroqBaseURL
		}
	}
	return l
}

// RequireKey fails when no API key is configured. Only commands that call
// the model need one.
func (l LLM) RequireKey() error {
	if l.APIKey != "" {
		return nil
	}
	return errors.New(errors.ErrCodeInvalidConfig, "no API key for provider %s: set llm.api_key or %s", l.Provider, apiKeyEnv(l.Provider)[0])
}
