package extract

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/errors"
)

const sampleArchitecture = `{
  "client_name": "Acme",
  "workshop_date": "2024-05-01",
  "account_structure": {
    "pattern": "petra-multi-ou",
    "master_account": {"name": "Acme Root", "email": "root@acme.example"},
    "security_ou": [{"name": "Log Archive"}, {"name": "Audit"}],
    "workload_ou": [{"name": "Prod"}],
    "networking_ou": []
  },
  "security_baseline": {"identity_center": "true", "mfa_enforcement": true}
}`

func quiet() Option {
	return WithLogger(log.New(io.Discard))
}

func chatServer(t *testing.T, handler func(w http.ResponseWriter, req chatRequest)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		handler(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func reply(w http.ResponseWriter, content string) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{{
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 20},
	})
}

func openAIConfig(url string) config.LLM {
	return config.LLM{
		Provider:    config.ProviderGroq,
		BaseURL:     url + "/v1",
		APIKey:      "test-key",
		Temperature: 0.2,
		MaxTokens:   4000,
	}
}

func TestOpenAIExtract(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, req chatRequest) {
		if req.Model != config.GroqModel {
			t.Errorf("model = %q, want %q", req.Model, config.GroqModel)
		}
		if req.Temperature != 0.2 || req.MaxTokens != 4000 {
			t.Errorf("temperature/max_tokens = %v/%d", req.Temperature, req.MaxTokens)
		}
		if req.ResponseFormat == nil || req.ResponseFormat.Type != "json_object" {
			t.Errorf("response_format = %+v", req.ResponseFormat)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Fatalf("messages = %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[1].Content, "QUESTIONNAIRE DATA:\nWe need three accounts.") {
			t.Errorf("user prompt missing questionnaire:\n%s", req.Messages[1].Content)
		}
		reply(w, "```json\n"+sampleArchitecture+"\n```")
	})

	c := NewOpenAIClient(openAIConfig(srv.URL), WithHTTPClient(srv.Client()), quiet())
	res, err := c.Extract(context.Background(), Request{Questionnaire: "We need three accounts."})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	a := res.Architecture
	if a.ClientName != "Acme" {
		t.Errorf("ClientName = %q", a.ClientName)
	}
	if n := len(a.AccountStructure.SecurityOU); n != 2 {
		t.Errorf("security accounts = %d, want 2", n)
	}
	if !a.SecurityBaseline.IdentityCenter {
		t.Error("quoted boolean should decode to true")
	}
	if strings.Contains(string(res.Raw), "```") {
		t.Errorf("Raw still fenced: %s", res.Raw)
	}
	if c.Provider() != config.ProviderGroq || c.Model() != config.GroqModel {
		t.Errorf("Provider/Model = %s/%s", c.Provider(), c.Model())
	}
}

func TestOpenAIExtractClientNameOverride(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, req chatRequest) {
		reply(w, `{"client_name": "", "account_structure": {"workload_ou": [{"name": "App"}]}}`)
	})
	c := NewOpenAIClient(openAIConfig(srv.URL), WithHTTPClient(srv.Client()), quiet())
	res, err := c.Extract(context.Background(), Request{Questionnaire: "q", ClientName: "Globex"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Architecture.ClientName != "Globex" {
		t.Errorf("ClientName = %q, want Globex", res.Architecture.ClientName)
	}
}

func TestOpenAIExtractEmptyQuestionnaire(t *testing.T) {
	var calls int32
	srv := chatServer(t, func(w http.ResponseWriter, req chatRequest) {
		atomic.AddInt32(&calls, 1)
	})
	c := NewOpenAIClient(openAIConfig(srv.URL), WithHTTPClient(srv.Client()), quiet())
	_, err := c.Extract(context.Background(), Request{Questionnaire: "  \n "})
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
	if calls != 0 {
		t.Error("empty questionnaire should not call the API")
	}
}

func TestOpenAIExtractUnparseable(t *testing.T) {
	long := "Sure! Here is your architecture: " + strings.Repeat("x", 1000)
	srv := chatServer(t, func(w http.ResponseWriter, req chatRequest) {
		reply(w, long)
	})
	c := NewOpenAIClient(openAIConfig(srv.URL), WithHTTPClient(srv.Client()), quiet())
	_, err := c.Extract(context.Background(), Request{Questionnaire: "q"})
	if !errors.Is(err, errors.ErrCodeUpstream) {
		t.Fatalf("error = %v, want UPSTREAM_FAILURE", err)
	}
	if !strings.Contains(err.Error(), long[:500]) || strings.Contains(err.Error(), long[:501]) {
		t.Error("error should carry exactly the first 500 chars of the reply")
	}
}

func TestOpenAIExtractStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantCalls int32
	}{
		{"unauthorized", http.StatusUnauthorized, 1},
		{"rate limited", http.StatusTooManyRequests, 2},
		{"server error", http.StatusInternalServerError, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				http.Error(w, `{"error":"nope"}`, tt.status)
			}))
			defer srv.Close()

			c := NewOpenAIClient(openAIConfig(srv.URL), WithHTTPClient(srv.Client()), WithRetry(2, time.Millisecond), quiet())
			_, err := c.Extract(context.Background(), Request{Questionnaire: "q"})
			if !errors.Is(err, errors.ErrCodeUpstream) {
				t.Errorf("error = %v, want UPSTREAM_FAILURE", err)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestOpenAIExtractNoChoices(t *testing.T) {
	srv := chatServer(t, func(w http.ResponseWriter, req chatRequest) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	})
	c := NewOpenAIClient(openAIConfig(srv.URL), WithHTTPClient(srv.Client()), quiet())
	_, err := c.Extract(context.Background(), Request{Questionnaire: "q"})
	if !errors.Is(err, errors.ErrCodeUpstream) {
		t.Errorf("error = %v, want UPSTREAM_FAILURE", err)
	}
}

func TestGeminiExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/"+config.GeminiModel+":generateContent") {
			t.Errorf("path = %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "application/json") {
			t.Errorf("request should ask for a JSON response: %s", body)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]string{{"text": sampleArchitecture}},
				},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]int{"promptTokenCount": 10, "candidatesTokenCount": 20},
		})
	}))
	defer srv.Close()

	cfg := config.LLM{Provider: config.ProviderGemini, APIKey: "test-key", BaseURL: srv.URL, Temperature: 0.2, MaxTokens: 4000}
	ex, err := New(context.Background(), cfg, WithHTTPClient(srv.Client()), quiet())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if ex.Provider() != config.ProviderGemini {
		t.Errorf("Provider() = %s", ex.Provider())
	}
	res, err := ex.Extract(context.Background(), Request{Questionnaire: "q"})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if res.Architecture.ClientName != "Acme" {
		t.Errorf("ClientName = %q", res.Architecture.ClientName)
	}
}

func TestNew(t *testing.T) {
	ctx := context.Background()

	if _, err := New(ctx, config.LLM{Provider: config.ProviderGroq}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing key error = %v, want INVALID_CONFIG", err)
	}
	if _, err := New(ctx, config.LLM{Provider: "claude", APIKey: "k"}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("unknown provider error = %v, want INVALID_CONFIG", err)
	}

	ex, err := New(ctx, config.LLM{Provider: config.ProviderOpenAI, APIKey: "k"})
	if err != nil {
		t.Fatalf("New(openai) error = %v", err)
	}
	c, ok := ex.(*OpenAIClient)
	if !ok {
		t.Fatalf("New(openai) = %T, want *OpenAIClient", ex)
	}
	if c.endpoint != config.OpenAIBaseURL+"/chat/completions" {
		t.Errorf("endpoint = %s", c.endpoint)
	}
}

func TestUserPrompt(t *testing.T) {
	p := UserPrompt(Request{Questionnaire: " Q1: yes ", ExtraNotes: "prefers eu-west-1", ClientName: "Acme"})
	for _, want := range []string{
		"QUESTIONNAIRE DATA:\nQ1: yes\n",
		"ADDITIONAL CONTEXT:\nprefers eu-west-1\n",
		`The client is named "Acme".`,
		"valid JSON only",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("UserPrompt() missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(UserPrompt(Request{Questionnaire: "q"}), "ADDITIONAL CONTEXT") {
		t.Error("ADDITIONAL CONTEXT should be omitted without notes")
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}```", `{"a":1}`},
		{"  \n{\"a\":1}\n  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse("```json\n```", ""); !errors.Is(err, errors.ErrCodeUpstream) {
		t.Errorf("Parse(empty) error = %v, want UPSTREAM_FAILURE", err)
	}
}

func TestExcerpt(t *testing.T) {
	s := strings.Repeat("a", 499) + "é" + "tail"
	got := excerpt(s)
	if len(got) != 499 {
		t.Errorf("excerpt split a rune: len = %d", len(got))
	}
	if excerpt("short") != "short" {
		t.Error("short strings should be returned whole")
	}
}
