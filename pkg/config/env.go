package config

import (
	"strconv"
	"strings"
	"time"
)

// Environment variables read by Load.
const (
	EnvAddr          = "LZDRAW_ADDR"
	EnvPort          = "PORT"
	EnvProvider      = "LZDRAW_LLM_PROVIDER"
	EnvModel         = "LZDRAW_LLM_MODEL"
	EnvBaseURL       = "LZDRAW_LLM_BASE_URL"
	EnvGroqKey       = "GROQ_API_KEY"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvGoogleKey     = "GOOGLE_API_KEY"
	EnvCacheBackend  = "LZDRAW_CACHE_BACKEND"
	EnvCacheDir      = "LZDRAW_CACHE_DIR"
	EnvRedisAddr     = "LZDRAW_REDIS_ADDR"
	EnvRedisPassword = "LZDRAW_REDIS_PASSWORD"
	EnvRedisDB       = "LZDRAW_REDIS_DB"
	EnvStoreBackend  = "LZDRAW_STORE_BACKEND"
	EnvStoreDir      = "LZDRAW_STORE_DIR"
	EnvMongoURI      = "LZDRAW_MONGO_URI"
	EnvTheme         = "LZDRAW_THEME"
	EnvLLMTimeout    = "LZDRAW_LLM_TIMEOUT"
)

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if port, ok := lookup(EnvPort); ok && port != "" {
		c.Server.Addr = ":" + port
	}
	str(EnvAddr, &c.Server.Addr)

	str(EnvProvider, &c.LLM.Provider)
	c.LLM.Provider = strings.ToLower(c.LLM.Provider)
	str(EnvModel, &c.LLM.Model)
	str(EnvBaseURL, &c.LLM.BaseURL)
	if c.LLM.APIKey == "" {
		for _, key := range apiKeyEnv(c.LLM.Provider) {
			str(key, &c.LLM.APIKey)
			if c.LLM.APIKey != "" {
				break
			}
		}
	}
	if v, ok := lookup(EnvLLMTimeout); ok {
		if d, err := time.ParseDuration(v); err == nil {
			c.LLM.Timeout = d
		}
	}

	str(EnvCacheBackend, &c.Cache.Backend)
	str(EnvCacheDir, &c.Cache.Dir)
	str(EnvRedisAddr, &c.Cache.RedisAddr)
	str(EnvRedisPassword, &c.Cache.RedisPassword)
	if v, ok := lookup(EnvRedisDB); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = n
		}
	}

	str(EnvStoreBackend, &c.Store.Backend)
	str(EnvStoreDir, &c.Store.Dir)
	str(EnvMongoURI, &c.Store.MongoURI)

	str(EnvTheme, &c.Render.Theme)
}

// apiKeyEnv lists the variables holding a provider's key, in priority order.
func apiKeyEnv(provider string) []string {
	switch provider {
	case ProviderGemini:
		return []string{EnvGeminiKey, EnvGoogleKey}
	case ProviderOpenAI:
		return []string{EnvOpenAIKey}
	default:
		return []string{EnvGroqKey}
	}
}
