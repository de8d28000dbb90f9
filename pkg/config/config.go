// Package config loads lzdraw settings.
//
// Settings come from three layers, later layers winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file: --config, or $XDG_CONFIG_HOME/lzdraw/config.toml
//  3. environment variables, including those from .env.local and .env
//
// A minimal file:
//
//	[llm]
//	provider = "gemini"
//
//	[render]
//	theme = "aws"
//
//	[layout]
//	lane_width = 300
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/render/layout"
	"github.com/lzdw/lzdraw/pkg/render/styles"
)

// LLM providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Cache backends. An empty backend picks redis when an address is set,
// file otherwise.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Store backends. An empty backend picks mongo when a URI is set, memory
// otherwise.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreMongo  = "mongo"
)

// Config is the full application configuration.
type Config struct {
	Server Server        `toml:"server"`
	LLM    LLM           `toml:"llm"`
	Cache  Cache         `toml:"cache"`
	Store  Store         `toml:"store"`
	Render Render        `toml:"render"`
	Layout layout.Config `toml:"layout"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	RequestTimeout  time.Duration `toml:"request_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
}

// LLM configures the architecture extraction model.
type LLM struct {
	Provider    string        `toml:"provider"`
	Model       string        `toml:"model"`
	BaseURL     string        `toml:"base_url"`
	APIKey      string        `toml:"api_key"`
	Temperature float64       `toml:"temperature"`
	MaxTokens   int           `toml:"max_tokens"`
	Timeout     time.Duration `toml:"timeout"`
}

// Cache configures the pipeline cache.
type Cache struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// Store configures the workshop archive used by the HTTP API.
type Store struct {
	Backend string `toml:"backend"`
	// Dir holds one JSON file per record for the file backend. Empty uses
	// the user config directory.
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Render holds rendering defaults.
type Render struct {
	Theme   string   `toml:"theme"`
	Formats []string `toml:"formats"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 15 * time.Second,
			RequestTimeout:  2 * time.Minute,
			MaxBodyBytes:    2 << 20,
		},
		LLM: LLM{
			Provider:    ProviderGroq,
			Temperature: 0.2,
			MaxTokens:   4000,
			Timeout:     90 * time.Second,
		},
		Store: Store{
			Database:   "lzdraw",
			Collection: "architectures",
		},
		Render: Render{
			Theme:   styles.DefaultTheme,
			Formats: []string{"drawio"},
		},
		Layout: layout.DefaultConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/lzdraw/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "lzdraw", "config.toml"), nil
}

// Load builds the configuration. An explicit path must exist; the default
// path is optional. Unknown keys in the file are rejected.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path, explicit); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string, required bool) error {
	if _, err := os.Stat(path); err != nil {
		if !required && os.IsNotExist(err) {
			return nil
		}
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeNotFound, "config file %s not found", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Decode parses TOML text over the defaults and validates the result.
// Environment variables are not consulted.
func Decode(data string) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %s", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values no component can use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}

	if !slices.Contains([]string{ProviderGroq, ProviderOpenAI, ProviderGemini}, c.LLM.Provider) {
		return errors.New(errors.ErrCodeInvalidConfig, "llm.provider %q is not one of groq, openai, gemini", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New(errors.ErrCodeInvalidConfig, "llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "llm.max_tokens must be positive")
	}

	switch c.Cache.Kind() {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q is not one of file, redis, none", c.Cache.Backend)
	}

	switch c.Store.Kind() {
	case StoreMemory, StoreFile:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "store.backend %q is not one of memory, file, mongo", c.Store.Backend)
	}

	if _, ok := styles.Lookup(c.Render.Theme); !ok {
		return errors.New(errors.ErrCodeInvalidTheme, "render.theme %q is not one of %s", c.Render.Theme, strings.Join(styles.Names(), ", "))
	}
	return c.Layout.Validate()
}

// Kind resolves the effective cache backend.
func (c Cache) Kind() string {
	if c.Backend != "" {
		return c.Backend
	}
	if c.RedisAddr != "" {
		return CacheRedis
	}
	return CacheFile
}

// Kind resolves the effective store backend.
func (s Store) Kind() string {
	if s.Backend != "" {
		return s.Backend
	}
	if s.MongoURI != "" {
		return StoreMongo
	}
	return StoreMemory
}
