// Package cli implements the lzdraw command-line interface.
//
// lzdraw turns Landing Zone Design Workshop output into AWS landing zone
// diagrams. The CLI is built using cobra and logs through charmbracelet/log;
// the logger travels in the command context.
//
// # Commands
//
//   - render: architecture JSON/YAML → drawio, svg, json, tf
//   - generate: questionnaire text → architecture (via a language model) → outputs
//   - validate: check an architecture file and summarize it
//   - serve: run the HTTP API
//   - cache: inspect or clear the pipeline cache
//
// Every command accepts --config (TOML) and --verbose (-v).
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/lzdw/lzdraw/pkg/buildinfo"
	"github.com/lzdw/lzdraw/pkg/cache"
	"github.com/lzdw/lzdraw/pkg/config"
	"github.com/lzdw/lzdraw/pkg/extract"
	"github.com/lzdw/lzdraw/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "lzdraw"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        *config.Config
}

// New creates a CLI that logs to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// settings returns the loaded configuration, or the defaults before the root
// command's pre-run has loaded it.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		cfg := config.Default()
		c.cfg = &cfg
	}
	return c.cfg
}

// newExtractor creates the configured extraction client.
func (c *CLI) newExtractor(ctx context.Context) (extract.Extractor, error) {
	return extract.New(ctx, c.settings().LLM, extract.WithLogger(c.Logger))
}

// newRunner creates a pipeline runner. A nil extractor limits it to
// rendering, so render works without an API key.
func (c *CLI) newRunner(ctx context.Context, noCache bool, ex extract.Extractor) *pipeline.Runner {
	ch := c.openCache(ctx, noCache)
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Version+":")
	return pipeline.NewRunner(ex, ch, keyer, c.Logger)
}

// openCache opens the configured cache. Failures degrade to no caching.
func (c *CLI) openCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	ch, err := cache.Open(ctx, c.settings().Cache)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return ch
}

// pipelineOptions fills unset flags from the configuration.
func (c *CLI) pipelineOptions(theme, formats string) pipeline.Options {
	cfg := c.settings()
	opts := pipeline.Options{
		Theme:   theme,
		Formats: pipeline.ParseFormats(formats),
		Layout:  &cfg.Layout,
		Logger:  c.Logger,
	}
	if opts.Theme == "" {
		opts.Theme = cfg.Render.Theme
	}
	if len(opts.Formats) == 0 {
		opts.Formats = cfg.Render.Formats
	}
	return opts
}

// formatsUsage lists formats for flag help.
func formatsUsage() string {
	return strings.Join(pipeline.FormatNames(), ", ")
}
