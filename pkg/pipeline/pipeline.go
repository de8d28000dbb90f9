// Package pipeline provides the extract → layout → render pipeline shared by
// the CLI, the HTTP API and the Lambda handler.
//
// # Stages
//
//  1. Extract: questionnaire text → architecture, via a language model
//  2. Layout: architecture → positioned diagram document
//  3. Render: document (and architecture) → drawio, json, svg, tf artifacts
//
// Each stage is cached through a [cache.Cache]; extraction is keyed by
// questionnaire hash and model, layout and render by the architecture's
// canonical digest plus theme and layout settings.
//
// # Usage
//
//	runner := pipeline.NewRunner(extractor, cache, nil, logger)
//	result, err := runner.Execute(ctx, extract.Request{Questionnaire: text}, pipeline.Options{
//	    Formats: []string{pipeline.FormatDrawio, pipeline.FormatSVG},
//	})
//	drawio := result.Artifacts[pipeline.FormatDrawio]
//
// Render an architecture you already have:
//
//	result, err := runner.Render(ctx, architecture, opts)
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/diagram"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/render/layout"
	"github.com/lzdw/lzdraw/pkg/render/styles"
)

// Output formats.
const (
	FormatDrawio    = "drawio"
	FormatJSON      = "json"
	FormatSVG       = "svg"
	FormatTerraform = "tf"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatDrawio

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDrawio:    true,
	FormatJSON:      true,
	FormatSVG:       true,
	FormatTerraform: true,
}

// FormatNames lists the supported formats in display order.
func FormatNames() []string {
	return []string{FormatDrawio, FormatJSON, FormatSVG, FormatTerraform}
}

// Options configures layout and rendering.
type Options struct {
	Theme   string   `json:"theme,omitempty"`
	Formats []string `json:"formats,omitempty"`
	// Layout overrides the default spacing. Nil uses layout.DefaultConfig.
	Layout *layout.Config `json:"layout,omitempty"`
	// Detailed adds emails and purposes to the SVG preview.
	Detailed bool `json:"detailed,omitempty"`
	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Architecture *arch.Architecture
	// Digest is the architecture's canonical SHA-256.
	Digest    string
	Document  *diagram.Document
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Accounts    int
	Nodes       int
	Edges       int
	ExtractTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ExtractHit bool
	LayoutHit  bool
	RenderHit  bool // every requested artifact came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme is registered.
func ValidateTheme(theme string) error {
	if _, ok := styles.Lookup(theme); !ok {
		return errors.New(errors.ErrCodeInvalidTheme, "invalid theme: %q (must be one of: %s)", theme, strings.Join(styles.Names(), ", "))
	}
	return nil
}

// ParseFormats splits a comma-separated format list.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ValidateAndSetDefaults checks options and fills defaults. Duplicate
// formats are dropped. Calling it again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Theme == "" {
		o.Theme = styles.DefaultTheme
	}
	if err := ValidateTheme(o.Theme); err != nil {
		return err
	}

	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	seen := make(map[string]bool, len(o.Formats))
	o.Formats = slices.DeleteFunc(slices.Clone(o.Formats), func(f string) bool {
		dup := seen[f]
		seen[f] = true
		return dup
	})

	if o.Layout == nil {
		cfg := layout.DefaultConfig()
		o.Layout = &cfg
	}
	if err := o.Layout.Validate(); err != nil {
		return err
	}

	o.validated = true
	return nil
}

func (o *Options) theme() styles.Theme {
	t, ok := styles.Lookup(o.Theme)
	if !ok {
		return styles.Default()
	}
	return t
}
