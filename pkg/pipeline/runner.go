package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/cache"
	"github.com/lzdw/lzdraw/pkg/diagram"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/extract"
	"github.com/lzdw/lzdraw/pkg/observability"
	"github.com/lzdw/lzdraw/pkg/render/layout"
)

// Runner executes pipeline stages with caching.
//
// The Runner holds no per-run state; multiple goroutines can use the same
// Runner with different options.
type Runner struct {
	Extractor extract.Extractor
	Cache     cache.Cache
	Keyer     cache.Keyer
	Logger    *log.Logger
}

// NewRunner creates a runner. A nil extractor limits the runner to
// rendering; a nil cache disables caching; a nil keyer uses DefaultKeyer.
func NewRunner(ex extract.Extractor, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Extractor: ex, Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs extract → layout → render.
func (r *Runner) Execute(ctx context.Context, req extract.Request, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	a, hit, err := r.Extract(ctx, req, opts.Refresh)
	if err != nil {
		return nil, err
	}
	extractTime := time.Since(start)

	result, err := r.Render(ctx, a, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.ExtractTime = extractTime
	result.CacheInfo.ExtractHit = hit
	return result, nil
}

// Extract turns a questionnaire into an architecture, using the cache
// unless refresh is set.
func (r *Runner) Extract(ctx context.Context, req extract.Request, refresh bool) (*arch.Architecture, bool, error) {
	if err := req.Validate(); err != nil {
		return nil, false, err
	}
	if r.Extractor == nil {
		return nil, false, errors.New(errors.ErrCodeUnsupported, "no extraction backend configured")
	}

	key := r.Keyer.ArchitectureKey(cache.HashString(req.Questionnaire), cache.ArchitectureKeyOpts{
		Provider:   r.Extractor.Provider(),
		Model:      r.Extractor.Model(),
		ClientName: req.ClientName,
		NotesHash:  cache.HashString(req.ExtraNotes),
	})

	if !refresh {
		if data, ok := r.cacheGet(ctx, cache.KeyArchitecture, key); ok {
			if a, err := arch.Decode(data); err == nil {
				r.Logger.Debug("architecture from cache", "client", a.Client())
				return a, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	provider := r.Extractor.Provider()
	hooks.OnExtractStart(ctx, provider)
	start := time.Now()

	res, err := r.Extractor.Extract(ctx, req)
	if err != nil {
		hooks.OnExtractComplete(ctx, provider, 0, time.Since(start), err)
		return nil, false, err
	}
	a := res.Architecture
	accounts := countAccounts(a)
	hooks.OnExtractComplete(ctx, provider, accounts, time.Since(start), nil)

	r.Logger.Info("extracted architecture",
		"client", a.Client(),
		"accounts", accounts,
		"provider", provider,
		"duration", time.Since(start))

	if data, err := json.Marshal(a); err == nil {
		r.cacheSet(ctx, cache.KeyArchitecture, key, data, cache.TTLArchitecture)
	}
	return a, false, nil
}

// Layout computes the diagram document for a.
func (r *Runner) Layout(ctx context.Context, a *arch.Architecture, opts Options) (*diagram.Document, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	if err := a.Validate(); err != nil {
		return nil, false, err
	}
	digest, err := a.Digest()
	if err != nil {
		return nil, false, err
	}
	key := r.Keyer.DocumentKey(digest, cache.DocumentKeyOpts{Theme: opts.Theme, ConfigHash: configHash(opts)})

	if !opts.Refresh {
		if data, ok := r.cacheGet(ctx, cache.KeyDocument, key); ok {
			if doc, err := diagram.ReadJSON(bytes.NewReader(data)); err == nil {
				return doc, true, nil
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Theme, countAccounts(a))
	start := time.Now()

	doc, err := layout.Render(a, layout.WithTheme(opts.theme()), layout.WithConfig(*opts.Layout))
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
		return nil, false, err
	}
	hooks.OnLayoutComplete(ctx, len(doc.Nodes), time.Since(start), nil)

	if data, err := diagram.MarshalDocument(doc); err == nil {
		r.cacheSet(ctx, cache.KeyDocument, key, data, cache.TTLDocument)
	}
	return doc, false, nil
}

// Render lays out a and renders every requested format.
func (r *Runner) Render(ctx context.Context, a *arch.Architecture, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	digest, err := a.Digest()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Architecture: a,
		Digest:       digest,
		Stats:        Stats{Accounts: countAccounts(a)},
	}

	layoutStart := time.Now()
	doc, layoutHit, err := r.Layout(ctx, a, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Nodes = len(doc.Nodes)
	result.Stats.Edges = len(doc.Edges)
	result.CacheInfo.LayoutHit = layoutHit

	renderStart := time.Now()
	artifacts, renderHit, err := r.renderArtifacts(ctx, a, doc, digest, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"client", a.Client(),
		"formats", opts.Formats,
		"nodes", result.Stats.Nodes,
		"duration", result.Stats.LayoutTime+result.Stats.RenderTime)
	return result, nil
}

func (r *Runner) renderArtifacts(ctx context.Context, a *arch.Architecture, doc *diagram.Document, digest string, opts Options) (map[string][]byte, bool, error) {
	keys := make(map[string]string, len(opts.Formats))
	for _, f := range opts.Formats {
		keys[f] = r.Keyer.ArtifactKey(digest, cache.ArtifactKeyOpts{
			Format:     f,
			Theme:      opts.Theme,
			ConfigHash: configHash(opts),
			Detailed:   opts.Detailed,
		})
	}

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, f := range opts.Formats {
			data, ok := r.cacheGet(ctx, cache.KeyArtifact, keys[f])
			if !ok {
				break
			}
			artifacts[f] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	artifacts, err := renderAll(ctx, a, doc, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for f, data := range artifacts {
		r.cacheSet(ctx, cache.KeyArtifact, keys[f], data, cache.TTLArtifact)
	}
	return artifacts, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cacheGet(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

func (r *Runner) cacheSet(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func configHash(opts Options) string {
	data, _ := json.Marshal(opts.Layout)
	return cache.Hash(data)
}

func countAccounts(a *arch.Architecture) int {
	n := 0
	for _, c := range arch.Categories() {
		n += len(a.AccountStructure.OU(c))
	}
	return n
}
