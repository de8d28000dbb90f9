// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks; main decides what
// receives them. The defaults are no-ops, so nothing is recorded unless a
// binary opts in:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks around each stage:
//
//	observability.Pipeline().OnExtractStart(ctx, provider)
//	// ... call the model ...
//	observability.Pipeline().OnExtractComplete(ctx, provider, accounts, duration, err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from the extract → layout → render pipeline.
type PipelineHooks interface {
	OnExtractStart(ctx context.Context, provider string)
	OnExtractComplete(ctx context.Context, provider string, accounts int, duration time.Duration, err error)

	OnLayoutStart(ctx context.Context, theme string, accounts int)
	OnLayoutComplete(ctx context.Context, nodes int, duration time.Duration, err error)

	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives events from pipeline cache lookups. keyType is the
// key prefix: "architecture", "document" or "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from calls to the completion APIs.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	// OnError reports transport failures; non-2xx answers arrive via OnResponse.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores every event. Embed it to implement a subset.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnExtractStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnExtractComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                           {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration, error)          {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                              {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)     {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// hookSet is swapped as a whole so readers never lock.
type hookSet struct {
	pipeline PipelineHooks
	cache    CacheHooks
	http     HTTPHooks
}

var defaults = hookSet{NoopPipelineHooks{}, NoopCacheHooks{}, NoopHTTPHooks{}}

var current atomic.Pointer[hookSet]

func init() { Reset() }

func update(fn func(*hookSet)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	if h != nil {
		update(func(s *hookSet) { s.pipeline = h })
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks registers completion-API hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

func Pipeline() PipelineHooks { return current.Load().pipeline }
func Cache() CacheHooks       { return current.Load().cache }
func HTTP() HTTPHooks         { return current.Load().http }

// Reset restores the no-op hooks.
func Reset() {
	d := defaults
	current.Store(&d)
}
