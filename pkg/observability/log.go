package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every hook event to a logger at debug level. Failures are
// logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger. A nil logger uses log.Default().
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnExtractStart(_ context.Context, provider string) {
	h.logger.Debug("extract start", "provider", provider)
}

func (h *LogHooks) OnExtractComplete(_ context.Context, provider string, accounts int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("extract failed", "provider", provider, "duration", d, "err", err)
		return
	}
	h.logger.Debug("extract done", "provider", provider, "accounts", accounts, "duration", d)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, theme string, accounts int) {
	h.logger.Debug("layout start", "theme", theme, "accounts", accounts)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, nodes int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "duration", d, "err", err)
		return
	}
	h.logger.Debug("layout done", "nodes", nodes, "duration", d)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "duration", d, "err", err)
		return
	}
	h.logger.Debug("render done", "formats", formats, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
