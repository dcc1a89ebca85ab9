package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a logger at debug level; failures and
// server errors are logged as warnings.
type LogHooks struct {
	Logger *log.Logger
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ ServerHooks   = LogHooks{}
)

func (h LogHooks) OnBuildStart(_ context.Context, source string) {
	h.Logger.Debug("build started", "source", source)
}

func (h LogHooks) OnBuildComplete(_ context.Context, source string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("build failed", "source", source, "error", err)
		return
	}
	h.Logger.Debug("build complete", "source", source, "nodes", nodeCount, "duration", d)
}

func (h LogHooks) OnLayoutStart(_ context.Context, nodeCount int) {
	h.Logger.Debug("layout started", "nodes", nodeCount)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("layout failed", "error", err)
		return
	}
	h.Logger.Debug("layout complete", "nodes", nodeCount, "duration", d)
}

func (h LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render started", "formats", formats)
}

func (h LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "formats", formats, "error", err)
		return
	}
	h.Logger.Debug("render complete", "formats", formats, "duration", d)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, requestID, method, path string) {
	h.Logger.Debug("request", "id", requestID, "method", method, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, requestID, method, path string, status int, d time.Duration) {
	if status >= 500 {
		h.Logger.Warn("response", "id", requestID, "method", method, "path", path, "status", status, "duration", d)
		return
	}
	h.Logger.Info("response", "id", requestID, "method", method, "path", path, "status", status, "duration", d)
}
