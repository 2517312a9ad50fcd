package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/weekflow/pkg/observability"
)

// logHooks forwards observability events to the CLI logger at debug level.
// Failures are logged at warn level so they show up without --verbose.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l}
}

var (
	_ observability.PipelineHooks = (*logHooks)(nil)
	_ observability.CacheHooks    = (*logHooks)(nil)
	_ observability.SessionHooks  = (*logHooks)(nil)
	_ observability.HTTPHooks     = (*logHooks)(nil)
)

// Pipeline

func (h *logHooks) OnTreeLoaded(_ context.Context, source string, nodeCount int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("tree load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("tree loaded", "source", source, "nodes", nodeCount, "duration", d)
}

func (h *logHooks) OnLayoutStart(_ context.Context, nodeCount int) {
	h.logger.Debug("layout start", "nodes", nodeCount)
}

func (h *logHooks) OnLayoutComplete(_ context.Context, placements int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("layout failed", "err", err)
		return
	}
	h.logger.Debug("layout done", "placements", placements, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("render failed", "formats", formats, "err", err)
		return
	}
	h.logger.Debug("render done", "formats", formats, "duration", d)
}

// Cache

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

// Session

func (h *logHooks) OnSessionStart(_ context.Context, sessionID string) {
	h.logger.Debug("session start", "session", sessionID)
}

func (h *logHooks) OnSessionRestore(_ context.Context, sessionID string, toggles int) {
	h.logger.Debug("session restored", "session", sessionID, "toggles", toggles)
}

func (h *logHooks) OnToggle(_ context.Context, sessionID, nodeID string, err error) {
	if err != nil {
		h.logger.Debug("toggle rejected", "session", sessionID, "node", nodeID, "err", err)
		return
	}
	h.logger.Debug("toggle", "session", sessionID, "node", nodeID)
}

// HTTP

func (h *logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Info("response", "method", method, "path", path, "status", status, "duration", d.Round(time.Microsecond))
}
