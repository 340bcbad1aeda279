package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// charmbracelet logger.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks writing to logger, or the default logger when nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger}
}

// Register installs h for every event category.
func (h *LogHooks) Register() {
	SetRenderHooks(h)
	SetCacheHooks(h)
	SetSurveyHooks(h)
}

func (h *LogHooks) OnRenderStart(_ context.Context, kind string) {
	h.Logger.Debug("render start", "kind", kind)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, kind string, size int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("render failed", "kind", kind, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("render done", "kind", kind, "bytes", size, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnResponse(_ context.Context, questionID, userID, choice string) {
	h.Logger.Info("response recorded", "question", questionID, "user", userID, "choice", choice)
}

func (h *LogHooks) OnDuplicate(_ context.Context, questionID, userID string) {
	h.Logger.Info("duplicate response rejected", "question", questionID, "user", userID)
}
