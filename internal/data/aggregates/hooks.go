package aggregates

import (
	"strings"
	"time"

	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// Hooks captures aggregate-level observability events.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}

type logHooks struct {
	log *logger.Logger
}

// NewLogHooks reports aggregate writes through the structured logger.
func NewLogHooks(log *logger.Logger) Hooks {
	if log == nil {
		return noopHooks{}
	}
	return &logHooks{log: log.With("component", "aggregates")}
}

func (h *logHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.log.Debug("aggregate write", "op", strings.TrimSpace(name), "status", strings.TrimSpace(status), "duration_ms", dur.Milliseconds())
}

func (h *logHooks) IncConflict(name string) {
	h.log.Warn("aggregate write conflict", "op", strings.TrimSpace(name))
}
