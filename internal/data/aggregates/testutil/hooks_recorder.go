package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/docvault-backend/internal/data/aggregates"
)

// HooksRecorder keeps every write outcome reported by ExecuteWrite so tests can assert
// how a document write ended (success, transaction, conflict, ...).
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
}

// OperationEvent is one finished write.
type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

// Statuses lists the outcome of each write in order.
func (h *HooksRecorder) Statuses() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, 0, len(h.Operations))
	for _, op := range h.Operations {
		out = append(out, op.Status)
	}
	return out
}

// StatusesFor is Statuses restricted to one write op, e.g. "documents.Reindex".
func (h *HooksRecorder) StatusesFor(name string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, op := range h.Operations {
		if op.Name == name {
			out = append(out, op.Status)
		}
	}
	return out
}

// ConflictsFor counts conflict signals for one write op.
func (h *HooksRecorder) ConflictsFor(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, c := range h.Conflicts {
		if c == name {
			n++
		}
	}
	return n
}
