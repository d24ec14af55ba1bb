package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("documents.CreateDocument", "success", 5*time.Millisecond)
	h.ObserveOperation("documents.Reindex", "success", 10*time.Millisecond)
	h.ObserveOperation("documents.Reindex", "conflict", time.Millisecond)
	h.IncConflict("documents.Reindex")

	if got := h.Statuses(); len(got) != 3 || got[2] != "conflict" {
		t.Fatalf("unexpected statuses: %+v", got)
	}
	if got := h.StatusesFor("documents.Reindex"); len(got) != 2 || got[0] != "success" {
		t.Fatalf("reindex statuses: %+v", got)
	}
	if got := h.StatusesFor("documents.RollbackToVersion"); len(got) != 0 {
		t.Fatalf("unexpected rollback statuses: %+v", got)
	}
	if h.ConflictsFor("documents.Reindex") != 1 || h.ConflictsFor("documents.CreateDocument") != 0 {
		t.Fatalf("unexpected conflicts: %+v", h.Conflicts)
	}
}
