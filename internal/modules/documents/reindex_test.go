package documents

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/docvault-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/docvault-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/docvault-backend/internal/data/repos/testutil"
	"github.com/yungbote/docvault-backend/internal/modules/indexing"
	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
)

func (f *fixture) reindexer(t *testing.T, runner aggregates.TxRunner, hooks aggregates.Hooks) *Reindexer {
	t.Helper()
	log := testutil.Logger(t)
	return NewReindexer(ReindexerDeps{
		DB:        f.db,
		Log:       log,
		Runner:    runner,
		Hooks:     hooks,
		Documents: f.docs,
		Versions:  f.versions,
		Chunks:    f.chunks,
		Adapter:   indexing.NewAdapter(log, indexing.NewSentenceChunker(indexing.SentenceChunkerConfig{SentencesPerChunk: 1}), nil),
	})
}

func TestReindexCommitFailureLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.create(t, "Keep me. Keep me too.")
	chunksBefore := f.chunkCount(t, doc.ID)

	hooks := &aggtest.HooksRecorder{}
	runner := &aggtest.InjectedTxRunner{
		Inner:      aggregates.NewGormTxRunner(f.db),
		FailCommit: errors.New("connection reset during commit"),
	}
	_, err := f.reindexer(t, runner, hooks).Reindex(ctx, ReindexInput{
		DocumentID:    doc.ID,
		Mode:          ModeUpload,
		Content:       "Gone.",
		ChangeSummary: "should not stick",
	})
	if !apperrors.IsCode(err, apperrors.CodeTransaction) {
		t.Fatalf("expected transaction error, got %v", err)
	}
	if runner.RollbackCalls != 1 || runner.CommitCalls != 0 {
		t.Fatalf("runner counters: commit=%d rollback=%d", runner.CommitCalls, runner.RollbackCalls)
	}
	if got := hooks.StatusesFor("documents.Reindex"); len(got) != 1 || got[0] != string(apperrors.CodeTransaction) {
		t.Fatalf("hook statuses: %v", got)
	}
	if hooks.ConflictsFor("documents.Reindex") != 0 {
		t.Fatalf("commit failure reported as conflict")
	}

	after := f.reload(t, doc.ID)
	if after.Content != doc.Content || after.Metadata.Version != "1.0" {
		t.Fatalf("document changed: %q %q", after.Content, after.Metadata.Version)
	}
	if n := f.chunkCount(t, doc.ID); n != chunksBefore {
		t.Fatalf("chunks changed: %d -> %d", chunksBefore, n)
	}
	if n := f.versionCount(t, doc.ID); n != 0 {
		t.Fatalf("snapshots written: %d", n)
	}
}

func TestReindexWithoutEmbedderStoresNullVectors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.create(t, "One.")

	hooks := &aggtest.HooksRecorder{}
	n, err := f.reindexer(t, nil, hooks).Reindex(ctx, ReindexInput{
		DocumentID:    doc.ID,
		Mode:          ModeUpload,
		Content:       "Alpha. Beta. Gamma.",
		ChangeSummary: "split",
	})
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if n != 3 {
		t.Fatalf("chunk count: %d", n)
	}
	chunks, err := f.uc.GetDocumentChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetDocumentChunks: %v", err)
	}
	for _, c := range chunks {
		if c.Embedding != nil {
			t.Fatalf("chunk %d should have a NULL embedding", c.ChunkIndex)
		}
	}
	if got := hooks.Statuses(); len(got) != 1 || got[0] != "success" {
		t.Fatalf("hook statuses: %v", got)
	}
}

func TestReindexInputValidation(t *testing.T) {
	f := newFixture(t)
	r := f.reindexer(t, nil, nil)
	ctx := context.Background()
	doc := f.create(t, "One.")

	cases := []struct {
		name string
		in   ReindexInput
		code apperrors.Code
	}{
		{"nil document", ReindexInput{Mode: ModeRefresh}, apperrors.CodeValidation},
		{"unknown mode", ReindexInput{DocumentID: doc.ID, Mode: "merge"}, apperrors.CodeValidation},
		{"upload without summary", ReindexInput{DocumentID: doc.ID, Mode: ModeUpload, Content: "x"}, apperrors.CodeValidation},
		{"rollback without version", ReindexInput{DocumentID: doc.ID, Mode: ModeRollback}, apperrors.CodeValidation},
		{"rollback unknown version", ReindexInput{DocumentID: doc.ID, Mode: ModeRollback, VersionID: uuid.New()}, apperrors.CodeNotFound},
	}
	for _, tc := range cases {
		if _, err := r.Reindex(ctx, tc.in); !apperrors.IsCode(err, tc.code) {
			t.Fatalf("%s: expected %s, got %v", tc.name, tc.code, err)
		}
	}
}
