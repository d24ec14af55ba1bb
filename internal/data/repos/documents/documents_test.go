package documents

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/yungbote/docvault-backend/internal/data/repos/testutil"
	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/dbctx"
	"gorm.io/datatypes"
)

func TestDocumentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDocumentRepo(db, testutil.Logger(t))

	doc := &types.Document{
		Title:   "Handbook",
		Source:  "upload",
		Content: "hello",
		Metadata: types.DocumentMetadata{
			Version: "1.0",
			Extra:   map[string]any{"department": "hr"},
		},
	}
	if _, err := repo.Create(dbc, doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if doc.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}

	got, err := repo.LockByID(dbc, doc.ID)
	if err != nil {
		t.Fatalf("LockByID: %v", err)
	}
	if got == nil || got.Content != "hello" || got.Metadata.Version != "1.0" {
		t.Fatalf("LockByID: unexpected %+v", got)
	}
	if got.Metadata.Extra["department"] != "hr" {
		t.Fatalf("expected extra metadata to round trip, got %+v", got.Metadata.Extra)
	}

	meta := got.Metadata.Clone()
	meta.Version = "1.1"
	if err := repo.UpdateContent(dbc, doc.ID, "hello world", meta); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	got, err = repo.GetByID(dbc, doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Content != "hello world" || got.CurrentVersion() != "1.1" {
		t.Fatalf("GetByID after update: %+v", got)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID(missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing document")
	}
	if err := repo.UpdateContent(dbc, uuid.New(), "x", meta); err == nil {
		t.Fatalf("expected error updating missing document")
	}

	ids, err := repo.ListIDs(dbc)
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != doc.ID {
		t.Fatalf("ListIDs: got %v", ids)
	}
}

func TestDocumentVersionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDocumentVersionRepo(db, testutil.Logger(t))

	doc := testutil.SeedDocument(t, ctx, tx, "Policy", "v1 text", "1.0")

	if ok, err := repo.HasBaseline(dbc, doc.ID); err != nil || ok {
		t.Fatalf("HasBaseline(empty): ok=%v err=%v", ok, err)
	}

	base := &types.DocumentVersion{
		DocumentID:    doc.ID,
		Version:       "1.0",
		ChangeSummary: types.BaselineChangeSummary,
		Content:       doc.Content,
		Metadata:      doc.Metadata.Clone(),
		IsBaseline:    true,
	}
	if _, err := repo.Create(dbc, base); err != nil {
		t.Fatalf("Create(baseline): %v", err)
	}
	next := &types.DocumentVersion{
		DocumentID:    doc.ID,
		Version:       "1.1",
		ChangeSummary: "fix typo",
		Content:       "v1.1 text",
		Metadata:      types.DocumentMetadata{Version: "1.1"},
	}
	if _, err := repo.Create(dbc, next); err != nil {
		t.Fatalf("Create(next): %v", err)
	}

	if ok, err := repo.HasBaseline(dbc, doc.ID); err != nil || !ok {
		t.Fatalf("HasBaseline: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ExistsForVersion(dbc, doc.ID, "1.1"); err != nil || !ok {
		t.Fatalf("ExistsForVersion(1.1): ok=%v err=%v", ok, err)
	}
	if ok, err := repo.ExistsForVersion(dbc, doc.ID, "2.0"); err != nil || ok {
		t.Fatalf("ExistsForVersion(2.0): ok=%v err=%v", ok, err)
	}

	list, err := repo.ListByDocument(dbc, doc.ID)
	if err != nil {
		t.Fatalf("ListByDocument: %v", err)
	}
	if len(list) != 2 || list[0].Version != "1.1" || list[1].Version != "1.0" {
		t.Fatalf("ListByDocument: unexpected order")
	}

	got, err := repo.GetByID(dbc, doc.ID, base.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || !got.IsBaseline || got.Content != "v1 text" {
		t.Fatalf("GetByID: unexpected %+v", got)
	}
	other, err := repo.GetByID(dbc, uuid.New(), base.ID)
	if err != nil || other != nil {
		t.Fatalf("GetByID(other doc): got=%v err=%v", other, err)
	}

	if n, err := repo.CountByDocument(dbc, doc.ID); err != nil || n != 2 {
		t.Fatalf("CountByDocument: n=%d err=%v", n, err)
	}
}

func TestDocumentVersionRepo_OneBaselinePerDocument(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDocumentVersionRepo(db, testutil.Logger(t))

	doc := testutil.SeedDocument(t, ctx, tx, "Policy", "text", "1.0")
	testutil.SeedVersion(t, ctx, tx, doc, "1.0", types.BaselineChangeSummary, true)

	dup := &types.DocumentVersion{
		DocumentID:    doc.ID,
		Version:       "1.0",
		ChangeSummary: types.BaselineChangeSummary,
		IsBaseline:    true,
	}
	if _, err := repo.Create(dbc, dup); err == nil {
		t.Fatalf("expected second baseline to violate the unique index")
	}
}

func TestDocumentChunkRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDocumentChunkRepo(db, testutil.Logger(t))

	doc := testutil.SeedDocument(t, ctx, tx, "Guide", "a. b.", "1.0")

	vec := pgvector.NewVector([]float32{0.1, 0.2, 0.3})
	c0 := &types.DocumentChunk{DocumentID: doc.ID, ChunkIndex: 0, Content: "a.", Embedding: &vec, Metadata: datatypes.JSON([]byte(`{"version":"1.0"}`))}
	c1 := &types.DocumentChunk{DocumentID: doc.ID, ChunkIndex: 1, Content: "b.", Metadata: datatypes.JSON([]byte(`{}`))}
	if _, err := repo.Create(dbc, []*types.DocumentChunk{c1, c0}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := repo.ListByDocumentID(dbc, doc.ID)
	if err != nil {
		t.Fatalf("ListByDocumentID: %v", err)
	}
	if len(list) != 2 || list[0].ChunkIndex != 0 || list[1].ChunkIndex != 1 {
		t.Fatalf("ListByDocumentID: unexpected order")
	}
	if list[0].Embedding == nil || len(list[0].Embedding.Slice()) != 3 {
		t.Fatalf("expected stored embedding, got %v", list[0].Embedding)
	}
	if list[1].Embedding != nil {
		t.Fatalf("expected NULL embedding to scan as nil")
	}

	dup := &types.DocumentChunk{DocumentID: doc.ID, ChunkIndex: 1, Content: "dup"}
	if _, err := repo.Create(dbc, []*types.DocumentChunk{dup}); err == nil {
		t.Fatalf("expected duplicate chunk index to fail")
	}
}

func TestDocumentChunkRepo_DeleteByDocumentID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewDocumentChunkRepo(db, testutil.Logger(t))

	doc := testutil.SeedDocument(t, ctx, tx, "Guide", "text", "1.0")
	other := testutil.SeedDocument(t, ctx, tx, "Other", "text", "1.0")
	chunks := []*types.DocumentChunk{
		{DocumentID: doc.ID, ChunkIndex: 0, Content: "x"},
		{DocumentID: doc.ID, ChunkIndex: 1, Content: "y"},
		{DocumentID: other.ID, ChunkIndex: 0, Content: "z"},
	}
	if _, err := repo.Create(dbc, chunks); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := repo.DeleteByDocumentID(dbc, doc.ID)
	if err != nil {
		t.Fatalf("DeleteByDocumentID: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted rows, got %d", n)
	}
	if c, _ := repo.CountByDocumentID(dbc, doc.ID); c != 0 {
		t.Fatalf("expected no chunks left, got %d", c)
	}
	if c, _ := repo.CountByDocumentID(dbc, other.ID); c != 1 {
		t.Fatalf("expected other document untouched, got %d", c)
	}
}
