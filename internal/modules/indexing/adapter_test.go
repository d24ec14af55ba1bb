package indexing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type fakeEmbedder struct {
	calls int
	fn    func(inputs []string) ([][]float32, error)
}

func (f *fakeEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	f.calls++
	return f.fn(inputs)
}

type staticChunker []Chunk

func (s staticChunker) Chunk(ctx context.Context, in ChunkInput) ([]Chunk, error) {
	return []Chunk(s), nil
}

func TestAdapter_PrepareEmbedsInOrder(t *testing.T) {
	emb := &fakeEmbedder{fn: func(inputs []string) ([][]float32, error) {
		out := make([][]float32, len(inputs))
		for i, s := range inputs {
			if s == "skip." {
				continue
			}
			out[i] = []float32{float32(len(s))}
		}
		return out, nil
	}}
	a := NewAdapter(logger.Nop(), NewSentenceChunker(SentenceChunkerConfig{SentencesPerChunk: 1}), emb)
	prepared, err := a.Prepare(context.Background(), ChunkInput{Content: "Hello there. skip. Bye."})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if len(prepared) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(prepared))
	}
	if prepared[0].Embedding[0] != float32(len("Hello there.")) {
		t.Fatalf("unexpected embedding %v", prepared[0].Embedding)
	}
	if prepared[1].Embedding != nil {
		t.Fatalf("an empty vector should stay absent")
	}
}

func TestAdapter_ReindexesContiguously(t *testing.T) {
	a := NewAdapter(logger.Nop(), staticChunker{{Index: 4, Content: "a"}, {Index: 9, Content: "b"}}, nil)
	prepared, err := a.Prepare(context.Background(), ChunkInput{Content: "ignored"})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if prepared[0].Index != 0 || prepared[1].Index != 1 {
		t.Fatalf("expected contiguous indexes, got %d,%d", prepared[0].Index, prepared[1].Index)
	}
	if prepared[0].Embedding != nil {
		t.Fatalf("no embedder means no vectors")
	}
}

func TestAdapter_EmbedFailures(t *testing.T) {
	chunker := staticChunker{{Content: "a"}, {Content: "b"}}
	short := &fakeEmbedder{fn: func(inputs []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}}
	if _, err := NewAdapter(nil, chunker, short).Prepare(context.Background(), ChunkInput{}); err == nil {
		t.Fatalf("expected count mismatch error")
	}
	broken := &fakeEmbedder{fn: func(inputs []string) ([][]float32, error) {
		return nil, errors.New("rate limited")
	}}
	if _, err := NewAdapter(nil, chunker, broken).Prepare(context.Background(), ChunkInput{}); err == nil {
		t.Fatalf("expected embed error")
	}
}

func TestAdapter_Batches(t *testing.T) {
	chunks := make(staticChunker, 130)
	for i := range chunks {
		chunks[i] = Chunk{Content: "x"}
	}
	emb := &fakeEmbedder{fn: func(inputs []string) ([][]float32, error) {
		out := make([][]float32, len(inputs))
		for i := range out {
			out[i] = []float32{1}
		}
		return out, nil
	}}
	prepared, err := NewAdapter(nil, chunks, emb).Prepare(context.Background(), ChunkInput{})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if emb.calls != 3 || len(prepared) != 130 {
		t.Fatalf("expected 3 batches for 130 chunks, got %d calls", emb.calls)
	}
}

func TestRows(t *testing.T) {
	docID := uuid.New()
	rows, err := Rows(docID, []PreparedChunk{
		{Index: 0, Content: "a", TokenCount: 1, Metadata: map[string]any{"version": "1.0"}, Embedding: []float32{0.5, 0.25}},
		{Index: 1, Content: "b"},
	})
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if rows[0].DocumentID != docID || rows[0].Embedding == nil || len(rows[0].Embedding.Slice()) != 2 {
		t.Fatalf("unexpected first row %+v", rows[0])
	}
	if rows[1].Embedding != nil || rows[1].TokenCount != nil {
		t.Fatalf("expected absent vector and token count on second row")
	}
	var meta map[string]any
	if err := json.Unmarshal(rows[0].Metadata, &meta); err != nil || meta["version"] != "1.0" {
		t.Fatalf("unexpected metadata %s", string(rows[0].Metadata))
	}
	if string(rows[1].Metadata) != "{}" {
		t.Fatalf("expected empty object metadata, got %s", string(rows[1].Metadata))
	}
}
