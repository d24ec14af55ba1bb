package indexing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	types "github.com/yungbote/docvault-backend/internal/domain"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// PreparedChunk is a chunk ready to be stored. A nil Embedding means no vector was
// computed and is stored as NULL.
type PreparedChunk struct {
	Index      int
	Content    string
	TokenCount int
	Metadata   map[string]any
	Embedding  []float32
}

// Adapter runs chunking and embedding for one content+metadata pair.
type Adapter struct {
	log       *logger.Logger
	chunker   Chunker
	embedder  Embedder
	batchSize int
}

func NewAdapter(log *logger.Logger, chunker Chunker, embedder Embedder) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{
		log:       log.With("service", "ChunkEmbedAdapter"),
		chunker:   chunker,
		embedder:  embedder,
		batchSize: 64,
	}
}

// Prepare chunks the content and embeds every chunk. Indexes are reassigned to be
// contiguous from 0 in chunker order.
func (a *Adapter) Prepare(ctx context.Context, in ChunkInput) ([]PreparedChunk, error) {
	if a.chunker == nil {
		return nil, fmt.Errorf("no chunker configured")
	}
	chunks, err := a.chunker.Chunk(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	out := make([]PreparedChunk, 0, len(chunks))
	for i, ch := range chunks {
		out = append(out, PreparedChunk{
			Index:      i,
			Content:    ch.Content,
			TokenCount: ch.TokenCount,
			Metadata:   ch.Metadata,
		})
	}
	if a.embedder == nil || len(out) == 0 {
		return out, nil
	}

	for start := 0; start < len(out); start += a.batchSize {
		end := start + a.batchSize
		if end > len(out) {
			end = len(out)
		}
		inputs := make([]string, 0, end-start)
		for _, pc := range out[start:end] {
			inputs = append(inputs, pc.Content)
		}
		vecs, err := a.embedder.Embed(ctx, inputs)
		if err != nil {
			return nil, fmt.Errorf("embed: %w", err)
		}
		if len(vecs) != len(inputs) {
			return nil, fmt.Errorf("embed: expected %d vectors, got %d", len(inputs), len(vecs))
		}
		for i, v := range vecs {
			if len(v) == 0 {
				continue
			}
			out[start+i].Embedding = v
		}
	}
	a.log.Debug("chunks prepared", "chunks", len(out), "title", in.Title)
	return out, nil
}

// Rows converts prepared chunks into store rows for one document.
func Rows(docID uuid.UUID, prepared []PreparedChunk) ([]*types.DocumentChunk, error) {
	rows := make([]*types.DocumentChunk, 0, len(prepared))
	for _, pc := range prepared {
		meta := pc.Metadata
		if meta == nil {
			meta = map[string]any{}
		}
		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("chunk %d metadata: %w", pc.Index, err)
		}
		row := &types.DocumentChunk{
			DocumentID: docID,
			ChunkIndex: pc.Index,
			Content:    pc.Content,
			Metadata:   datatypes.JSON(raw),
		}
		if pc.TokenCount > 0 {
			tc := pc.TokenCount
			row.TokenCount = &tc
		}
		if pc.Embedding != nil {
			v := pgvector.NewVector(pc.Embedding)
			row.Embedding = &v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
