package indexing

import "context"

type ChunkInput struct {
	Content  string
	Title    string
	Source   string
	Metadata map[string]any
}

type Chunk struct {
	Index      int
	Content    string
	TokenCount int
	Metadata   map[string]any
}

type Chunker interface {
	Chunk(ctx context.Context, in ChunkInput) ([]Chunk, error)
}

// Embedder returns one vector per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}
