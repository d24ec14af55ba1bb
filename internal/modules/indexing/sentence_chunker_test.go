package indexing

import (
	"context"
	"strings"
	"testing"
)

func TestSentenceChunker_WindowsWithOverlap(t *testing.T) {
	c := NewSentenceChunker(SentenceChunkerConfig{SentencesPerChunk: 2, OverlapSentences: 1})
	chunks, err := c.Chunk(context.Background(), ChunkInput{
		Content:  "One. Two!  Three?\nFour",
		Title:    "Guide",
		Source:   "upload",
		Metadata: map[string]any{"version": "1.1"},
	})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	want := []string{"One. Two!", "Two! Three?", "Three? Four"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, ch := range chunks {
		if ch.Content != want[i] {
			t.Fatalf("chunk %d: got %q want %q", i, ch.Content, want[i])
		}
		if ch.Index != i {
			t.Fatalf("chunk %d: index %d", i, ch.Index)
		}
		if ch.Metadata["version"] != "1.1" || ch.Metadata[MetaTitle] != "Guide" || ch.Metadata[MetaTotalChunks] != 3 {
			t.Fatalf("chunk %d: unexpected metadata %v", i, ch.Metadata)
		}
		if ch.TokenCount != 2 {
			t.Fatalf("chunk %d: token count %d", i, ch.TokenCount)
		}
	}
}

func TestSentenceChunker_EmptyAndUnterminated(t *testing.T) {
	c := NewSentenceChunker(SentenceChunkerConfig{})
	chunks, err := c.Chunk(context.Background(), ChunkInput{Content: "   "})
	if err != nil || len(chunks) != 0 {
		t.Fatalf("expected no chunks for blank content, got %d err=%v", len(chunks), err)
	}
	chunks, _ = c.Chunk(context.Background(), ChunkInput{Content: "no terminator here"})
	if len(chunks) != 1 || chunks[0].Content != "no terminator here" {
		t.Fatalf("unexpected chunks %+v", chunks)
	}
}

func TestSentenceChunker_MaxChars(t *testing.T) {
	c := NewSentenceChunker(SentenceChunkerConfig{SentencesPerChunk: 3, MaxChars: 12})
	chunks, err := c.Chunk(context.Background(), ChunkInput{Content: "Alpha beta. Gamma. " + strings.Repeat("word ", 6) + "end."})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	for _, ch := range chunks {
		if n := len([]rune(ch.Content)); n > 12 {
			t.Fatalf("chunk exceeds max chars: %q (%d)", ch.Content, n)
		}
	}
	if chunks[0].Content != "Alpha beta." {
		t.Fatalf("unexpected first chunk %q", chunks[0].Content)
	}
}

func TestSentenceChunker_OverlapIsClamped(t *testing.T) {
	c := NewSentenceChunker(SentenceChunkerConfig{SentencesPerChunk: 2, OverlapSentences: 5})
	chunks, err := c.Chunk(context.Background(), ChunkInput{Content: "A. B. C. D."})
	if err != nil {
		t.Fatalf("Chunk: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected progress with clamped overlap, got %d chunks", len(chunks))
	}
}
