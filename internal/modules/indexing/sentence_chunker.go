package indexing

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MetaChunkIndex   = "chunk_index"
	MetaTotalChunks  = "total_chunks"
	MetaChunkMethod  = "chunk_method"
	MetaTitle        = "title"
	MetaSource       = "source"
	chunkMethodSents = "sentence"
)

type SentenceChunkerConfig struct {
	SentencesPerChunk int
	OverlapSentences  int
	// MaxChars caps a chunk's length in runes; 0 disables the cap.
	MaxChars int
}

// SentenceChunker splits text into sentence windows with overlap.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	maxChars          int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(cfg SentenceChunkerConfig) *SentenceChunker {
	per := cfg.SentencesPerChunk
	if per <= 0 {
		per = 5
	}
	overlap := cfg.OverlapSentences
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= per {
		overlap = per - 1
	}
	maxChars := cfg.MaxChars
	if maxChars < 0 {
		maxChars = 0
	}
	return &SentenceChunker{
		sentencesPerChunk: per,
		overlapSentences:  overlap,
		maxChars:          maxChars,
		splitter:          regexp.MustCompile(`[^.!?]+[.!?]+`),
	}
}

func (c *SentenceChunker) Chunk(ctx context.Context, in ChunkInput) ([]Chunk, error) {
	sentences := c.sentences(in.Content)
	if len(sentences) == 0 {
		return nil, nil
	}

	var texts []string
	i := 0
	for i < len(sentences) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		// shrink the window until it fits, keeping at least one sentence
		for end-i > 1 && c.maxChars > 0 && utf8.RuneCountInString(strings.Join(sentences[i:end], " ")) > c.maxChars {
			end--
		}
		texts = append(texts, strings.Join(sentences[i:end], " "))
		if end == len(sentences) {
			break
		}
		next := end - c.overlapSentences
		if next <= i {
			next = i + 1
		}
		i = next
	}

	chunks := make([]Chunk, 0, len(texts))
	for idx, text := range texts {
		meta := make(map[string]any, len(in.Metadata)+5)
		for k, v := range in.Metadata {
			meta[k] = v
		}
		if in.Title != "" {
			meta[MetaTitle] = in.Title
		}
		if in.Source != "" {
			meta[MetaSource] = in.Source
		}
		meta[MetaChunkIndex] = idx
		meta[MetaTotalChunks] = len(texts)
		meta[MetaChunkMethod] = chunkMethodSents
		chunks = append(chunks, Chunk{
			Index:      idx,
			Content:    text,
			TokenCount: EstimateTokens(text),
			Metadata:   meta,
		})
	}
	return chunks, nil
}

// sentences splits content on terminal punctuation. Trailing text without a terminator
// is kept as the last sentence; sentences longer than maxChars are hard-wrapped.
func (c *SentenceChunker) sentences(content string) []string {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}
	var raw []string
	last := 0
	for _, loc := range c.splitter.FindAllStringIndex(content, -1) {
		raw = append(raw, content[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(content) {
		raw = append(raw, content[last:])
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		out = append(out, c.wrap(s)...)
	}
	return out
}

func (c *SentenceChunker) wrap(s string) []string {
	if c.maxChars <= 0 || utf8.RuneCountInString(s) <= c.maxChars {
		return []string{s}
	}
	var out []string
	var b strings.Builder
	for _, w := range strings.Fields(s) {
		if b.Len() > 0 && utf8.RuneCountInString(b.String())+1+utf8.RuneCountInString(w) > c.maxChars {
			out = append(out, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}

// EstimateTokens approximates a token count as whitespace separated words.
func EstimateTokens(s string) int {
	return len(strings.Fields(s))
}
