package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	types "github.com/yungbote/docvault-backend/internal/domain"
)

type chunkView struct {
	Index        int             `json:"chunk_index"`
	Content      string          `json:"content"`
	TokenCount   *int            `json:"token_count,omitempty"`
	HasEmbedding bool            `json:"has_embedding"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
}

func chunkViews(chunks []*types.DocumentChunk) []chunkView {
	out := make([]chunkView, 0, len(chunks))
	for _, c := range chunks {
		if c == nil {
			continue
		}
		out = append(out, chunkView{
			Index:        c.ChunkIndex,
			Content:      c.Content,
			TokenCount:   c.TokenCount,
			HasEmbedding: c.Embedding != nil,
			Metadata:     json.RawMessage(c.Metadata),
		})
	}
	return out
}

// render writes v as indented JSON or as YAML. YAML goes through the JSON encoding so
// both formats share field names.
func render(w io.Writer, format string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		_, err = fmt.Fprintln(w, string(raw))
		return err
	case "", "yaml", "yml":
		var node yaml.Node
		if err := yaml.Unmarshal(raw, &node); err != nil {
			return fmt.Errorf("convert output: %w", err)
		}
		plainStyle(&node)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// plainStyle drops the flow/quoted styles inherited from the JSON source.
func plainStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plainStyle(c)
	}
}

var (
	diffHeader = color.New(color.Bold)
	diffHunk   = color.New(color.FgCyan)
	diffAdd    = color.New(color.FgGreen)
	diffDel    = color.New(color.FgRed)
)

// writeDiff prints a unified diff, coloring it when color output is enabled
// (color.NoColor is set for non-terminals and NO_COLOR).
func writeDiff(w io.Writer, diff string) error {
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		var c *color.Color
		switch {
		case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
			c = diffHeader
		case strings.HasPrefix(line, "@@"):
			c = diffHunk
		case strings.HasPrefix(line, "+"):
			c = diffAdd
		case strings.HasPrefix(line, "-"):
			c = diffDel
		}
		var err error
		if c == nil {
			_, err = io.WriteString(w, line)
		} else {
			body := strings.TrimSuffix(line, "\n")
			_, err = io.WriteString(w, c.Sprint(body)+line[len(body):])
		}
		if err != nil {
			return err
		}
	}
	return nil
}
