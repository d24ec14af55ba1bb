package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeOfWrapped(t *testing.T) {
	base := NotFound("documents.get", "document %s not found", "abc")
	wrapped := fmt.Errorf("load: %w", base)
	if got := CodeOf(wrapped); got != CodeNotFound {
		t.Fatalf("CodeOf: got %q", got)
	}
	if !errors.Is(wrapped, ErrNotFound) {
		t.Fatalf("expected errors.Is(ErrNotFound)")
	}
	if errors.Is(wrapped, ErrInvalidArgument) {
		t.Fatalf("not_found must not match ErrInvalidArgument")
	}
}

func TestTransactionKeepsSpecificCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"plain", errors.New("boom"), CodeTransaction},
		{"not found", NotFound("op", "missing"), CodeNotFound},
		{"validation", Validation("op", "bad"), CodeValidation},
		{"conflict", New(CodeConflict, "op", "dup", nil), CodeConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Transaction("reindex", tc.err)
			if CodeOf(got) != tc.want {
				t.Fatalf("got code %q want %q", CodeOf(got), tc.want)
			}
		})
	}
	if Transaction("reindex", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestErrorString(t *testing.T) {
	err := Extraction("extract", "no text recognized", nil)
	if got := err.Error(); got != "extract: no text recognized (extraction)" {
		t.Fatalf("Error(): %q", got)
	}
}
