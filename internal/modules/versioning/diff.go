package versioning

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
)

const SelectorCurrent = "current"

// Selector names one side of a comparison: the current document or a snapshot.
type Selector struct {
	Raw       string
	Current   bool
	VersionID uuid.UUID
}

// ParseSelector accepts "current" or a snapshot id. Anything else cannot name a
// version and is reported as not found.
func ParseSelector(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, SelectorCurrent) {
		return Selector{Raw: SelectorCurrent, Current: true}, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return Selector{}, apperrors.NotFound("versioning.ParseSelector", "version %q not found", raw)
	}
	return Selector{Raw: raw, VersionID: id}, nil
}

// SplitLinesKeepEnds splits s after every \n, \r\n or lone \r, keeping the terminator
// on each line.
func SplitLinesKeepEnds(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			lines = append(lines, s[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// Diff renders a unified diff (3 lines of context) from left to right. Identical
// inputs give an empty string.
func Diff(left, right, leftName, rightName string) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        SplitLinesKeepEnds(left),
		B:        SplitLinesKeepEnds(right),
		FromFile: leftName,
		ToFile:   rightName,
		Context:  3,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", apperrors.New(apperrors.CodeInternal, "versioning.Diff", "render diff", err)
	}
	return out, nil
}
