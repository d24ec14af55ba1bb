package versioning

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a major.minor document version.
type Version struct {
	Major int
	Minor int
}

var Initial = Version{Major: 1, Minor: 0}

// ParseVersion is lenient: a leading v/V is stripped, a non-numeric or missing major
// becomes 1, a non-numeric or missing minor becomes 0, extra segments are ignored.
func ParseVersion(s string) Version {
	s = strings.TrimSpace(s)
	if s == "" {
		return Initial
	}
	parts := strings.Split(stripPrefix(s), ".")
	v := Initial
	if n, ok := parseSegment(parts[0]); ok {
		v.Major = n
	}
	if len(parts) > 1 {
		if n, ok := parseSegment(parts[1]); ok {
			v.Minor = n
		}
	}
	return v
}

// stripPrefix drops one leading v or V.
func stripPrefix(s string) string {
	if strings.HasPrefix(s, "v") || strings.HasPrefix(s, "V") {
		return s[1:]
	}
	return s
}

func parseSegment(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

type BumpKind string

const (
	BumpMinor BumpKind = "minor"
	BumpMajor BumpKind = "major"
)

// ParseBumpKind maps anything other than "major" to a minor bump.
func ParseBumpKind(s string) BumpKind {
	if strings.EqualFold(strings.TrimSpace(s), string(BumpMajor)) {
		return BumpMajor
	}
	return BumpMinor
}

func (v Version) Bump(kind BumpKind) Version {
	if kind == BumpMajor {
		return Version{Major: v.Major + 1, Minor: 0}
	}
	return Version{Major: v.Major, Minor: v.Minor + 1}
}

// Next returns the override when given, otherwise current bumped by kind.
func Next(current string, kind BumpKind, override string) string {
	if o := strings.TrimSpace(override); o != "" {
		return o
	}
	return ParseVersion(current).Bump(kind).String()
}
