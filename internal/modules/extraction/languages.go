package extraction

import "strings"

const (
	DefaultLanguageSpec = "vie+eng"
	DefaultFallbackSpec = "eng"
	lastResortLanguage  = "eng"
)

// LanguageConfig holds the configured OCR language specs. Each value is a comma or
// semicolon separated list of tesseract language specs ("vie+eng, eng").
type LanguageConfig struct {
	Default   string
	Fallbacks string
}

func DefaultLanguageConfig() LanguageConfig {
	return LanguageConfig{Default: DefaultLanguageSpec, Fallbacks: DefaultFallbackSpec}
}

// ResolveLanguages returns the ordered recognition candidates for a request. The
// requested list (or the configured default when blank) comes first, then any
// configured fallback not already present. The result is never empty.
func ResolveLanguages(requested string, cfg LanguageConfig) []string {
	if strings.TrimSpace(requested) == "" {
		requested = cfg.Default
	}
	attempts := dedupe(splitLanguages(requested))
	seen := make(map[string]bool, len(attempts))
	for _, a := range attempts {
		seen[a] = true
	}
	for _, fb := range splitLanguages(cfg.Fallbacks) {
		if !seen[fb] {
			seen[fb] = true
			attempts = append(attempts, fb)
		}
	}
	if len(attempts) == 0 {
		return []string{lastResortLanguage}
	}
	return attempts
}

func splitLanguages(spec string) []string {
	parts := strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it == "" || seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
