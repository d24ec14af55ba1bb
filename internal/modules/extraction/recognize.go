package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
)

// attempt is the outcome of one recognition call for one language spec.
type attempt struct {
	Language string
	Text     string
	Err      error
}

func (a attempt) ok() bool { return a.Err == nil }

func (a attempt) reason() string {
	return fmt.Sprintf("lang='%s' -> %v", a.Language, a.Err)
}

// recognize tries candidates in order and returns the first attempt without an engine
// error, even if its text is empty.
func (e *Extractor) recognize(ctx context.Context, img []byte, candidates []string) (attempt, error) {
	const op = "extraction.recognize"
	failed := make([]attempt, 0, len(candidates))
	for _, lang := range candidates {
		if err := ctx.Err(); err != nil {
			return attempt{}, apperrors.Extraction(op, "recognition cancelled", err)
		}
		a := e.try(ctx, img, lang)
		if a.ok() {
			return a, nil
		}
		if errors.Is(a.Err, ErrEngineUnavailable) {
			e.log.Error("ocr engine unavailable", "engine", e.cfg.Engine, "error", a.Err)
			return attempt{}, apperrors.Extraction(op, fmt.Sprintf("%s engine unavailable", e.cfg.Engine), a.Err)
		}
		if err := ctx.Err(); err != nil {
			return attempt{}, apperrors.Extraction(op, "recognition cancelled", err)
		}
		e.log.Debug("recognition failed for language", "lang", lang, "error", a.Err)
		failed = append(failed, a)
	}

	reasons := make([]string, 0, len(failed))
	for _, a := range failed {
		reasons = append(reasons, a.reason())
	}
	return attempt{}, apperrors.Extraction(op,
		fmt.Sprintf("%s failed for all language candidates: %s", e.cfg.Engine, strings.Join(reasons, "; ")),
		errors.Join(errorsOf(failed)...),
	)
}

func (e *Extractor) try(ctx context.Context, img []byte, lang string) attempt {
	text, err := e.recognizer.Recognize(ctx, img, lang)
	if err != nil {
		return attempt{Language: lang, Err: err}
	}
	return attempt{Language: lang, Text: strings.TrimSpace(text)}
}

func errorsOf(as []attempt) []error {
	out := make([]error, 0, len(as))
	for _, a := range as {
		out = append(out, a.Err)
	}
	return out
}
