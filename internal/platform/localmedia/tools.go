package localmedia

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/ctxutil"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// Tools is the glue around the poppler and tesseract binaries.
//
// REQUIRED BINARIES in runtime:
// - pdfinfo, pdftotext, pdftoppm (poppler-utils) for page count, page text and rasterization
// - tesseract (with the configured traineddata) for OCR
//
// Every method is stateless and safe for concurrent use.
type Tools interface {
	AssertReady(ctx context.Context) error

	CountPDFPages(ctx context.Context, pdfPath string) (int, error)
	ExtractPDFPageText(ctx context.Context, pdfPath string, page int) (string, error)
	RenderPDFToImages(ctx context.Context, pdfPath string, outDir string, dpi int) ([]string, error)

	// Recognize runs tesseract over encoded image bytes for one language spec ("vie+eng").
	Recognize(ctx context.Context, image []byte, language string) (string, error)
}

type Config struct {
	// TesseractConfig is appended to every tesseract call, e.g. "--psm 6 --oem 1".
	TesseractConfig string
	Timeout         time.Duration
}

type tools struct {
	log    *logger.Logger
	runner CommandRunner

	pdftoppmPath  string
	pdfinfoPath   string
	pdftotextPath string
	tesseractPath string

	tesseractArgs  []string
	defaultTimeout time.Duration
}

func New(log *logger.Logger, cfg Config) Tools {
	return NewWithRunner(log, cfg, execRunner{})
}

func NewWithRunner(log *logger.Logger, cfg Config, runner CommandRunner) Tools {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &tools{
		log:            log.With("service", "LocalMediaTools"),
		runner:         runner,
		pdftoppmPath:   "pdftoppm",
		pdfinfoPath:    "pdfinfo",
		pdftotextPath:  "pdftotext",
		tesseractPath:  "tesseract",
		tesseractArgs:  strings.Fields(cfg.TesseractConfig),
		defaultTimeout: timeout,
	}
}

func (m *tools) AssertReady(ctx context.Context) error {
	for _, bin := range []string{m.pdfinfoPath, m.pdftotextPath, m.pdftoppmPath, m.tesseractPath} {
		if err := m.assertBinary(bin); err != nil {
			return err
		}
	}
	return nil
}

func (m *tools) assertBinary(name string) error {
	if _, err := m.runner.LookPath(name); err != nil {
		return fmt.Errorf("missing required binary %q in PATH: %w: %w", name, apperrors.ErrEngineUnavailable, err)
	}
	return nil
}

func (m *tools) CountPDFPages(ctx context.Context, pdfPath string) (int, error) {
	ctx = ctxutil.Default(ctx)
	if pdfPath == "" {
		return 0, fmt.Errorf("pdfPath required")
	}
	if err := m.assertBinary(m.pdfinfoPath); err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out, err := m.runner.Run(ctx, nil, m.pdfinfoPath, pdfPath)
	if err != nil {
		return 0, err
	}
	return parsePDFInfoPages(string(out))
}

func parsePDFInfoPages(out string) (int, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil || n <= 0 {
			continue
		}
		return n, nil
	}
	return 0, fmt.Errorf("pdfinfo output missing Pages field")
}

func (m *tools) ExtractPDFPageText(ctx context.Context, pdfPath string, page int) (string, error) {
	ctx = ctxutil.Default(ctx)
	if pdfPath == "" {
		return "", fmt.Errorf("pdfPath required")
	}
	if page <= 0 {
		return "", fmt.Errorf("page must be >= 1")
	}
	if err := m.assertBinary(m.pdftotextPath); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	p := strconv.Itoa(page)
	out, err := m.runner.Run(ctx, nil, m.pdftotextPath, "-f", p, "-l", p, "-enc", "UTF-8", pdfPath, "-")
	if err != nil {
		return "", err
	}
	// pdftotext ends every page with a form feed
	return strings.TrimRight(string(out), "\f\n"), nil
}

func (m *tools) RenderPDFToImages(ctx context.Context, pdfPath string, outDir string, dpi int) ([]string, error) {
	ctx = ctxutil.Default(ctx)
	if pdfPath == "" {
		return nil, fmt.Errorf("pdfPath required")
	}
	if outDir == "" {
		return nil, fmt.Errorf("outDir required")
	}
	if err := m.assertBinary(m.pdftoppmPath); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir outDir: %w", err)
	}
	if dpi <= 0 {
		dpi = 300
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	prefix := filepath.Join(outDir, "page")
	if _, err := m.runner.Run(ctx, nil, m.pdftoppmPath, "-r", strconv.Itoa(dpi), "-png", pdfPath, prefix); err != nil {
		return nil, err
	}

	paths, err := pagesSorted(outDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no images produced by pdftoppm")
	}
	return paths, nil
}

var pageFileRE = regexp.MustCompile(`^page-(\d+)\.png$`)

// pagesSorted lists pdftoppm output in page order. Names are only zero padded to the
// width of the last page number, so they are sorted numerically.
func pagesSorted(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type page struct {
		n    int
		path string
	}
	pages := []page{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		match := pageFileRE.FindStringSubmatch(strings.ToLower(e.Name()))
		if match == nil {
			continue
		}
		n, _ := strconv.Atoi(match[1])
		pages = append(pages, page{n: n, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.path)
	}
	return out, nil
}

func (m *tools) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	ctx = ctxutil.Default(ctx)
	if len(image) == 0 {
		return "", fmt.Errorf("image required")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		return "", fmt.Errorf("language required")
	}
	if err := m.assertBinary(m.tesseractPath); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, m.defaultTimeout)
	defer cancel()

	args := append([]string{"stdin", "stdout", "-l", language}, m.tesseractArgs...)
	out, err := m.runner.Run(ctx, image, m.tesseractPath, args...)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("tesseract: %w", ctxErr)
		}
		var runErr *RunError
		if errors.As(err, &runErr) && isMissingLanguage(runErr.Stderr) {
			return "", fmt.Errorf("tesseract language %q not installed", language)
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func isMissingLanguage(stderr string) bool {
	s := strings.ToLower(stderr)
	return strings.Contains(s, "failed loading language") || strings.Contains(s, "error opening data file")
}
