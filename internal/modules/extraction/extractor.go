package extraction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/docvault-backend/internal/observability"
	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/ctxutil"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// ErrEngineUnavailable is returned (wrapped) by a Recognizer when the engine cannot run
// at all. The recognition loop stops on it instead of trying the next language.
var ErrEngineUnavailable = apperrors.ErrEngineUnavailable

type Recognizer interface {
	Recognize(ctx context.Context, image []byte, language string) (string, error)
}

type Rasterizer interface {
	RenderPDFToImages(ctx context.Context, pdfPath string, outDir string, dpi int) ([]string, error)
}

type PageTextSource interface {
	CountPDFPages(ctx context.Context, pdfPath string) (int, error)
	ExtractPDFPageText(ctx context.Context, pdfPath string, page int) (string, error)
}

type Kind int

const (
	KindUnsupported Kind = iota
	KindImage
	KindPDF
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
	".gif":  true,
}

func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return KindImage
	case ext == ".pdf":
		return KindPDF
	default:
		return KindUnsupported
	}
}

// IsSupported reports whether the file extension is OCR-capable.
func IsSupported(path string) bool {
	return Classify(path) != KindUnsupported
}

type Config struct {
	Languages LanguageConfig
	// PDFDPI is the rasterization resolution for scanned PDFs.
	PDFDPI int
	// Engine names the recognizer in results ("tesseract", "gcp_vision", "gcp_documentai").
	Engine string
	// TempDir is the parent for per-call raster directories; empty uses os.TempDir.
	TempDir string
}

type Deps struct {
	Log        *logger.Logger
	Recognizer Recognizer
	Rasterizer Rasterizer
	PageText   PageTextSource
}

type Extractor struct {
	log        *logger.Logger
	recognizer Recognizer
	rasterizer Rasterizer
	pageText   PageTextSource
	cfg        Config
}

func New(deps Deps, cfg Config) *Extractor {
	if strings.TrimSpace(cfg.Languages.Default) == "" && strings.TrimSpace(cfg.Languages.Fallbacks) == "" {
		cfg.Languages = DefaultLanguageConfig()
	}
	if cfg.PDFDPI <= 0 {
		cfg.PDFDPI = 300
	}
	if strings.TrimSpace(cfg.Engine) == "" {
		cfg.Engine = EngineTesseract
	}
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{
		log:        log.With("service", "Extractor"),
		recognizer: deps.Recognizer,
		rasterizer: deps.Rasterizer,
		pageText:   deps.PageText,
		cfg:        cfg,
	}
}

// Extract returns the text of an image or PDF. A successful result always carries
// non-empty text.
func (e *Extractor) Extract(ctx context.Context, path string, languageHint string) (res *Result, err error) {
	const op = "extraction.Extract"
	ctx = ctxutil.Default(ctx)
	ctx, span := observability.StartSpan(ctx, op, attribute.String("file.ext", strings.ToLower(filepath.Ext(path))))
	defer func() { observability.EndSpan(span, err) }()

	if _, statErr := os.Stat(path); statErr != nil {
		if errors.Is(statErr, os.ErrNotExist) {
			return nil, apperrors.NotFound(op, "file not found: %s", filepath.Base(path))
		}
		e.log.Warn("stat failed", "path", path, "error", statErr)
		return nil, apperrors.Extraction(op, "file is not readable", statErr)
	}

	kind := Classify(path)
	if kind == KindUnsupported {
		return nil, apperrors.Extraction(op, "unsupported file type for OCR: "+strings.ToLower(filepath.Ext(path)), nil)
	}
	if err := e.ensureCapabilities(kind); err != nil {
		return nil, err
	}

	candidates := ResolveLanguages(languageHint, e.cfg.Languages)
	switch kind {
	case KindImage:
		res, err = e.extractImage(ctx, path, candidates)
	default:
		res, err = e.extractPDF(ctx, path, candidates)
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(res.Text) == "" {
		e.log.Info("extraction produced no text", "path", path, "source", res.Source)
		return nil, apperrors.Extraction(op, "no text recognized", nil)
	}
	span.SetAttributes(
		attribute.String("extraction.source", res.Source),
		attribute.Bool("extraction.used_ocr", res.UsedOCR),
		attribute.Int("extraction.page_count", res.PageCount),
	)
	return res, nil
}

func (e *Extractor) ensureCapabilities(kind Kind) error {
	const op = "extraction.Extract"
	switch kind {
	case KindImage:
		if e.recognizer == nil {
			return apperrors.Extraction(op, "no OCR engine configured for images", nil)
		}
	case KindPDF:
		if e.pageText == nil && e.rasterizer == nil {
			return apperrors.Extraction(op, "PDF extraction needs a page text source or a rasterizer", nil)
		}
	}
	return nil
}

func (e *Extractor) extractImage(ctx context.Context, path string, candidates []string) (*Result, error) {
	img, err := loadNormalizedImage(path)
	if err != nil {
		e.log.Warn("image decode failed", "path", path, "error", err)
		return nil, apperrors.Extraction("extraction.image", "image could not be decoded", err)
	}
	rec, err := e.recognize(ctx, img, candidates)
	if err != nil {
		return nil, err
	}
	return &Result{
		Text:      rec.Text,
		Engine:    e.cfg.Engine,
		Source:    SourceImage,
		Languages: []string{rec.Language},
		UsedOCR:   true,
	}, nil
}
