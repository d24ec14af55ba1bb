package extraction

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type fakeRecognizer struct {
	mu    sync.Mutex
	calls []string
	fn    func(ctx context.Context, call int, lang string) (string, error)
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img []byte, lang string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, lang)
	n := len(f.calls)
	f.mu.Unlock()
	if len(img) == 0 {
		return "", errors.New("empty image")
	}
	return f.fn(ctx, n, lang)
}

type fakeRasterizer struct {
	pages  int
	calls  int
	outDir string
}

func (f *fakeRasterizer) RenderPDFToImages(ctx context.Context, pdfPath string, outDir string, dpi int) ([]string, error) {
	f.calls++
	f.outDir = outDir
	out := []string{}
	for i := 1; i <= f.pages; i++ {
		p := filepath.Join(outDir, fmt.Sprintf("page-%d.png", i))
		if err := writePNG(p, image.NewGray(image.Rect(0, 0, 4, 4))); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

type fakePageText struct {
	pages    int
	countErr error
	text     map[int]string
	errs     map[int]error
}

func (f *fakePageText) CountPDFPages(ctx context.Context, pdfPath string) (int, error) {
	return f.pages, f.countErr
}

func (f *fakePageText) ExtractPDFPageText(ctx context.Context, pdfPath string, page int) (string, error) {
	if err := f.errs[page]; err != nil {
		return "", err
	}
	return f.text[page], nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func testImage(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "scan.png")
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.NRGBA{R: 255, A: 128})
	if err := writePNG(p, img); err != nil {
		t.Fatalf("write png: %v", err)
	}
	return p
}

func testPDF(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(p, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	return p
}

func newTestExtractor(deps Deps) *Extractor {
	deps.Log = logger.Nop()
	return New(deps, Config{Languages: DefaultLanguageConfig(), TempDir: os.TempDir()})
}

func TestExtract_MissingAndUnsupported(t *testing.T) {
	e := newTestExtractor(Deps{Recognizer: &fakeRecognizer{}})
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.png"), "")
	if !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}

	p := filepath.Join(t.TempDir(), "doc.docx")
	_ = os.WriteFile(p, []byte("x"), 0o644)
	_, err = e.Extract(context.Background(), p, "")
	if !apperrors.IsCode(err, apperrors.CodeExtraction) {
		t.Fatalf("expected extraction error for unsupported type, got %v", err)
	}
	if strings.Contains(err.Error(), p) {
		t.Fatalf("error must not leak the file path: %v", err)
	}
}

func TestExtract_MissingCapabilities(t *testing.T) {
	e := newTestExtractor(Deps{})
	if _, err := e.Extract(context.Background(), testImage(t), ""); !apperrors.IsCode(err, apperrors.CodeExtraction) {
		t.Fatalf("expected extraction error without recognizer, got %v", err)
	}
	if _, err := e.Extract(context.Background(), testPDF(t), ""); !apperrors.IsCode(err, apperrors.CodeExtraction) {
		t.Fatalf("expected extraction error for pdf without tools, got %v", err)
	}
}

func TestExtract_ImageLanguageFallback(t *testing.T) {
	rec := &fakeRecognizer{fn: func(ctx context.Context, call int, lang string) (string, error) {
		if lang == "vie+eng" {
			return "", errors.New("Failed loading language 'vie'")
		}
		return "  Hello scan \n", nil
	}}
	res, err := newTestExtractor(Deps{Recognizer: rec}).Extract(context.Background(), testImage(t), "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "Hello scan" || res.Source != SourceImage || !res.UsedOCR || res.Engine != EngineTesseract {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Languages) != 1 || res.Languages[0] != "eng" {
		t.Fatalf("expected winning language eng, got %v", res.Languages)
	}
	if len(rec.calls) != 2 {
		t.Fatalf("expected 2 attempts, got %v", rec.calls)
	}
}

func TestExtract_EngineUnavailableStopsLoop(t *testing.T) {
	rec := &fakeRecognizer{fn: func(ctx context.Context, call int, lang string) (string, error) {
		return "", fmt.Errorf("tesseract missing: %w", ErrEngineUnavailable)
	}}
	_, err := newTestExtractor(Deps{Recognizer: rec}).Extract(context.Background(), testImage(t), "")
	if !apperrors.IsCode(err, apperrors.CodeExtraction) || !errors.Is(err, ErrEngineUnavailable) {
		t.Fatalf("expected extraction error wrapping engine unavailable, got %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected the loop to stop after the first attempt, got %v", rec.calls)
	}
}

func TestExtract_AllLanguagesFail(t *testing.T) {
	rec := &fakeRecognizer{fn: func(ctx context.Context, call int, lang string) (string, error) {
		return "", errors.New("bad data")
	}}
	_, err := newTestExtractor(Deps{Recognizer: rec}).Extract(context.Background(), testImage(t), "")
	if !apperrors.IsCode(err, apperrors.CodeExtraction) {
		t.Fatalf("expected extraction error, got %v", err)
	}
	for _, want := range []string{"lang='vie+eng' -> bad data", "lang='eng' -> bad data"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestExtract_EmptyTextIsAnError(t *testing.T) {
	rec := &fakeRecognizer{fn: func(ctx context.Context, call int, lang string) (string, error) {
		return "   ", nil
	}}
	_, err := newTestExtractor(Deps{Recognizer: rec}).Extract(context.Background(), testImage(t), "eng")
	if !apperrors.IsCode(err, apperrors.CodeExtraction) || !strings.Contains(err.Error(), "no text recognized") {
		t.Fatalf("expected no text recognized, got %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("an empty success must still win the loop, got %v", rec.calls)
	}
}

func TestExtract_PDFDirectTextSkipsRasterizer(t *testing.T) {
	ras := &fakeRasterizer{pages: 2}
	pt := &fakePageText{
		pages: 3,
		text:  map[int]string{1: " Page one ", 3: "Page three"},
		errs:  map[int]error{2: errors.New("broken page")},
	}
	res, err := newTestExtractor(Deps{Recognizer: &fakeRecognizer{}, Rasterizer: ras, PageText: pt}).Extract(context.Background(), testPDF(t), "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "Page one\n\nPage three" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if res.Source != SourcePDFText || res.UsedOCR || res.Engine != EnginePDFToText || res.PageCount != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if ras.calls != 0 {
		t.Fatalf("direct text path must not rasterize")
	}
}

func TestExtract_PDFFallsBackToOCR(t *testing.T) {
	ras := &fakeRasterizer{pages: 3}
	pt := &fakePageText{pages: 3, text: map[int]string{}}
	rec := &fakeRecognizer{fn: func(ctx context.Context, call int, lang string) (string, error) {
		switch call {
		case 1:
			return "trang mot", nil
		case 2:
			return "", errors.New("Failed loading language 'vie'")
		case 3:
			return "page two", nil
		default:
			return "", nil
		}
	}}
	res, err := newTestExtractor(Deps{Recognizer: rec, Rasterizer: ras, PageText: pt}).Extract(context.Background(), testPDF(t), "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Source != SourcePDFOCR || !res.UsedOCR || res.PageCount != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Text != "trang mot\n\npage two" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if len(res.Languages) != 2 || res.Languages[0] != "vie+eng" || res.Languages[1] != "eng" {
		t.Fatalf("unexpected languages %v", res.Languages)
	}
	if _, err := os.Stat(ras.outDir); !os.IsNotExist(err) {
		t.Fatalf("expected raster dir to be removed, stat err=%v", err)
	}
}

func TestExtract_PDFCountFailureFallsThrough(t *testing.T) {
	ras := &fakeRasterizer{pages: 1}
	pt := &fakePageText{countErr: errors.New("pdfinfo crashed")}
	rec := &fakeRecognizer{fn: func(ctx context.Context, call int, lang string) (string, error) {
		return "ocr text", nil
	}}
	res, err := newTestExtractor(Deps{Recognizer: rec, Rasterizer: ras, PageText: pt}).Extract(context.Background(), testPDF(t), "eng")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Source != SourcePDFOCR || ras.calls != 1 {
		t.Fatalf("expected OCR fallback, got %+v", res)
	}
}

func TestExtract_PDFCancelledBetweenPages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ras := &fakeRasterizer{pages: 3}
	rec := &fakeRecognizer{fn: func(ctx context.Context, call int, lang string) (string, error) {
		cancel()
		return "first page", nil
	}}
	_, err := newTestExtractor(Deps{Recognizer: rec, Rasterizer: ras}).Extract(ctx, testPDF(t), "eng")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected no further pages after cancel, got %d calls", len(rec.calls))
	}
	if _, statErr := os.Stat(ras.outDir); !os.IsNotExist(statErr) {
		t.Fatalf("expected raster dir cleanup on cancel")
	}
}

func TestIsSupported(t *testing.T) {
	for _, p := range []string{"a.PNG", "b.jpeg", "c.tif", "d.pdf", "e.gif", "f.bmp"} {
		if !IsSupported(p) {
			t.Fatalf("expected %s supported", p)
		}
	}
	for _, p := range []string{"a.txt", "b.docx", "noext"} {
		if IsSupported(p) {
			t.Fatalf("expected %s unsupported", p)
		}
	}
}
