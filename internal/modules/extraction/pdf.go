package extraction

import (
	"context"
	"os"
	"strings"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
)

// pageText is the direct-text outcome for one PDF page.
type pageText struct {
	Page int
	Text string
	Err  error
}

func (e *Extractor) extractPDF(ctx context.Context, path string, candidates []string) (*Result, error) {
	if e.pageText != nil {
		res, err := e.directText(ctx, path)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return e.ocrPDF(ctx, path, candidates)
}

// directText reads the PDF's own text layer page by page. A nil result with a nil
// error means the caller should fall through to OCR.
func (e *Extractor) directText(ctx context.Context, path string) (*Result, error) {
	pages, err := e.pageText.CountPDFPages(ctx, path)
	if err != nil {
		e.log.Warn("direct PDF text extraction failed", "path", path, "error", err)
		return nil, nil
	}

	results := make([]pageText, 0, pages)
	for p := 1; p <= pages; p++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Extraction("extraction.pdf_text", "extraction cancelled", err)
		}
		text, err := e.pageText.ExtractPDFPageText(ctx, path, p)
		results = append(results, pageText{Page: p, Text: text, Err: err})
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			e.log.Debug("failed to extract text from PDF page", "path", path, "page", r.Page, "error", r.Err)
			continue
		}
		if t := strings.TrimSpace(r.Text); t != "" {
			parts = append(parts, t)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if text == "" {
		e.log.Debug("PDF has no text layer, falling back to OCR", "path", path, "pages", pages)
		return nil, nil
	}
	return &Result{
		Text:      text,
		Engine:    EnginePDFToText,
		Source:    SourcePDFText,
		PageCount: pages,
		UsedOCR:   false,
	}, nil
}

func (e *Extractor) ocrPDF(ctx context.Context, path string, candidates []string) (*Result, error) {
	const op = "extraction.pdf_ocr"
	if e.rasterizer == nil {
		return nil, apperrors.Extraction(op, "PDF has no selectable text and no rasterizer is configured", nil)
	}
	if e.recognizer == nil {
		return nil, apperrors.Extraction(op, "no OCR engine configured for scanned PDFs", nil)
	}

	dir, err := os.MkdirTemp(e.cfg.TempDir, "docvault-ocr-*")
	if err != nil {
		return nil, apperrors.Extraction(op, "could not create raster directory", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			e.log.Warn("raster cleanup failed", "dir", dir, "error", rmErr)
		}
	}()

	images, err := e.rasterizer.RenderPDFToImages(ctx, path, dir, e.cfg.PDFDPI)
	if err != nil {
		e.log.Warn("PDF rasterization failed", "path", path, "error", err)
		return nil, apperrors.Extraction(op, "PDF rasterization failed", err)
	}
	if len(images) == 0 {
		return nil, apperrors.Extraction(op, "no pages found in PDF for OCR processing", nil)
	}

	texts := make([]string, 0, len(images))
	langs := make([]string, 0, len(images))
	for i, imgPath := range images {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Extraction(op, "extraction cancelled", err)
		}
		img, err := loadNormalizedImage(imgPath)
		if err != nil {
			e.log.Warn("page image decode failed", "page", i+1, "error", err)
			return nil, apperrors.Extraction(op, "rasterized page could not be decoded", err)
		}
		rec, err := e.recognize(ctx, img, candidates)
		if err != nil {
			return nil, err
		}
		e.log.Debug("OCR complete for PDF page", "page", i+1, "lang", rec.Language)
		if rec.Text != "" {
			texts = append(texts, rec.Text)
		}
		langs = append(langs, rec.Language)
	}

	return &Result{
		Text:      strings.TrimSpace(strings.Join(texts, "\n\n")),
		Engine:    e.cfg.Engine,
		Source:    SourcePDFOCR,
		Languages: dedupe(langs),
		PageCount: len(images),
		UsedOCR:   true,
	}, nil
}
