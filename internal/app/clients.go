package app

import (
	"context"
	"fmt"

	"github.com/yungbote/docvault-backend/internal/modules/extraction"
	"github.com/yungbote/docvault-backend/internal/platform/gcp"
	"github.com/yungbote/docvault-backend/internal/platform/localmedia"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/platform/openai"
)

type Clients struct {
	// Media runs the local PDF tools and, for OCR_ENGINE=tesseract, recognition.
	Media localmedia.Tools
	// Vision is set only for OCR_ENGINE=gcp_vision.
	Vision *gcp.VisionRecognizer
	// DocAI is set only for OCR_ENGINE=gcp_documentai.
	DocAI *gcp.DocumentAIRecognizer
	// Embedder is nil when no OpenAI key is configured.
	Embedder openai.Client
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	out.Media = localmedia.New(log, localmedia.Config{
		TesseractConfig: cfg.OCR.TesseractConfig,
		Timeout:         cfg.OCR.Timeout,
	})
	if err := out.Media.AssertReady(ctx); err != nil {
		// plain-text uploads still work without the binaries
		log.Warn("local media tools not ready; OCR and PDF extraction will fail", "error", err)
	}

	if cfg.OCR.Engine == extraction.EngineGCPVision {
		v, err := gcp.NewVisionRecognizer(ctx, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init vision: %w", err)
		}
		out.Vision = v
	}
	if cfg.OCR.Engine == extraction.EngineGCPDocAI {
		d, err := gcp.NewDocumentAIRecognizer(ctx, log, cfg.OCR.DocumentAI)
		if err != nil {
			return Clients{}, fmt.Errorf("init documentai: %w", err)
		}
		out.DocAI = d
	}

	if cfg.EmbeddingsEnabled() {
		c, err := openai.NewClient(log, cfg.Embeddings)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init openai: %w", err)
		}
		out.Embedder = c
	} else {
		log.Warn("OPENAI_API_KEY not set; chunks will be stored without embeddings")
	}
	return out, nil
}

func (c Clients) recognizer() extraction.Recognizer {
	if c.Vision != nil {
		return c.Vision
	}
	if c.DocAI != nil {
		return c.DocAI
	}
	return c.Media
}

func (c Clients) Close() {
	if c.Vision != nil {
		_ = c.Vision.Close()
	}
	if c.DocAI != nil {
		_ = c.DocAI.Close()
	}
}
