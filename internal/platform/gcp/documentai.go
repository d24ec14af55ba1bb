package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/yungbote/docvault-backend/internal/platform/ctxutil"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

// DocumentAIConfig names the OCR processor used for OCR_ENGINE=gcp_documentai.
type DocumentAIConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
}

// ProcessorName is the full resource name, with the version when one is pinned.
func (c DocumentAIConfig) ProcessorName() string {
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.location(), c.ProcessorID)
	if v := strings.TrimSpace(c.ProcessorVersion); v != "" {
		name += "/processorVersions/" + v
	}
	return name
}

func (c DocumentAIConfig) location() string {
	if l := strings.TrimSpace(c.Location); l != "" {
		return l
	}
	return "us"
}

func (c DocumentAIConfig) Validate() error {
	if strings.TrimSpace(c.ProjectID) == "" || strings.TrimSpace(c.ProcessorID) == "" {
		return fmt.Errorf("DOCUMENTAI_PROJECT_ID and DOCUMENTAI_PROCESSOR_ID are required")
	}
	return nil
}

type processFunc func(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error)

// DocumentAIRecognizer sends one rendered page or image per call to a Document AI OCR
// processor.
type DocumentAIRecognizer struct {
	log       *logger.Logger
	client    *documentai.DocumentProcessorClient
	process   processFunc
	processor string
	timeout   time.Duration
}

func NewDocumentAIRecognizer(ctx context.Context, log *logger.Logger, cfg DocumentAIConfig) (*DocumentAIRecognizer, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx = ctxutil.Default(ctx)
	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.location())
	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	r := &DocumentAIRecognizer{
		log:       log.With("service", "gcp.DocumentAI"),
		client:    client,
		processor: cfg.ProcessorName(),
		timeout:   2 * time.Minute,
	}
	r.process = func(ctx context.Context, req *documentaipb.ProcessRequest) (*documentaipb.ProcessResponse, error) {
		return client.ProcessDocument(ctx, req)
	}
	r.log.Info("Document AI initialized", "endpoint", endpoint, "processor", r.processor)
	return r, nil
}

func (r *DocumentAIRecognizer) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

// Recognize expects PNG bytes, which is what the extractor hands to every recognizer.
func (r *DocumentAIRecognizer) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image required")
	}
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req := &documentaipb.ProcessRequest{
		Name: r.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: image, MimeType: "image/png"},
		},
		ProcessOptions: &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				Hints: &documentaipb.OcrConfig_Hints{LanguageHints: LanguageHints(language)},
			},
		},
	}
	resp, err := r.process(ctx, req)
	if err != nil {
		return "", classifyRPCError("documentai ProcessDocument", err)
	}
	if resp == nil || resp.Document == nil {
		return "", nil
	}
	return strings.TrimSpace(resp.Document.Text), nil
}
