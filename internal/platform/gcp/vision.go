package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/ctxutil"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type annotateFunc func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error)

// VisionRecognizer runs DOCUMENT_TEXT_DETECTION with the language spec passed as hints.
type VisionRecognizer struct {
	log      *logger.Logger
	client   *vision.ImageAnnotatorClient
	annotate annotateFunc
	timeout  time.Duration
}

func NewVisionRecognizer(ctx context.Context, log *logger.Logger) (*VisionRecognizer, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	ctx = ctxutil.Default(ctx)
	client, err := vision.NewImageAnnotatorClient(ctx, ClientOptionsFromEnv()...)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	r := &VisionRecognizer{
		log:     log.With("service", "gcp.Vision"),
		client:  client,
		timeout: 60 * time.Second,
	}
	r.annotate = func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return client.BatchAnnotateImages(ctx, req)
	}
	return r, nil
}

func (r *VisionRecognizer) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *VisionRecognizer) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("image required")
	}
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req := &visionpb.AnnotateImageRequest{
		Image: &visionpb.Image{Content: image},
		Features: []*visionpb.Feature{
			{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
		},
		ImageContext: &visionpb.ImageContext{LanguageHints: LanguageHints(language)},
	}
	resp, err := r.annotate(ctx, &visionpb.BatchAnnotateImagesRequest{Requests: []*visionpb.AnnotateImageRequest{req}})
	if err != nil {
		return "", classifyRPCError("vision BatchAnnotateImages", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return "", nil
	}
	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return "", fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}
	if r0.FullTextAnnotation == nil {
		return "", nil
	}
	return strings.TrimSpace(r0.FullTextAnnotation.Text), nil
}

// classifyRPCError marks transport and credential failures as engine-unavailable so the
// language loop stops instead of trying the next candidate.
func classifyRPCError(call string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	switch status.Code(err) {
	case codes.Unavailable, codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%s: %w: %w", call, apperrors.ErrEngineUnavailable, err)
	default:
		return fmt.Errorf("%s: %w", call, err)
	}
}

// tesseract traineddata names to BCP-47 hints
var tesseractToBCP47 = map[string]string{
	"eng":     "en",
	"vie":     "vi",
	"fra":     "fr",
	"deu":     "de",
	"spa":     "es",
	"ita":     "it",
	"por":     "pt",
	"rus":     "ru",
	"jpn":     "ja",
	"kor":     "ko",
	"tha":     "th",
	"chi_sim": "zh",
	"chi_tra": "zh-Hant",
}

// LanguageHints turns a tesseract language spec like "vie+eng" into Vision hints.
// Unknown codes are passed through as-is.
func LanguageHints(spec string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, part := range strings.Split(spec, "+") {
		code := strings.ToLower(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		if hint, ok := tesseractToBCP47[code]; ok {
			code = hint
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}
