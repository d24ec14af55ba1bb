package gcp

import (
	"context"
	"errors"
	"testing"
	"time"

	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apperrors "github.com/yungbote/docvault-backend/internal/pkg/errors"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

func TestLanguageHints(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"vie+eng", []string{"vi", "en"}},
		{" eng ", []string{"en"}},
		{"chi_sim+xyz+eng+eng", []string{"zh", "xyz", "en"}},
		{"", []string{}},
	}
	for _, tc := range cases {
		got := LanguageHints(tc.in)
		if len(got) != len(tc.want) {
			t.Fatalf("LanguageHints(%q): got %v want %v", tc.in, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("LanguageHints(%q): got %v want %v", tc.in, got, tc.want)
			}
		}
	}
}

func testRecognizer(fn annotateFunc) *VisionRecognizer {
	return &VisionRecognizer{log: logger.Nop(), annotate: fn, timeout: 5 * time.Second}
}

func TestVisionRecognizer_Recognize(t *testing.T) {
	var seen *visionpb.BatchAnnotateImagesRequest
	r := testRecognizer(func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		seen = req
		return &visionpb.BatchAnnotateImagesResponse{Responses: []*visionpb.AnnotateImageResponse{
			{FullTextAnnotation: &visionpb.TextAnnotation{Text: " Xin chào \n"}},
		}}, nil
	})
	text, err := r.Recognize(context.Background(), []byte{1}, "vie+eng")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "Xin chào" {
		t.Fatalf("unexpected text %q", text)
	}
	hints := seen.Requests[0].ImageContext.LanguageHints
	if len(hints) != 2 || hints[0] != "vi" {
		t.Fatalf("unexpected hints %v", hints)
	}
}

func TestVisionRecognizer_ErrorClassification(t *testing.T) {
	unavailable := testRecognizer(func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return nil, status.Error(codes.Unauthenticated, "bad creds")
	})
	if _, err := unavailable.Recognize(context.Background(), []byte{1}, "eng"); !errors.Is(err, apperrors.ErrEngineUnavailable) {
		t.Fatalf("expected engine unavailable, got %v", err)
	}

	invalid := testRecognizer(func(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest) (*visionpb.BatchAnnotateImagesResponse, error) {
		return nil, status.Error(codes.InvalidArgument, "bad hint")
	})
	_, err := invalid.Recognize(context.Background(), []byte{1}, "xyz")
	if err == nil || errors.Is(err, apperrors.ErrEngineUnavailable) {
		t.Fatalf("expected per-language failure, got %v", err)
	}
}
