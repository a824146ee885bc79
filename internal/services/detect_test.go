package services_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/services"
	"github.com/teimsafety/ppectl/internal/shared"
	tu "github.com/teimsafety/ppectl/internal/testing"
)

func testBlob() *media.Blob {
	return &media.Blob{
		Name: "site.jpg",
		MIME: "image/jpeg",
		Kind: media.KindImage,
		Data: []byte("fake jpeg bytes"),
	}
}

func newDetectService(rt http.RoundTripper) *services.DetectService {
	cfg := shared.ServiceConfig{BaseURL: "http://example.com"}
	return services.NewDetectService(cfg, &http.Client{Transport: rt}, nil)
}

func TestDetectService(t *testing.T) {
	t.Run("Predict", func(t *testing.T) {
		t.Run("Parses JSON Response", func(t *testing.T) {
			body := `{
				"detections": [{"class": "helmet", "confidence": 0.91, "box": [10, 20, 110, 140]}],
				"summary": {"helmet": 1},
				"original_image": "/media/in/1.jpg",
				"annotated_image": "/media/out/1.jpg",
				"is_video": false
			}`
			svc := newDetectService(tu.NewMockRoundTripper(tu.JSONResponse(200, body), nil))

			result, err := svc.Predict(context.Background(), testBlob(), nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if len(result.Detections) != 1 {
				t.Fatalf("expected 1 detection, got %d", len(result.Detections))
			}
			if result.Detections[0].Label != "helmet" {
				t.Errorf("expected label helmet from legacy class key, got %s", result.Detections[0].Label)
			}
			if result.Detections[0].Confidence != 0.91 {
				t.Errorf("expected confidence 0.91, got %f", result.Detections[0].Confidence)
			}
			if result.Summary["helmet"] != 1 {
				t.Errorf("unexpected summary: %v", result.Summary)
			}
			if result.AnnotatedPath != "/media/out/1.jpg" {
				t.Errorf("unexpected annotated path: %s", result.AnnotatedPath)
			}
			if result.OriginalPath != "/media/in/1.jpg" {
				t.Errorf("unexpected original path: %s", result.OriginalPath)
			}
			if result.IsVideo {
				t.Error("expected is_video false")
			}
		})

		t.Run("Accepts Label Key", func(t *testing.T) {
			body := `{"detections": [{"label": "vest", "confidence": 0.5}], "summary": {"vest": 1}}`
			svc := newDetectService(tu.NewMockRoundTripper(tu.JSONResponse(200, body), nil))

			result, err := svc.Predict(context.Background(), testBlob(), nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Detections[0].Label != "vest" {
				t.Errorf("expected label vest, got %s", result.Detections[0].Label)
			}
		})

		t.Run("Handles Raw Annotated Media", func(t *testing.T) {
			annotated := []byte("annotated jpeg bytes")
			svc := newDetectService(tu.NewMockRoundTripper(tu.MediaResponse("image/jpeg", annotated), nil))

			result, err := svc.Predict(context.Background(), testBlob(), nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if !bytes.Equal(result.AnnotatedBytes, annotated) {
				t.Error("expected annotated bytes to round through")
			}
			if result.AnnotatedMIME != "image/jpeg" {
				t.Errorf("unexpected annotated MIME: %s", result.AnnotatedMIME)
			}
			if result.IsVideo {
				t.Error("image response should not be flagged as video")
			}
			if result.Detections == nil || len(result.Detections) != 0 {
				t.Errorf("expected empty detections, got %v", result.Detections)
			}
		})

		t.Run("Flags Raw Video Response", func(t *testing.T) {
			svc := newDetectService(tu.NewMockRoundTripper(tu.MediaResponse("video/mp4", []byte("mp4")), nil))

			result, err := svc.Predict(context.Background(), testBlob(), nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !result.IsVideo {
				t.Error("expected video response to be flagged")
			}
		})

		t.Run("Defaults Missing Fields", func(t *testing.T) {
			svc := newDetectService(tu.NewMockRoundTripper(tu.JSONResponse(200, `{}`), nil))

			result, err := svc.Predict(context.Background(), testBlob(), nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Detections == nil {
				t.Error("detections should default to an empty slice")
			}
			if result.Summary == nil {
				t.Error("summary should default to an empty map")
			}
		})

		t.Run("Reports Progress To Completion", func(t *testing.T) {
			// The capturing transport drains the request body, which is what
			// drives the progress callback.
			svc := newDetectService(&captureTransport{resp: tu.JSONResponse(200, `{}`)})

			var lastSent, lastTotal int64
			_, err := svc.Predict(context.Background(), testBlob(), func(sent, total int64) {
				lastSent, lastTotal = sent, total
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if lastTotal == 0 {
				t.Fatal("expected a known total body size")
			}
			if lastSent != lastTotal {
				t.Errorf("expected final progress %d/%d to be complete", lastSent, lastTotal)
			}
		})

		t.Run("Rejects Nil Blob", func(t *testing.T) {
			svc := newDetectService(tu.NewMockRoundTripper(tu.JSONResponse(200, `{}`), nil))

			_, err := svc.Predict(context.Background(), nil, nil)
			if !errors.Is(err, shared.ErrInvalidMedia) {
				t.Fatalf("expected ErrInvalidMedia, got %v", err)
			}
		})

		t.Run("Wraps Transport Failure", func(t *testing.T) {
			svc := newDetectService(tu.NewMockRoundTripper(nil, errors.New("connection refused")))

			_, err := svc.Predict(context.Background(), testBlob(), nil)
			if !errors.Is(err, shared.ErrTransport) {
				t.Fatalf("expected ErrTransport, got %v", err)
			}
		})

		t.Run("Wraps Malformed Body", func(t *testing.T) {
			svc := newDetectService(tu.NewMockRoundTripper(tu.JSONResponse(200, `{not json`), nil))

			_, err := svc.Predict(context.Background(), testBlob(), nil)
			if !errors.Is(err, shared.ErrTransport) {
				t.Fatalf("expected ErrTransport, got %v", err)
			}
		})

		t.Run("Surfaces Service Detail", func(t *testing.T) {
			svc := newDetectService(tu.NewMockRoundTripper(tu.JSONResponse(500, `{"detail": "model unavailable"}`), nil))

			_, err := svc.Predict(context.Background(), testBlob(), nil)
			if !errors.Is(err, shared.ErrService) {
				t.Fatalf("expected ErrService, got %v", err)
			}
			if !strings.Contains(err.Error(), "model unavailable") {
				t.Errorf("expected service detail in error, got %v", err)
			}
		})

		t.Run("Falls Back To Message Field", func(t *testing.T) {
			svc := newDetectService(tu.NewMockRoundTripper(tu.JSONResponse(400, `{"message": "bad upload"}`), nil))

			_, err := svc.Predict(context.Background(), testBlob(), nil)
			if err == nil || !strings.Contains(err.Error(), "bad upload") {
				t.Errorf("expected message field in error, got %v", err)
			}
		})

		t.Run("Falls Back To Status Code", func(t *testing.T) {
			svc := newDetectService(tu.NewMockRoundTripper(tu.TextResponse(500, "<html>oops</html>"), nil))

			_, err := svc.Predict(context.Background(), testBlob(), nil)
			if err == nil || !strings.Contains(err.Error(), "Server responded with status 500.") {
				t.Errorf("expected status fallback message, got %v", err)
			}
		})
	})
}
