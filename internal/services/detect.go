// Inspection service [Detector] implementation
//
// Speaks the predict endpoint's multipart contract and understands both
// response shapes (JSON document, raw annotated media).
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/shared"
)

const defaultPredictPath = "/api/predict/"

// DetectService implements [Detector] against the remote inspection API.
type DetectService struct {
	baseURL     string
	predictPath string
	httpClient  *http.Client
	logger      *log.Logger
}

// NewDetectService creates a new inspection service client.
func NewDetectService(cfg shared.ServiceConfig, client *http.Client, logger *log.Logger) *DetectService {
	predictPath := cfg.PredictPath
	if predictPath == "" {
		predictPath = defaultPredictPath
	}
	if client == nil {
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &DetectService{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		predictPath: predictPath,
		httpClient:  client,
		logger:      logger,
	}
}

// BaseURL returns the service base address, used to resolve the relative
// media paths the service returns.
func (d *DetectService) BaseURL() string {
	return d.baseURL
}

// Predict submits the blob as the multipart "file" field and parses the
// response.
//
// Transport failures and malformed response bodies wrap
// [shared.ErrTransport]; structured non-2xx answers wrap [shared.ErrService]
// with the service-provided detail, falling back to the status code.
func (d *DetectService) Predict(ctx context.Context, blob *media.Blob, onProgress ProgressFunc) (*DetectionResult, error) {
	if blob == nil || len(blob.Data) == 0 {
		return nil, fmt.Errorf("%w: no media to submit", shared.ErrInvalidMedia)
	}

	body, contentType, err := buildMultipart(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}

	reader := &progressReader{
		r:     bytes.NewReader(body),
		total: int64(len(body)),
		fn:    onProgress,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+d.predictPath, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", shared.ErrService, errorMessage(resp.StatusCode, respBody))
	}

	respType := resp.Header.Get("Content-Type")
	if strings.HasPrefix(respType, "image/") || strings.HasPrefix(respType, "video/") {
		// Annotated media streamed back directly.
		return &DetectionResult{
			Detections:     []Detection{},
			Summary:        map[string]int{},
			IsVideo:        strings.HasPrefix(respType, "video/"),
			AnnotatedBytes: respBody,
			AnnotatedMIME:  respType,
		}, nil
	}

	var wire struct {
		Detections     []Detection    `json:"detections"`
		Summary        map[string]int `json:"summary"`
		OriginalImage  string         `json:"original_image"`
		AnnotatedImage string         `json:"annotated_image"`
		IsVideo        bool           `json:"is_video"`
	}
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", shared.ErrTransport, err)
	}

	// A degraded service may answer without a detections field; treat it
	// as an empty result rather than a failure.
	if wire.Detections == nil {
		wire.Detections = []Detection{}
	}
	if wire.Summary == nil {
		wire.Summary = map[string]int{}
	}

	d.logger.Debug("prediction received", "detections", len(wire.Detections), "is_video", wire.IsVideo)

	return &DetectionResult{
		Detections:    wire.Detections,
		Summary:       wire.Summary,
		OriginalPath:  wire.OriginalImage,
		AnnotatedPath: wire.AnnotatedImage,
		IsVideo:       wire.IsVideo,
	}, nil
}

// buildMultipart renders the full multipart body up front so the total size
// is known for progress reporting.
func buildMultipart(blob *media.Blob) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", blob.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(blob.Data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// errorMessage extracts a human-readable failure detail from a non-2xx body.
// JSON bodies are checked for detail, message, and error fields; anything
// else falls back to the status code.
func errorMessage(status int, body []byte) string {
	fallback := fmt.Sprintf("Server responded with status %d.", status)

	var wire struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return fallback
	}

	switch {
	case wire.Detail != "":
		return wire.Detail
	case wire.Message != "":
		return wire.Message
	case wire.Error != "":
		return wire.Error
	default:
		return fallback
	}
}

// progressReader counts bytes as the request body drains, reporting each
// increment to the progress callback.
type progressReader struct {
	r     io.Reader
	total int64
	sent  int64
	fn    ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.fn != nil {
			p.fn(p.sent, p.total)
		}
	}
	return n, err
}
