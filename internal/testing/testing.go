// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/services"
)

// MockDetector is a scripted test double for [services.Detector].
//
// Progress points are reported before the call resolves; Gate, when non-nil,
// blocks resolution until the test releases it, which makes superseded
// submission races reproducible.
type MockDetector struct {
	Result   *services.DetectionResult
	Err      error
	Progress []int64 // sent values reported against Total
	Total    int64
	Gate     chan struct{}

	mu    sync.Mutex
	calls int
}

func (m *MockDetector) Predict(ctx context.Context, blob *media.Blob, onProgress services.ProgressFunc) (*services.DetectionResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	total := m.Total
	if total == 0 {
		total = 100
	}
	for _, sent := range m.Progress {
		if onProgress != nil {
			onProgress(sent, total)
		}
	}

	if m.Gate != nil {
		<-m.Gate
	}

	return m.Result, m.Err
}

// Calls reports how many times Predict was invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockNotifier records sends for [services.Notifier].
type MockNotifier struct {
	Err   error
	Kinds []services.NotifyKind
}

func (m *MockNotifier) Send(ctx context.Context, kind services.NotifyKind) error {
	m.Kinds = append(m.Kinds, kind)
	return m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File still exists: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// JSONResponse builds an [http.Response] with a JSON body for use with
// [MockRoundTripper].
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// TextResponse builds an [http.Response] with a plain-text body.
func TextResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// MediaResponse builds an [http.Response] carrying raw media bytes.
func MediaResponse(contentType string, body []byte) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{contentType}},
		Body:       io.NopCloser(bytes.NewReader(body)),
	}
}
