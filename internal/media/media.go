// package media acquires inspection media from local files or a camera
// device and normalizes both paths into a single blob representation.
//
// Each successful acquisition publishes a preview handle through [Ledger],
// replacing any previous preview.
package media

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/teimsafety/ppectl/internal/shared"
)

// Kind classifies a blob as still image or video.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// Blob is an opaque media payload ready for submission. It is never mutated
// after creation.
type Blob struct {
	Name string // original filename, used as the multipart filename
	MIME string
	Kind Kind
	Data []byte
}

// Source normalizes the two acquisition paths (file picker, camera) into
// blobs, publishing a preview handle for each.
type Source struct {
	ledger *Ledger
	fs     fileReader
	logger *log.Logger
}

// fileReader abstracts file access so picker validation is testable without
// touching the real filesystem.
type fileReader interface {
	ReadFile(path string) ([]byte, error)
}

// NewSource creates a Source publishing previews through the given ledger.
func NewSource(ledger *Ledger, logger *log.Logger) *Source {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Source{ledger: ledger, fs: osFileReader{}, logger: logger}
}

// FromFile reads and validates a media file, classifies its kind from the
// MIME type prefix, and publishes a preview handle.
//
// Empty or unreadable files and files that are neither image/* nor video/*
// fail with [shared.ErrInvalidMedia]; no handle is created in that case.
func (s *Source) FromFile(path string) (*Blob, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no file selected", shared.ErrInvalidMedia)
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrInvalidMedia, path, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", shared.ErrInvalidMedia, path)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	kind, err := classify(mimeType)
	if err != nil {
		return nil, err
	}

	blob := &Blob{
		Name: filepath.Base(path),
		MIME: mimeType,
		Kind: kind,
		Data: data,
	}

	if s.ledger != nil {
		if _, err := s.ledger.Publish(PurposePreview, data, filepath.Ext(path)); err != nil {
			return nil, fmt.Errorf("failed to publish preview: %w", err)
		}
	}

	s.logger.Debug("media acquired from file", "path", path, "kind", kind.String(), "bytes", len(data))
	return blob, nil
}

// Capture takes a single still frame from the given camera session, encodes
// it as JPEG, and publishes a preview handle. Fails with
// [shared.ErrCaptureUnavailable] when no frame can be obtained.
func (s *Source) Capture(session *CameraSession) (*Blob, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: no camera session", shared.ErrCaptureUnavailable)
	}

	frame, err := session.Still()
	if err != nil {
		return nil, err
	}

	blob := &Blob{
		Name: "camera_capture.jpg",
		MIME: "image/jpeg",
		Kind: KindImage,
		Data: frame,
	}

	if s.ledger != nil {
		if _, err := s.ledger.Publish(PurposePreview, frame, ".jpg"); err != nil {
			return nil, fmt.Errorf("failed to publish preview: %w", err)
		}
	}

	s.logger.Debug("media captured from camera", "bytes", len(frame))
	return blob, nil
}

type osFileReader struct{}

func (osFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// classify maps a MIME type to a media kind by its prefix.
func classify(mimeType string) (Kind, error) {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage, nil
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo, nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %q", shared.ErrInvalidMedia, mimeType)
	}
}
