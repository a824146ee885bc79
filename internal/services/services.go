// package services defines clients for the remote HTTP collaborators
//
// Inspection (predict), notification (email), authentication (login/signup)
package services

import (
	"context"
	"encoding/json"

	"github.com/teimsafety/ppectl/internal/media"
)

// ProgressFunc reports upload progress while a request body is being sent.
// sent and total are byte counts; total covers the whole multipart body.
type ProgressFunc func(sent, total int64)

// Detector defines the interface for the remote visual-inspection service.
type Detector interface {
	// Predict submits a media blob for analysis and returns the parsed
	// result. onProgress, when non-nil, is called as body bytes are sent.
	Predict(ctx context.Context, blob *media.Blob, onProgress ProgressFunc) (*DetectionResult, error)
}

// Notifier defines the interface for the fire-and-forget notification
// collaborator.
type Notifier interface {
	Send(ctx context.Context, kind NotifyKind) error
}

// Detection is a single detected object.
type Detection struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box,omitempty"`
}

// UnmarshalJSON accepts both "label" and the service's legacy "class" key.
func (d *Detection) UnmarshalJSON(data []byte) error {
	var wire struct {
		Label      string    `json:"label"`
		Class      string    `json:"class"`
		Confidence float64   `json:"confidence"`
		Box        []float64 `json:"box"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	d.Label = wire.Label
	if d.Label == "" {
		d.Label = wire.Class
	}
	d.Confidence = wire.Confidence
	d.Box = wire.Box
	return nil
}

// DetectionResult is the parsed response of one prediction. Immutable once
// received.
//
// The service answers in one of two shapes: a JSON document carrying
// detections plus service-relative media paths, or the annotated media bytes
// directly. AnnotatedBytes is set only in the latter case.
type DetectionResult struct {
	Detections    []Detection
	Summary       map[string]int
	OriginalPath  string // service-relative path to the uploaded media
	AnnotatedPath string // service-relative path to the annotated media
	IsVideo       bool

	AnnotatedBytes []byte
	AnnotatedMIME  string
}
