// package present merges a raw service response into a display-ready model
// for the view layer, and exposes the notification trigger hook.
package present

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/services"
	"github.com/teimsafety/ppectl/internal/shared"
)

// SummaryRow is one label/count pair for tabular display, sorted by label.
type SummaryRow struct {
	Label string
	Count int
}

// Display is the renderable form of a completed submission.
type Display struct {
	OriginalURL  string // resolvable address of the uploaded media, may be empty
	AnnotatedURL string // resolvable address or local handle of the annotated media
	IsVideo      bool
	Detections   []services.Detection
	Summary      []SummaryRow
}

// Presenter converts detection results into display models. When the service
// streams annotated bytes directly they are published through the ledger's
// result slot; relative paths are resolved against the service base address.
type Presenter struct {
	ledger   *media.Ledger
	notifier services.Notifier
	baseURL  string
	logger   *log.Logger
}

// NewPresenter creates a Presenter publishing result media through ledger.
func NewPresenter(ledger *media.Ledger, notifier services.Notifier, baseURL string, logger *log.Logger) *Presenter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Presenter{
		ledger:   ledger,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
	}
}

// Present derives the display model for a completed submission.
func (p *Presenter) Present(result *services.DetectionResult) (*Display, error) {
	if result == nil {
		return nil, fmt.Errorf("%w: no result to present", shared.ErrInvalidInput)
	}

	display := &Display{
		IsVideo:    result.IsVideo,
		Detections: result.Detections,
		Summary:    summaryRows(result.Summary),
	}

	if len(result.AnnotatedBytes) > 0 {
		if p.ledger == nil {
			return nil, fmt.Errorf("%w: no ledger to hold annotated media", shared.ErrInvalidInput)
		}
		handle, err := p.ledger.Publish(media.PurposeResult, result.AnnotatedBytes, extensionFor(result.AnnotatedMIME))
		if err != nil {
			return nil, fmt.Errorf("failed to publish annotated media: %w", err)
		}
		display.AnnotatedURL = handle
	} else {
		display.AnnotatedURL = p.resolve(result.AnnotatedPath)
	}

	display.OriginalURL = p.resolve(result.OriginalPath)
	return display, nil
}

// Notify fires the fixed notification for kind. Failures never touch
// submission state; the caller surfaces them as a transient alert only.
func (p *Presenter) Notify(ctx context.Context, kind services.NotifyKind) error {
	if p.notifier == nil {
		return fmt.Errorf("%w: notifier not configured", shared.ErrInvalidInput)
	}

	if err := p.notifier.Send(ctx, kind); err != nil {
		p.logger.Warn("notification failed", "kind", string(kind), "err", err)
		return err
	}
	return nil
}

// resolve turns a service-relative media path into an absolute address.
func (p *Presenter) resolve(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return p.baseURL + path
}

func summaryRows(summary map[string]int) []SummaryRow {
	rows := make([]SummaryRow, 0, len(summary))
	for label, count := range summary {
		rows = append(rows, SummaryRow{Label: label, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows
}

// extensionFor picks a file extension for ledger handles from the annotated
// media content type.
func extensionFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/png"):
		return ".png"
	case strings.HasPrefix(mimeType, "image/"):
		return ".jpg"
	case strings.HasPrefix(mimeType, "video/"):
		return ".mp4"
	default:
		return ".bin"
	}
}
