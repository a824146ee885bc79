package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/teimsafety/ppectl/internal/formatter"
	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/present"
	"github.com/teimsafety/ppectl/internal/shared"
	"github.com/teimsafety/ppectl/internal/submit"
	"github.com/urfave/cli/v3"
)

// CheckFile submits a local image or video file for analysis and prints the
// detection report.
func (r *Runner) CheckFile(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to an image or video file", shared.ErrMissingArgument)
	}

	return r.runCheck(ctx, cmd, func(source *media.Source) (*media.Blob, error) {
		return source.FromFile(path)
	})
}

// CheckCamera captures one frame from the configured camera and submits it.
func (r *Runner) CheckCamera(ctx context.Context, cmd *cli.Command) error {
	return r.runCheck(ctx, cmd, func(source *media.Source) (*media.Blob, error) {
		session, err := media.OpenCamera(r.config.Camera)
		if err != nil {
			return nil, err
		}
		defer session.Close()

		return source.Capture(session)
	})
}

// runCheck drives one submission end to end: acquire, submit, stream progress
// until the controller settles, then present and export.
func (r *Runner) runCheck(ctx context.Context, cmd *cli.Command, acquire func(*media.Source) (*media.Blob, error)) error {
	ledger, err := media.NewLedger("", r.logger)
	if err != nil {
		return err
	}
	defer ledger.RevokeAll()

	source := media.NewSource(ledger, r.logger)
	blob, err := acquire(source)
	if err != nil {
		return err
	}

	controller := submit.NewController(r.detector, r.logger)
	defer controller.Teardown()

	controller.Acquire(blob)
	if err := controller.Submit(ctx); err != nil {
		return err
	}

	snapshot := r.waitForOutcome(controller)
	if snapshot.State == submit.StateFailed {
		return snapshot.Err
	}

	presenter := present.NewPresenter(ledger, r.notifier, r.detector.BaseURL(), r.logger)
	display, err := presenter.Present(snapshot.Result)
	if err != nil {
		return err
	}

	if save := cmd.String("save"); save != "" {
		if err := r.saveAnnotated(ledger, save); err != nil {
			return err
		}
		r.writePlain("✓ Annotated media saved to %s\n", save)
	}

	if export := cmd.String("export"); export != "" {
		if err := r.exportReport(display, export); err != nil {
			return err
		}
		r.writePlain("✓ Report exported to %s\n", export)
	}

	if cmd.Bool("json") {
		return r.writeJSON(display, cmd.Bool("pretty"))
	}

	text, err := formatter.ExportToText(display)
	if err != nil {
		return err
	}
	return r.writePlain("%s", string(text))
}

// waitForOutcome consumes controller events, echoing upload progress, until
// the submission completes or fails.
func (r *Runner) waitForOutcome(controller *submit.Controller) submit.Snapshot {
	for range controller.Events() {
		snapshot := controller.Snapshot()
		switch snapshot.State {
		case submit.StateSubmitting:
			r.writePlain("\ruploading... %3d%%", snapshot.Progress)
		case submit.StateCompleted, submit.StateFailed:
			r.writePlain("\r                  \r")
			return snapshot
		}
	}
	return controller.Snapshot()
}

// saveAnnotated copies the annotated result handle out of the ledger before
// teardown revokes it.
func (r *Runner) saveAnnotated(ledger *media.Ledger, dest string) error {
	handle, ok := ledger.Handle(media.PurposeResult)
	if !ok {
		return fmt.Errorf("%w: service returned no annotated media to save", shared.ErrInvalidInput)
	}

	data, err := os.ReadFile(handle)
	if err != nil {
		return fmt.Errorf("failed to read annotated media: %w", err)
	}

	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to save annotated media: %w", err)
	}
	return nil
}

// exportReport writes the detection report in the format implied by the
// destination's extension.
func (r *Runner) exportReport(display *present.Display, dest string) error {
	var data []byte
	var err error

	switch strings.ToLower(filepath.Ext(dest)) {
	case ".csv":
		data, err = formatter.ExportToCSV(display)
	case ".md":
		data, err = formatter.ExportToMarkdown(display)
	default:
		data, err = formatter.ExportToText(display)
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(dest, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
