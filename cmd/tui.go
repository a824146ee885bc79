package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/teimsafety/ppectl/internal/media"
	"github.com/teimsafety/ppectl/internal/present"
	"github.com/teimsafety/ppectl/internal/shared"
	"github.com/teimsafety/ppectl/internal/submit"
	"github.com/teimsafety/ppectl/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for PPE checks.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/ppectl-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ledger, err := media.NewLedger("", r.logger)
	if err != nil {
		return err
	}
	defer ledger.RevokeAll()

	source := media.NewSource(ledger, r.logger)
	controller := submit.NewController(r.detector, r.logger)
	defer controller.Teardown()

	presenter := present.NewPresenter(ledger, r.notifier, r.detector.BaseURL(), r.logger)

	model := ui.NewModel(ctx, source, r.config.Camera, controller, presenter)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
