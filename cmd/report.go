package main

import (
	"context"
	"fmt"
	"os"

	"github.com/teimsafety/ppectl/internal/formatter"
	"github.com/teimsafety/ppectl/internal/services"
	"github.com/teimsafety/ppectl/internal/shared"
	"github.com/urfave/cli/v3"
)

// machineCheckpoints is the fixed machine quality check table.
var machineCheckpoints = []formatter.Checkpoint{
	{ID: 1, Name: "LOCK", Status: "Passed", DateTime: "2024-03-11 10:02"},
	{ID: 2, Name: "WIRES", Status: "Failed", DateTime: "2024-03-11 10:07"},
	{ID: 3, Name: "LOGO", Status: "Passed", DateTime: "2024-03-11 10:11"},
	{ID: 4, Name: "STICKERS", Status: "Passed", DateTime: "2024-03-11 10:14"},
}

// ReportMachine renders the machine checkpoint table as text or CSV.
func (r *Runner) ReportMachine(ctx context.Context, cmd *cli.Command) error {
	var data []byte
	var err error

	switch cmd.String("format") {
	case "csv":
		data, err = formatter.ExportCheckpointsCSV(machineCheckpoints)
		if err != nil {
			return err
		}
	case "md":
		data = formatter.ExportCheckpointsMarkdown(machineCheckpoints)
	case "text", "":
		data = formatter.ExportCheckpointsText(machineCheckpoints)
	default:
		return fmt.Errorf("%w: format must be text, csv or md", shared.ErrInvalidFlag)
	}

	if output := cmd.String("output"); output != "" {
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		return r.writePlain("✓ Report written to %s\n", output)
	}

	r.writePlainHeader("Machine Quality Check")
	return r.writePlain("%s", string(data))
}

// Notify sends the fixed safety notification for the given kind.
func (r *Runner) Notify(ctx context.Context, cmd *cli.Command) error {
	kind := services.NotifyKind(cmd.StringArg("kind"))
	if kind == "" {
		kind = services.NotifyPPE
	}

	if err := r.notifier.Send(ctx, kind); err != nil {
		return err
	}

	return r.writePlain("✓ Notification sent\n")
}
