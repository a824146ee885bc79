// package formatter provides functions to export inspection results to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/teimsafety/ppectl/internal/present"
)

// Checkpoint is one row of the machine quality check table.
type Checkpoint struct {
	ID       int
	Name     string
	Status   string
	DateTime string
}

// ExportToCSV converts a display model to CSV with columns: Label, Confidence, Box
// followed by a summary section.
func ExportToCSV(display *present.Display) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Label", "Confidence", "Box"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, det := range display.Detections {
		record := []string{
			det.Label,
			strconv.FormatFloat(det.Confidence, 'f', 4, 64),
			formatBox(det.Box),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	for _, row := range display.Summary {
		record := []string{"summary:" + row.Label, strconv.Itoa(row.Count), ""}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a display model to a Markdown report.
func ExportToMarkdown(display *present.Display) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Inspection Report\n\n")

	if display.AnnotatedURL != "" {
		buf.WriteString(fmt.Sprintf("![Annotated](%s)\n\n", display.AnnotatedURL))
	}

	buf.WriteString(fmt.Sprintf("**Detections**: %d\n\n", len(display.Detections)))

	if len(display.Summary) > 0 {
		buf.WriteString("## Summary\n\n")
		buf.WriteString("| Label | Count |\n|---|---|\n")
		for _, row := range display.Summary {
			buf.WriteString(fmt.Sprintf("| %s | %d |\n", row.Label, row.Count))
		}
		buf.WriteString("\n")
	}

	if len(display.Detections) > 0 {
		buf.WriteString("## Detections\n\n")
		for i, det := range display.Detections {
			buf.WriteString(fmt.Sprintf("%d. %s (%.0f%%)\n", i+1, det.Label, det.Confidence*100))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a display model to plain text.
func ExportToText(display *present.Display) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("Inspection Report\n")
	buf.WriteString(strings.Repeat("=", 40) + "\n\n")

	if len(display.Summary) == 0 {
		buf.WriteString("No objects detected.\n")
	}
	for _, row := range display.Summary {
		buf.WriteString(fmt.Sprintf("%-20s %d\n", row.Label, row.Count))
	}

	if len(display.Detections) > 0 {
		buf.WriteString("\nDetections:\n")
		for i, det := range display.Detections {
			buf.WriteString(fmt.Sprintf("  %d. %s (%.0f%% confidence)\n", i+1, det.Label, det.Confidence*100))
		}
	}

	if display.AnnotatedURL != "" {
		buf.WriteString(fmt.Sprintf("\nAnnotated media: %s\n", display.AnnotatedURL))
	}

	return buf.Bytes(), nil
}

// ExportCheckpointsCSV renders the machine quality check table as CSV.
func ExportCheckpointsCSV(checkpoints []Checkpoint) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Checkpoint", "Status", "DateTime"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, cp := range checkpoints {
		record := []string{strconv.Itoa(cp.ID), cp.Name, cp.Status, cp.DateTime}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportCheckpointsMarkdown renders the machine quality check table as Markdown.
func ExportCheckpointsMarkdown(checkpoints []Checkpoint) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Machine Quality Check\n\n")
	buf.WriteString("| ID | Checkpoint | Status | Date & Time |\n|---|---|---|---|\n")
	for _, cp := range checkpoints {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", cp.ID, cp.Name, cp.Status, cp.DateTime))
	}

	return buf.Bytes()
}

// ExportCheckpointsText renders the machine quality check table as aligned text.
func ExportCheckpointsText(checkpoints []Checkpoint) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%-4s %-12s %-12s %s\n", "ID", "Checkpoint", "Status", "Date & Time"))
	buf.WriteString(strings.Repeat("-", 48) + "\n")
	for _, cp := range checkpoints {
		buf.WriteString(fmt.Sprintf("%-4d %-12s %-12s %s\n", cp.ID, cp.Name, cp.Status, cp.DateTime))
	}

	return buf.Bytes()
}

func formatBox(box []float64) string {
	if len(box) == 0 {
		return ""
	}
	parts := make([]string, len(box))
	for i, v := range box {
		parts[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strings.Join(parts, ";")
}
