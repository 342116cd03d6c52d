// Package render turns reports and plan results into terminal output. Table
// output uses go-pretty with status colouring; json and yaml emit the
// structured objects as-is for scripting.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"github.com/MAVRICK-1/kubestellar-mcp/internal/lifecycle"
	"github.com/MAVRICK-1/kubestellar-mcp/internal/probe"
)

// Format selects the output representation.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an output format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatTable, FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported output format %q: use table, json, or yaml", s)
	}
}

// Report writes a diagnostics report in the requested format.
func Report(w io.Writer, format Format, report probe.Report) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatYAML:
		return WriteYAML(w, report)
	default:
		return reportTable(w, report)
	}
}

// PlanResult writes a lifecycle plan result in the requested format.
func PlanResult(w io.Writer, format Format, result lifecycle.PlanResult) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatYAML:
		return WriteYAML(w, result)
	default:
		return planTable(w, result)
	}
}

func reportTable(w io.Writer, report probe.Report) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("CHECK"),
		text.FgHiCyan.Sprint("CATEGORY"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("DETAIL"),
	})

	for _, r := range report.Results {
		detail := r.Summary
		if r.Remediation != "" {
			detail = fmt.Sprintf("%s\n%s", r.Summary, text.FgHiBlack.Sprint(r.Remediation))
		}
		t.AppendRow(table.Row{r.Probe, r.Category, probeStatusCell(r.Status), detail})
	}
	t.Render()

	fmt.Fprintf(w, "\nOverall: %s (%s)\n", probeStatusCell(report.Overall), report.Timestamp.Format(time.RFC3339))
	return nil
}

func planTable(w io.Writer, result lifecycle.PlanResult) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("STEP"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("ERROR"),
	})

	for _, o := range result.Outcomes {
		errText := "-"
		if o.Error != "" {
			errText = o.Error
		}
		t.AppendRow(table.Row{o.Step, stepStatusCell(o.Status), errText})
	}
	t.Render()

	status := text.FgGreen.Sprint(result.Status)
	if result.Status != lifecycle.PlanSucceeded {
		status = text.FgRed.Sprint(result.Status)
	}
	fmt.Fprintf(w, "\nPlan %s: %s\n", result.Plan, status)

	if len(result.CompensationFailures) > 0 {
		fmt.Fprintf(w, "%s\n", text.FgRed.Sprint("Rollback could not fully unwind; manual intervention needed:"))
		for _, failure := range result.CompensationFailures {
			fmt.Fprintf(w, "  - %s\n", failure)
		}
	}
	return nil
}

func probeStatusCell(status probe.Status) string {
	switch status {
	case probe.StatusOK:
		return text.FgGreen.Sprint("✅ ok")
	case probe.StatusDegraded:
		return text.FgYellow.Sprint("⚠️  degraded")
	case probe.StatusFailed:
		return text.FgRed.Sprint("❌ failed")
	case probe.StatusSkipped:
		return text.FgHiBlack.Sprint("⏭  skipped")
	default:
		return string(status)
	}
}

func stepStatusCell(status lifecycle.StepStatus) string {
	switch status {
	case lifecycle.StepSucceeded:
		return text.FgGreen.Sprint("✅ " + string(status))
	case lifecycle.StepFailed, lifecycle.StepCompensationFailed:
		return text.FgRed.Sprint("❌ " + string(status))
	case lifecycle.StepCompensated:
		return text.FgYellow.Sprint("↩  " + string(status))
	case lifecycle.StepSkipped:
		return text.FgHiBlack.Sprint("⏭  " + string(status))
	default:
		return string(status)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteYAML emits v as YAML keyed by its json field names.
func WriteYAML(w io.Writer, v interface{}) error {
	// Round-trip through JSON so the yaml output follows the same field
	// names the json tags declare.
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return err
	}
	out, err := yaml.Marshal(generic)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// Strip returns s with rendering artifacts removed; used by tests comparing
// plain content.
func Strip(s string) string {
	return text.StripEscape(strings.TrimSpace(s))
}
