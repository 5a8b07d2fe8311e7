package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/amosWeiskopf/headsmith/internal/models"
)

// Supported report formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatNone     = "none"
)

// Reporter renders batch reports for the operator
type Reporter struct {
	format string
}

// New creates a Reporter for the given format
func New(format string) (*Reporter, error) {
	switch format {
	case FormatText, FormatJSON, FormatMarkdown, FormatNone:
		return &Reporter{format: format}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// Render returns the report in the configured format; "none" yields ""
func (r *Reporter) Render(report *models.BatchReport) (string, error) {
	switch r.format {
	case FormatJSON:
		return r.generateJSON(report)
	case FormatMarkdown:
		return r.generateMarkdown(report), nil
	case FormatNone:
		return "", nil
	default:
		return r.generateText(report), nil
	}
}

func (r *Reporter) generateJSON(report *models.BatchReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data) + "\n", nil
}

func (r *Reporter) generateText(report *models.BatchReport) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Processed %d URLs: %d operations succeeded, %d failed (%s)\n",
		report.URLs, report.Succeeded(), len(report.Failed()), elapsed(report))

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, o := range report.Outcomes {
		status, detail := "ok", o.Path
		if !o.OK() {
			status, detail = "FAIL", o.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", status, o.Operation, o.URL, detail)
	}
	tw.Flush()

	return buf.String()
}

func (r *Reporter) generateMarkdown(report *models.BatchReport) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Batch Report\n\n")
	fmt.Fprintf(&buf, "*Started %s, took %s*\n\n", report.StartedAt.Format(time.RFC3339), elapsed(report))

	fmt.Fprintf(&buf, "| Metric | Value |\n")
	fmt.Fprintf(&buf, "|--------|-------|\n")
	fmt.Fprintf(&buf, "| URLs | %d |\n", report.URLs)
	fmt.Fprintf(&buf, "| Succeeded | %d |\n", report.Succeeded())
	fmt.Fprintf(&buf, "| Failed | %d |\n\n", len(report.Failed()))

	if len(report.Outcomes) > 0 {
		fmt.Fprintf(&buf, "## Outcomes\n\n")
		fmt.Fprintf(&buf, "| URL | Operation | Status | Detail |\n")
		fmt.Fprintf(&buf, "|-----|-----------|--------|--------|\n")
		for _, o := range report.Outcomes {
			status, detail := "ok", o.Path
			if !o.OK() {
				status, detail = "failed", o.Error
			}
			fmt.Fprintf(&buf, "| %s | %s | %s | %s |\n", o.URL, o.Operation, status, escapeCell(detail))
		}
		fmt.Fprintf(&buf, "\n")
	}

	return buf.String()
}

func elapsed(report *models.BatchReport) time.Duration {
	if report.FinishedAt.Before(report.StartedAt) {
		return 0
	}
	return report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
