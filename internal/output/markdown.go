package output

import (
	"fmt"
	"os"
	"strings"

	"github.com/dotcommander/pyright-action/internal/format"
	"github.com/dotcommander/pyright-action/internal/types"
)

// MarkdownFormatter formats output as Markdown, suitable for the job summary
type MarkdownFormatter struct {
	outputFile  string
	stepSummary func(markdown string)
}

// NewMarkdownFormatter creates a new MarkdownFormatter. When stepSummary is
// set the report is handed to it instead of being written to outputFile, as
// the step summary file is shared by all steps.
func NewMarkdownFormatter(outputFile string, stepSummary func(markdown string)) *MarkdownFormatter {
	return &MarkdownFormatter{
		outputFile:  outputFile,
		stepSummary: stepSummary,
	}
}

// Format writes the run as Markdown
func (f *MarkdownFormatter) Format(result *Result) error {
	if result.Report == nil {
		return fmt.Errorf("no report to format")
	}

	var builder strings.Builder
	summary := result.Report.Summary

	builder.WriteString(fmt.Sprintf("## %s Pyright %s\n\n", statusEmoji(result.ExitCode == 0), result.PyrightVersion))

	// Summary Table
	builder.WriteString("| Metric | Count |\n")
	builder.WriteString("|--------|-------|\n")
	builder.WriteString(fmt.Sprintf("| Files analyzed | %d |\n", summary.FilesAnalyzed))
	builder.WriteString(fmt.Sprintf("| Errors | %d |\n", summary.ErrorCount))
	builder.WriteString(fmt.Sprintf("| Warnings | %d |\n", summary.WarningCount))
	builder.WriteString(fmt.Sprintf("| Informations | %d |\n", summary.InformationCount))
	if result.Ignored > 0 {
		builder.WriteString(fmt.Sprintf("| Baseline (not annotated) | %d |\n", result.Ignored))
	}
	builder.WriteString("\n")

	var rows []types.Diagnostic
	for _, d := range result.Report.GeneralDiagnostics {
		if d.Severity != types.SeverityInformation {
			rows = append(rows, d)
		}
	}

	if len(rows) > 0 {
		builder.WriteString("| Location | Severity | Message | Rule |\n")
		builder.WriteString("|----------|----------|---------|------|\n")
		for _, d := range rows {
			builder.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				escapeCell(location(d, result.WorkingDirectory)),
				d.Severity,
				escapeCell(d.Message),
				codeCell(d.Rule)))
		}
		builder.WriteString("\n")
	}

	builder.WriteString(format.Summary(summary))
	builder.WriteString("\n")

	return f.write(builder.String())
}

func (f *MarkdownFormatter) write(content string) error {
	if f.stepSummary != nil {
		f.stepSummary(content)
		return nil
	}

	if err := os.WriteFile(f.outputFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
	}
	return nil
}

// location renders file:line:col, relative to root when possible.
func location(d types.Diagnostic, root string) string {
	file := d.File
	if root != "" {
		file = strings.TrimPrefix(file, strings.TrimSuffix(root, "/")+"/")
	}
	if d.Range == nil {
		return file
	}
	return fmt.Sprintf("%s:%d:%d", file, d.Range.Start.Line+1, d.Range.Start.Character+1)
}

// statusEmoji returns an emoji for the status
func statusEmoji(success bool) string {
	if success {
		return "✅"
	}
	return "❌"
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", "<br>")
}

func codeCell(s string) string {
	if s == "" {
		return ""
	}
	return "`" + s + "`"
}
