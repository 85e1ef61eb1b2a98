package output

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"

	"github.com/dotcommander/pyright-action/internal/annotate"
	"github.com/dotcommander/pyright-action/internal/baseline"
	"github.com/dotcommander/pyright-action/internal/format"
	"github.com/dotcommander/pyright-action/internal/ghactions"
	"github.com/dotcommander/pyright-action/internal/types"
)

// ConsoleFormatter writes diagnostics to the job log and turns the selected
// ones into workflow annotations.
type ConsoleFormatter struct {
	host     *ghactions.Host
	annotate annotate.Set
	baseline *baseline.Baseline
	renderer *lipgloss.Renderer
}

// NewConsoleFormatter creates a new ConsoleFormatter. b may be nil.
func NewConsoleFormatter(host *ghactions.Host, set annotate.Set, b *baseline.Baseline) *ConsoleFormatter {
	return &ConsoleFormatter{
		host:     host,
		annotate: set,
		baseline: b,
		renderer: lipgloss.NewRenderer(host.Out),
	}
}

// Format logs every diagnostic and annotates those selected by the set
func (f *ConsoleFormatter) Format(result *Result) error {
	if result.Report == nil {
		return fmt.Errorf("no report to format")
	}

	for _, diag := range result.Report.GeneralDiagnostics {
		f.host.Info(format.Diagnostic(diag, false))

		if diag.Severity == types.SeverityInformation || !f.annotate.Has(diag.Severity) {
			continue
		}
		if f.baseline.IsKnown(diag) {
			result.Ignored++
			continue
		}

		f.host.Issue(string(diag.Severity), annotationProperties(diag), format.Diagnostic(diag, true))
		result.Annotated++
	}

	f.printSummary(result)
	return nil
}

// annotationProperties locates the annotation; diagnostics without a range
// are pinned to the first line.
func annotationProperties(diag types.Diagnostic) []ghactions.Property {
	line, col := 0, 0
	if diag.Range != nil {
		line, col = diag.Range.Start.Line, diag.Range.Start.Character
	}
	return []ghactions.Property{
		{Key: "file", Value: diag.File},
		{Key: "line", Value: strconv.Itoa(line + 1)},
		{Key: "col", Value: strconv.Itoa(col + 1)},
	}
}

// printSummary prints the summary statistics
func (f *ConsoleFormatter) printSummary(result *Result) {
	summary := result.Report.Summary

	style := f.renderer.NewStyle().Foreground(lipgloss.Color("10")) // green
	if summary.ErrorCount > 0 {
		style = f.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9")) // red
	} else if summary.WarningCount > 0 {
		style = f.renderer.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	}
	f.host.Info(style.Render(format.Summary(summary)))

	if result.Ignored > 0 {
		f.host.Info(fmt.Sprintf("%s not annotated (baseline)", format.Pluralize(result.Ignored, "known diagnostic", "known diagnostics")))
	}
}
