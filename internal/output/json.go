package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dotcommander/pyright-action/internal/types"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	actionVersion string
	indent        bool
	outputFile    string
}

// NewJSONFormatter creates a new JSONFormatter
func NewJSONFormatter(actionVersion string, indent bool, outputFile string) *JSONFormatter {
	return &JSONFormatter{
		actionVersion: actionVersion,
		indent:        indent,
		outputFile:    outputFile,
	}
}

// Format writes the run as a JSON report
func (f *JSONFormatter) Format(result *Result) error {
	if result.Report == nil {
		return fmt.Errorf("no report to format")
	}

	report := JSONReport{
		Header: JSONHeader{
			Tool:           "pyright-action",
			Version:        f.actionVersion,
			PyrightVersion: result.PyrightVersion,
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
		},
		Summary: JSONSummary{
			FilesAnalyzed:    result.Report.Summary.FilesAnalyzed,
			ErrorCount:       result.Report.Summary.ErrorCount,
			WarningCount:     result.Report.Summary.WarningCount,
			InformationCount: result.Report.Summary.InformationCount,
			ExitCode:         result.ExitCode,
			Annotated:        result.Annotated,
			Ignored:          result.Ignored,
		},
		Diagnostics: make([]JSONDiagnostic, 0, len(result.Report.GeneralDiagnostics)),
	}
	if !result.StartTime.IsZero() {
		report.Summary.Duration = time.Since(result.StartTime).Round(time.Millisecond).String()
	}

	for _, d := range result.Report.GeneralDiagnostics {
		jd := JSONDiagnostic{
			File:     d.File,
			Severity: d.Severity,
			Message:  d.Message,
			Rule:     d.Rule,
		}
		if d.Range != nil {
			// One-based, as shown in the log
			jd.Line = d.Range.Start.Line + 1
			jd.Column = d.Range.Start.Character + 1
		}
		report.Diagnostics = append(report.Diagnostics, jd)
	}

	var jsonBytes []byte
	var err error
	if f.indent {
		jsonBytes, err = json.MarshalIndent(report, "", "  ")
	} else {
		jsonBytes, err = json.Marshal(report)
	}
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	if err := os.WriteFile(f.outputFile, append(jsonBytes, '\n'), 0644); err != nil {
		return fmt.Errorf("error writing to file %s: %w", f.outputFile, err)
	}

	return nil
}

// JSONReport represents the complete JSON report structure
type JSONReport struct {
	Header      JSONHeader       `json:"header"`
	Summary     JSONSummary      `json:"summary"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
}

// JSONHeader contains report metadata
type JSONHeader struct {
	Tool           string `json:"tool"`
	Version        string `json:"version"`
	PyrightVersion string `json:"pyright_version"`
	Timestamp      string `json:"timestamp"`
}

// JSONSummary contains summary statistics
type JSONSummary struct {
	FilesAnalyzed    int    `json:"files_analyzed"`
	ErrorCount       int    `json:"error_count"`
	WarningCount     int    `json:"warning_count"`
	InformationCount int    `json:"information_count"`
	ExitCode         int    `json:"exit_code"`
	Annotated        int    `json:"annotated"`
	Ignored          int    `json:"baseline_ignored"`
	Duration         string `json:"duration,omitempty"`
}

// JSONDiagnostic represents a single diagnostic
type JSONDiagnostic struct {
	File     string         `json:"file,omitempty"`
	Line     int            `json:"line,omitempty"`
	Column   int            `json:"column,omitempty"`
	Severity types.Severity `json:"severity"`
	Message  string         `json:"message"`
	Rule     string         `json:"rule,omitempty"`
}
