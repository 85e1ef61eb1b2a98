// Package types provides shared types used across the pyright-action codebase.
// This package is at the bottom of the dependency graph and should not import
// any other internal packages to avoid circular dependencies.
package types

// Severity is the severity of a checker diagnostic.
type Severity string

// Severity level constants.
const (
	SeverityError       Severity = "error"
	SeverityWarning     Severity = "warning"
	SeverityInformation Severity = "information"
)

// Position is a zero-based line/character location, as reported by the checker.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// IsEmpty reports whether the range covers no characters.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// Diagnostic is a single finding from the checker's JSON output.
type Diagnostic struct {
	File     string   `json:"file,omitempty"`
	Range    *Range   `json:"range,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Rule     string   `json:"rule,omitempty"`
}

// Summary holds the counters at the end of a checker report.
type Summary struct {
	FilesAnalyzed    int     `json:"filesAnalyzed"`
	ErrorCount       int     `json:"errorCount"`
	WarningCount     int     `json:"warningCount"`
	InformationCount int     `json:"informationCount"`
	TimeInSec        float64 `json:"timeInSec"`
}

// Report is the document produced by `pyright --outputjson`.
type Report struct {
	Version            string       `json:"version"`
	Time               string       `json:"time"`
	GeneralDiagnostics []Diagnostic `json:"generalDiagnostics"`
	Summary            Summary      `json:"summary"`
}

// NodeInfo describes the Node.js runtime that runs the checker.
type NodeInfo struct {
	Version  string
	ExecPath string
}
