// Package format renders checker diagnostics as text.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dotcommander/pyright-action/internal/types"
)

// Diagnostic renders d for the job log, or, when forCommand is set, as the
// message of a workflow command where the location is carried separately.
func Diagnostic(d types.Diagnostic, forCommand bool) string {
	var b strings.Builder

	if !forCommand {
		if d.File != "" {
			b.WriteString(d.File)
			b.WriteString(":")
		}
		if d.Range != nil && !d.Range.IsEmpty() {
			// Checker positions are zero-based
			b.WriteString(strconv.Itoa(d.Range.Start.Line + 1))
			b.WriteString(":")
			b.WriteString(strconv.Itoa(d.Range.Start.Character + 1))
			b.WriteString(" -")
		}
		b.WriteString(" ")
		b.WriteString(string(d.Severity))
		b.WriteString(": ")
	}

	b.WriteString(d.Message)

	if d.Rule != "" {
		b.WriteString(" (")
		b.WriteString(d.Rule)
		b.WriteString(")")
	}

	return b.String()
}

// Pluralize returns "<n> <singular>" when n is 1 and "<n> <plural>" otherwise.
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// Summary renders the report counters, e.g. "1 error, 0 warnings, 2 informations".
func Summary(s types.Summary) string {
	return strings.Join([]string{
		Pluralize(s.ErrorCount, "error", "errors"),
		Pluralize(s.WarningCount, "warning", "warnings"),
		Pluralize(s.InformationCount, "information", "informations"),
	}, ", ")
}
