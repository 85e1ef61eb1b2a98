// Package annotate decides which diagnostic severities become workflow annotations.
package annotate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dotcommander/pyright-action/internal/types"
)

// Set is a set of severities; only error and warning are ever members.
type Set map[types.Severity]struct{}

// Has reports whether s contains severity.
func (s Set) Has(severity types.Severity) bool {
	_, ok := s[severity]
	return ok
}

// Severities returns the members in a fixed order (error before warning).
func (s Set) Severities() []types.Severity {
	var out []types.Severity
	for _, sev := range []types.Severity{types.SeverityError, types.SeverityWarning} {
		if s.Has(sev) {
			out = append(out, sev)
		}
	}
	return out
}

// suppressingFlags change the checker's output so that inline annotations
// no longer make sense.
var suppressingFlags = []string{"--verifytypes", "--stats", "--verbose", "--createstub", "--dependencies"}

// Build parses the annotate directive. The result is empty, whatever the
// directive, when noComments is set or args contains one of the suppressing
// flags.
func Build(directive string, noComments bool, args []string) (Set, error) {
	if noComments || slices.ContainsFunc(args, func(a string) bool { return slices.Contains(suppressingFlags, a) }) {
		return Set{}, nil
	}
	return parse(directive)
}

func parse(directive string) (Set, error) {
	value := strings.TrimSpace(directive)
	if value == "" {
		value = "all"
	}

	switch strings.ToLower(value) {
	case "none", "false":
		return Set{}, nil
	case "all", "true":
		value = "errors, warnings"
	}

	set := Set{}
	for _, raw := range strings.Split(value, ",") {
		token := strings.TrimSpace(raw)
		switch token {
		case "errors":
			set[types.SeverityError] = struct{}{}
		case "warnings":
			set[types.SeverityWarning] = struct{}{}
		case "all", "none":
			return nil, fmt.Errorf("%w: %q cannot be combined with other values in %q", types.ErrInvalidAnnotateValue, token, directive)
		default:
			return nil, fmt.Errorf("%w: %q in %q", types.ErrInvalidAnnotateValue, token, directive)
		}
	}
	return set, nil
}
