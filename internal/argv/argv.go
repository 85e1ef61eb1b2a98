// Package argv builds the checker's command line from the configured options.
package argv

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
	"github.com/mattn/go-shellwords"

	"github.com/dotcommander/pyright-action/internal/config"
	"github.com/dotcommander/pyright-action/internal/types"
)

// dashedUntil is the first release that spells path flags without a dash.
var dashedUntil = semver.MustParse("1.1.309")

// UseDashedSpelling reports whether v predates the --typeshedpath/--venvpath spelling.
func UseDashedSpelling(v *semver.Version) bool {
	return v.LessThan(dashedUntil)
}

// entry is one row of the flag table: when the option is set, render returns
// the arguments to append.
type entry struct {
	option string
	render func(o *config.Options, dashed bool) []string
}

func valueFlag(option, flag string, get func(o *config.Options) string) entry {
	return entry{
		option: option,
		render: func(o *config.Options, _ bool) []string {
			if v := get(o); v != "" {
				return []string{flag, v}
			}
			return nil
		},
	}
}

func boolFlag(option, flag string, get func(o *config.Options) *bool) entry {
	return entry{
		option: option,
		render: func(o *config.Options, _ bool) []string {
			if config.IsTrue(get(o)) {
				return []string{flag}
			}
			return nil
		},
	}
}

func pathFlag(option, dashedFlag, flag string, get func(o *config.Options) string) entry {
	return entry{
		option: option,
		render: func(o *config.Options, dashed bool) []string {
			v := get(o)
			if v == "" {
				return nil
			}
			if dashed {
				return []string{dashedFlag, v}
			}
			return []string{flag, v}
		},
	}
}

// table is evaluated top to bottom; the order is part of the output contract.
var table = []entry{
	valueFlag("create-stub", "--createstub", func(o *config.Options) string { return o.CreateStub }),
	valueFlag("dependencies", "--dependencies", func(o *config.Options) string { return o.Dependencies }),
	boolFlag("ignore-external", "--ignoreexternal", func(o *config.Options) *bool { return o.IgnoreExternal }),
	valueFlag("level", "--level", func(o *config.Options) string { return o.Level }),
	valueFlag("project", "--project", func(o *config.Options) string { return o.Project }),
	valueFlag("python-platform", "--pythonplatform", func(o *config.Options) string { return o.PythonPlatform }),
	valueFlag("python-path", "--pythonpath", func(o *config.Options) string { return o.PythonPath }),
	valueFlag("python-version", "--pythonversion", func(o *config.Options) string { return o.PythonVersion }),
	boolFlag("skip-unannotated", "--skipunannotated", func(o *config.Options) *bool { return o.SkipUnannotated }),
	boolFlag("stats", "--stats", func(o *config.Options) *bool { return o.Stats }),
	pathFlag("typeshed-path", "--typeshed-path", "--typeshedpath", func(o *config.Options) string { return o.TypeshedPath }),
	pathFlag("venv-path", "--venv-path", "--venvpath", func(o *config.Options) string { return o.VenvPath }),
	boolFlag("verbose", "--lib", func(o *config.Options) *bool { return o.Verbose }),
	valueFlag("verify-types", "--verifytypes", func(o *config.Options) string { return o.VerifyTypes }),
	boolFlag("warnings", "--warnings", func(o *config.Options) *bool { return o.Warnings }),
	// Deprecated alias; may repeat --lib when verbose is also set.
	boolFlag("lib", "--lib", func(o *config.Options) *bool { return o.Lib }),
}

// Build returns the argument vector: entryPoint, the table flags in order,
// then the tokens of extra-args.
func Build(opts config.Options, entryPoint string, version *semver.Version) ([]string, error) {
	dashed := UseDashedSpelling(version)

	args := []string{entryPoint}
	for _, e := range table {
		args = append(args, e.render(&opts, dashed)...)
	}

	extra, err := SplitArgs(opts.ExtraArgs)
	if err != nil {
		return nil, err
	}
	return append(args, extra...), nil
}

// SplitArgs tokenizes s with shell quoting rules. Shell operators, command
// substitution, comments and unterminated quotes are rejected.
func SplitArgs(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}

	p := shellwords.NewParser()
	words, err := p.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", types.ErrMalformedArgs, s, err)
	}
	// Position is set when parsing stopped at an operator such as | or ;
	if p.Position >= 0 {
		return nil, fmt.Errorf("%w: %q: unsupported shell syntax at offset %d", types.ErrMalformedArgs, s, p.Position)
	}
	if construct, offset := unsupportedSyntax(s); offset >= 0 {
		return nil, fmt.Errorf("%w: %q: unsupported %s at offset %d", types.ErrMalformedArgs, s, construct, offset)
	}
	return words, nil
}

// unsupportedSyntax finds the first backtick or $( outside single quotes, or
// an unquoted word starting with #. The offset is -1 when there is none.
func unsupportedSyntax(s string) (string, int) {
	var quote rune
	escaped := false
	wordStart := true

	for i, r := range s {
		if escaped {
			escaped = false
			wordStart = false
			continue
		}

		switch {
		case quote == '\'':
			if r == '\'' {
				quote = 0
			}
			continue
		case r == '\\':
			escaped = true
			wordStart = false
			continue
		case r == '`':
			return "command substitution", i
		case r == '$' && strings.HasPrefix(s[i+1:], "("):
			return "command substitution", i
		case quote == '"':
			if r == '"' {
				quote = 0
			}
			continue
		case r == '\'' || r == '"':
			quote = r
			wordStart = false
			continue
		case r == '#' && wordStart:
			return "comment", i
		}

		wordStart = unicode.IsSpace(r)
	}
	return "", -1
}

// OptionNames lists the option names in the order Build emits them.
func OptionNames() []string {
	names := make([]string, len(table))
	for i, e := range table {
		names[i] = e.option
	}
	return names
}
