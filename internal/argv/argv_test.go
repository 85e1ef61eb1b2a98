package argv

import (
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/pyright-action/internal/config"
	"github.com/dotcommander/pyright-action/internal/types"
)

const entryPoint = "/cache/pyright/1.1.339/x64/package/index.js"

func on() *bool  { b := true; return &b }
func off() *bool { b := false; return &b }

func TestUseDashedSpelling(t *testing.T) {
	tests := []struct {
		version string
		dashed  bool
	}{
		{"1.1.308", true},
		{"1.0.999", true},
		{"1.1.309-beta.1", true},
		{"1.1.309", false},
		{"1.1.309+build.1", false},
		{"1.1.310", false},
		{"1.2.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.dashed, UseDashedSpelling(semver.MustParse(tt.version)))
		})
	}
}

func TestBuildPathFlagSpelling(t *testing.T) {
	opts := config.Options{TypeshedPath: "typeshed", VenvPath: "venvs"}

	tests := []struct {
		version string
		want    []string
	}{
		{"1.1.308", []string{entryPoint, "--typeshed-path", "typeshed", "--venv-path", "venvs"}},
		{"1.1.309", []string{entryPoint, "--typeshedpath", "typeshed", "--venvpath", "venvs"}},
		{"1.1.350", []string{entryPoint, "--typeshedpath", "typeshed", "--venvpath", "venvs"}},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, err := Build(opts, entryPoint, semver.MustParse(tt.version))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildEmptyOptions(t *testing.T) {
	got, err := Build(config.Options{}, entryPoint, semver.MustParse("1.1.339"))
	require.NoError(t, err)
	assert.Equal(t, []string{entryPoint}, got)
}

func TestBuildAllOptionsInCanonicalOrder(t *testing.T) {
	opts := config.Options{
		ExtraArgs:       `--threads 4 "src dir"`,
		Lib:             on(),
		Warnings:        on(),
		VerifyTypes:     "mypkg",
		Verbose:         on(),
		VenvPath:        ".",
		TypeshedPath:    "ts",
		Stats:           on(),
		SkipUnannotated: on(),
		PythonVersion:   "3.12",
		PythonPath:      "/usr/bin/python3",
		PythonPlatform:  "Linux",
		Project:         "pyproject.toml",
		Level:           "warning",
		IgnoreExternal:  on(),
		Dependencies:    "4",
		CreateStub:      "requests",
	}

	want := []string{
		entryPoint,
		"--createstub", "requests",
		"--dependencies", "4",
		"--ignoreexternal",
		"--level", "warning",
		"--project", "pyproject.toml",
		"--pythonplatform", "Linux",
		"--pythonpath", "/usr/bin/python3",
		"--pythonversion", "3.12",
		"--skipunannotated",
		"--stats",
		"--typeshedpath", "ts",
		"--venvpath", ".",
		"--lib",
		"--verifytypes", "mypkg",
		"--warnings",
		"--lib",
		"--threads", "4", "src dir",
	}

	got, err := Build(opts, entryPoint, semver.MustParse("1.1.339"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	again, err := Build(opts, entryPoint, semver.MustParse("1.1.339"))
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestBuildBooleanOptions(t *testing.T) {
	tests := []struct {
		name string
		opts config.Options
		want []string
	}{
		{"false is omitted", config.Options{Stats: off(), Warnings: off()}, []string{entryPoint}},
		{"unset is omitted", config.Options{}, []string{entryPoint}},
		{"verbose alone", config.Options{Verbose: on()}, []string{entryPoint, "--lib"}},
		{"lib alone", config.Options{Lib: on()}, []string{entryPoint, "--lib"}},
		{"verbose and lib duplicate", config.Options{Verbose: on(), Lib: on()}, []string{entryPoint, "--lib", "--lib"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Build(tt.opts, entryPoint, semver.MustParse("1.1.339"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildMalformedExtraArgs(t *testing.T) {
	got, err := Build(config.Options{Stats: on(), ExtraArgs: `--project "unterminated`}, entryPoint, semver.MustParse("1.1.339"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMalformedArgs)
	assert.Nil(t, got)
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		input   string
		want    []string
		wantErr bool
	}{
		{"", nil, false},
		{`a "b c"`, []string{"a", "b c"}, false},
		{`--level 'error'`, []string{"--level", "error"}, false},
		{`a\ b c`, []string{"a b", "c"}, false},
		{"  spaced   out  ", []string{"spaced", "out"}, false},
		{`"unterminated`, nil, true},
		{`'unterminated`, nil, true},
		{"a | b", nil, true},
		{"a; rm -rf /", nil, true},
		{"a > out.txt", nil, true},
		{"a && b", nil, true},
		{"a $(x)", nil, true},
		{`a "$(x)"`, nil, true},
		{"a `x`", nil, true},
		{"a #c", nil, true},
		{"#c", nil, true},
		{`a '$(x)' '#c' 'b`+"`"+`'`, []string{"a", "$(x)", "#c", "b`"}, false},
		{`a\#b c#d`, []string{"a#b", "c#d"}, false},
		{`--pythonpath $HOME/venv`, []string{"--pythonpath", "$HOME/venv"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := SplitArgs(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, types.ErrMalformedArgs)
				assert.Contains(t, err.Error(), tt.input)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOptionNamesMatchConfigInputs(t *testing.T) {
	names := OptionNames()
	assert.Equal(t, "create-stub", names[0])
	assert.Equal(t, "lib", names[len(names)-1])

	for _, name := range names {
		inString := false
		for _, s := range config.StringInputs {
			inString = inString || s == name
		}
		inBool := false
		for _, b := range config.BoolInputs {
			inBool = inBool || b == name
		}
		assert.True(t, inString || inBool, "%s should be a config input", name)
	}
}
