package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dotcommander/pyright-action/internal/config"
)

// mockExit replaces exitFunc for the duration of a test and reports the
// code it was called with, or -1.
func mockExit(t *testing.T) *int {
	t.Helper()
	code := -1
	original := exitFunc
	exitFunc = func(c int) { code = c }
	t.Cleanup(func() { exitFunc = original })
	return &code
}

func TestRootCmdVersion(t *testing.T) {
	assert.Equal(t, Version, rootCmd.Version)
}

func TestRootCmdFlags(t *testing.T) {
	flags := rootCmd.Flags()

	for _, name := range []string{"pyright-version", "pylance-version", "annotate", "node", "format", "output", "baseline", "create-baseline", "timeout"} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, flags.Lookup(name), "flag %s should exist", name)
		})
	}

	for _, name := range config.StringInputs {
		t.Run(name, func(t *testing.T) {
			require.NotNil(t, flags.Lookup(name))
			assert.Equal(t, "string", flags.Lookup(name).Value.Type())
		})
	}

	for _, name := range config.BoolInputs {
		t.Run(name, func(t *testing.T) {
			f := flags.Lookup(name)
			require.NotNil(t, f)
			assert.Equal(t, "true", f.NoOptDefVal, "bare --%s means true", name)
			assert.Equal(t, "", f.DefValue, "unset stays distinguishable from false")
		})
	}

	for _, name := range []string{"working-directory", "cache-dir", "registry", "pylance-releases", "debug"} {
		t.Run(name, func(t *testing.T) {
			assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name))
		})
	}
}

func TestInputKey(t *testing.T) {
	assert.Equal(t, "version", inputKey("pyright-version"))
	assert.Equal(t, "pylance-version", inputKey("pylance-version"))
	assert.Equal(t, "extra-args", inputKey("extra-args"))
}

func TestExecute_ErrorPath(t *testing.T) {
	code := mockExit(t)

	rootCmd.SetArgs([]string{"--invalid-flag-that-does-not-exist"})
	defer rootCmd.SetArgs(nil)

	Execute()
	assert.Equal(t, 1, *code)
}

func TestExecute_InvalidConfiguration(t *testing.T) {
	code := mockExit(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--format", "bogus"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		_ = rootCmd.Flags().Set("format", "console")
	}()

	Execute()

	assert.Equal(t, 1, *code)
	assert.True(t, strings.HasPrefix(out.String(), "::error::error loading configuration: "))
	assert.Contains(t, out.String(), "invalid format: bogus")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	}()

	Execute()
	assert.Equal(t, "pyright-action "+Version+"\n", out.String())
}

func TestRunCacheList(t *testing.T) {
	oldCacheDir := cacheDir
	defer func() { cacheDir = oldCacheDir }()

	t.Run("empty cache", func(t *testing.T) {
		cacheDir = t.TempDir()

		var out bytes.Buffer
		require.NoError(t, runCacheList(&out))
		assert.Equal(t, "No cached pyright versions in "+cacheDir+"\n", out.String())
	})

	t.Run("cached versions", func(t *testing.T) {
		cacheDir = t.TempDir()
		for _, v := range []string{"1.1.339", "1.1.300"} {
			dir := filepath.Join(cacheDir, "pyright", v)
			require.NoError(t, os.MkdirAll(dir, 0755))
			require.NoError(t, os.WriteFile(filepath.Join(dir, runtime.GOARCH+".complete"), nil, 0644))
		}

		var out bytes.Buffer
		require.NoError(t, runCacheList(&out))
		assert.Equal(t, "1.1.300\n1.1.339\n", out.String())
	})
}

func TestRunConfigInit(t *testing.T) {
	oldWorkingDir, oldForce := workingDir, forceInit
	defer func() { workingDir, forceInit = oldWorkingDir, oldForce }()

	workingDir = t.TempDir()
	forceInit = false
	path := filepath.Join(workingDir, ".pyright-action.yaml")

	var out bytes.Buffer
	require.NoError(t, runConfigInit(&out))
	assert.Equal(t, "Wrote "+path+"\n", out.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var written map[string]any
	require.NoError(t, yaml.Unmarshal(data, &written))
	assert.Equal(t, "all", written["annotate"])
	assert.Equal(t, "console", written["format"])
	assert.Equal(t, "warning", written["level"])
	assert.Equal(t, true, written["warnings"])

	err = runConfigInit(&out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	forceInit = true
	assert.NoError(t, runConfigInit(&out))
}

func TestInitConfigReadsWorkingDirectoryInput(t *testing.T) {
	oldWorkingDir := workingDir
	defer func() { workingDir = oldWorkingDir }()
	workingDir = ""

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".pyright-action.yaml"), []byte("python-version: \"3.12\"\n"), 0644))
	t.Setenv("INPUT_WORKING-DIRECTORY", dir)

	initConfig()
	assert.Equal(t, "3.12", viper.GetString("python-version"))
}
