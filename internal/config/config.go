package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix GitHub Actions uses to expose step inputs.
const EnvPrefix = "INPUT"

// ConfigFiles are the config file names searched in the working directory.
var ConfigFiles = []string{".pyright-action.yaml", ".pyright-action.yml", ".pyright-action.json"}

// Config represents the pyright-action configuration
type Config struct {
	Version          string        `mapstructure:"version" yaml:"version,omitempty"`
	PylanceVersion   string        `mapstructure:"pylance-version" yaml:"pylance-version,omitempty"`
	WorkingDirectory string        `mapstructure:"working-directory" yaml:"working-directory,omitempty"`
	Annotate         string        `mapstructure:"annotate" yaml:"annotate,omitempty"`
	Node             string        `mapstructure:"node" yaml:"node,omitempty"`
	Format           string        `mapstructure:"format" yaml:"format,omitempty"`
	Output           string        `mapstructure:"output" yaml:"output,omitempty"`
	Baseline         string        `mapstructure:"baseline" yaml:"baseline,omitempty"`
	CreateBaseline   bool          `mapstructure:"create-baseline" yaml:"create-baseline,omitempty"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
	Debug            bool          `mapstructure:"debug" yaml:"-"`

	// NoComments is the deprecated switch that disables all annotations.
	NoComments bool `mapstructure:"-" yaml:"no-comments,omitempty"`

	Options Options `mapstructure:"-" yaml:",inline"`
}

// Options are the checker options forwarded on the command line.
// Boolean options are tri-state: nil means the input was not given.
type Options struct {
	CreateStub      string `yaml:"create-stub,omitempty"`
	Dependencies    string `yaml:"dependencies,omitempty"`
	IgnoreExternal  *bool  `yaml:"ignore-external,omitempty"`
	Level           string `yaml:"level,omitempty"`
	Project         string `yaml:"project,omitempty"`
	PythonPlatform  string `yaml:"python-platform,omitempty"`
	PythonPath      string `yaml:"python-path,omitempty"`
	PythonVersion   string `yaml:"python-version,omitempty"`
	SkipUnannotated *bool  `yaml:"skip-unannotated,omitempty"`
	Stats           *bool  `yaml:"stats,omitempty"`
	TypeshedPath    string `yaml:"typeshed-path,omitempty"`
	VenvPath        string `yaml:"venv-path,omitempty"`
	Verbose         *bool  `yaml:"verbose,omitempty"`
	VerifyTypes     string `yaml:"verify-types,omitempty"`
	Warnings        *bool  `yaml:"warnings,omitempty"`
	Lib             *bool  `yaml:"lib,omitempty"`
	ExtraArgs       string `yaml:"extra-args,omitempty"`
}

// StringInputs lists the string-valued checker inputs.
var StringInputs = []string{
	"create-stub", "dependencies", "level", "project", "python-platform",
	"python-path", "python-version", "typeshed-path", "venv-path",
	"verify-types", "extra-args",
}

// BoolInputs lists the boolean checker inputs, plus no-comments.
var BoolInputs = []string{
	"ignore-external", "skip-unannotated", "stats", "verbose", "warnings", "lib", "no-comments",
}

// ParseBool normalizes a stringly-typed boolean input. An empty value is unset;
// a case-insensitive "true" is true; anything else is false.
func ParseBool(raw string) *bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	b := strings.EqualFold(raw, "TRUE")
	return &b
}

// IsTrue reports whether a tri-state boolean is set and true.
func IsTrue(b *bool) bool {
	return b != nil && *b
}

// LoadConfig loads configuration from flags, INPUT_* environment variables and
// the config file read by the caller.
func LoadConfig(workingDir string) (*Config, error) {
	// Set default values
	viper.SetDefault("annotate", "all")
	viper.SetDefault("format", "console")
	viper.SetDefault("timeout", time.Duration(0))
	for _, key := range []string{"version", "pylance-version", "working-directory", "node", "output", "baseline"} {
		viper.SetDefault(key, "")
	}

	// Environment variables: INPUT_PYLANCE-VERSION and friends
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()
	_ = viper.BindEnv("debug", "RUNNER_DEBUG")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	config.NoComments = IsTrue(boolInput("no-comments"))
	config.Options = Options{
		CreateStub:      stringInput("create-stub"),
		Dependencies:    stringInput("dependencies"),
		IgnoreExternal:  boolInput("ignore-external"),
		Level:           stringInput("level"),
		Project:         stringInput("project"),
		PythonPlatform:  stringInput("python-platform"),
		PythonPath:      stringInput("python-path"),
		PythonVersion:   stringInput("python-version"),
		SkipUnannotated: boolInput("skip-unannotated"),
		Stats:           boolInput("stats"),
		TypeshedPath:    stringInput("typeshed-path"),
		VenvPath:        stringInput("venv-path"),
		Verbose:         boolInput("verbose"),
		VerifyTypes:     stringInput("verify-types"),
		Warnings:        boolInput("warnings"),
		Lib:             boolInput("lib"),
		ExtraArgs:       stringInput("extra-args"),
	}

	// Override working directory if provided
	if workingDir != "" {
		config.WorkingDirectory = workingDir
	}

	if config.Format == "markdown" && config.Output == "" {
		config.Output = os.Getenv("GITHUB_STEP_SUMMARY")
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func stringInput(key string) string {
	return strings.TrimSpace(viper.GetString(key))
}

func boolInput(key string) *bool {
	return ParseBool(viper.GetString(key))
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Validate format
	if config.Format != "console" && config.Format != "json" && config.Format != "markdown" {
		return fmt.Errorf("invalid format: %s. Must be 'console', 'json', or 'markdown'", config.Format)
	}

	// Validate output file if format is not console
	if config.Format != "console" && config.Output == "" {
		return fmt.Errorf("output file is required when format is not 'console'")
	}

	if config.CreateBaseline && config.Baseline == "" {
		return fmt.Errorf("create-baseline requires a baseline path")
	}

	if config.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	return nil
}

// SaveConfig writes the configuration as YAML, in the format read back by LoadConfig.
func SaveConfig(config *Config, path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
