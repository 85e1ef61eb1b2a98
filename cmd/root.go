package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sethvargo/go-githubactions"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dotcommander/pyright-action/internal/check"
	"github.com/dotcommander/pyright-action/internal/config"
	"github.com/dotcommander/pyright-action/internal/fetch"
	"github.com/dotcommander/pyright-action/internal/ghactions"
	"github.com/dotcommander/pyright-action/internal/logger"
	"github.com/dotcommander/pyright-action/internal/registry"
	"github.com/dotcommander/pyright-action/internal/resolve"
	"github.com/dotcommander/pyright-action/internal/schema"
)

// Version is the action version, set at build time with -ldflags.
var Version = "dev"

// exitFunc is overridden in tests.
var exitFunc = os.Exit

var (
	workingDir  string
	cacheDir    string
	registryURL string
	pylanceURL  string
)

var rootCmd = &cobra.Command{
	Use:   "pyright-action",
	Short: "Run the pyright type checker in GitHub Actions",
	Long: `pyright-action resolves a pyright release, fetches it from the npm registry,
runs it under Node.js and turns its diagnostics into GitHub Actions annotations.

Every option can be given as a flag, as an INPUT_<NAME> environment variable
(the way GitHub Actions passes step inputs) or in .pyright-action.yaml.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		host := ghactions.New(cmd.OutOrStdout())
		if err := runCheck(cmd.Context(), host); err != nil {
			host.SetFailed(err.Error())
		}
		if host.Failed() {
			exitFunc(1)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		exitFunc(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&workingDir, "working-directory", "C", "", "Directory the checker runs in")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", registry.DefaultCacheDir(), "Tool cache directory for unpacked releases")
	rootCmd.PersistentFlags().StringVar(&registryURL, "registry", registry.DefaultRegistryURL, "npm registry URL")
	rootCmd.PersistentFlags().StringVar(&pylanceURL, "pylance-releases", resolve.DefaultPylanceURL, "Base URL of the Pylance release manifests")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	flags := rootCmd.Flags()
	flags.String("pyright-version", "", "pyright version to use (default: latest)")
	flags.String("pylance-version", "", "Use the pyright version of a Pylance release (latest-release, latest-prerelease or a version)")
	flags.StringP("annotate", "a", "all", "Diagnostics to annotate: all, none, or a list of errors and warnings")
	flags.String("node", "", "Path to the node executable (default: node on $PATH)")
	flags.StringP("format", "f", "console", "Report format (console|json|markdown)")
	flags.StringP("output", "o", "", "Report file (required unless --format console)")
	flags.String("baseline", "", "Baseline file of known diagnostics")
	flags.Bool("create-baseline", false, "Write the current diagnostics to --baseline instead of annotating them")
	flags.Duration("timeout", 0, "Abort the run after this duration (0 means no limit)")

	for _, name := range config.StringInputs {
		flags.String(name, "", "Checker option "+name)
	}
	for _, name := range config.BoolInputs {
		flags.String(name, "", "Checker switch "+name+" (true|false)")
		flags.Lookup(name).NoOptDefVal = "true"
	}

	flags.VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(inputKey(f.Name), f)
	})
}

// inputKey maps a flag to its action input. --version is cobra's, so the
// version input is spelled --pyright-version on the command line.
func inputKey(flag string) string {
	if flag == "pyright-version" {
		return "version"
	}
	return flag
}

func initConfig() {
	dir := workingDir
	if dir == "" {
		dir = githubactions.GetInput("working-directory")
	}

	for _, name := range config.ConfigFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				exitFunc(1)
			}
			break
		}
	}
}

func runCheck(ctx context.Context, host *ghactions.Host) error {
	cfg, err := config.LoadConfig(workingDir)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	log := logger.New(os.Stderr, cfg.Debug)

	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	validator, err := schema.NewValidator()
	if err != nil {
		return err
	}

	client := fetch.New()
	orch := &check.Orchestrator{
		Config: cfg,
		Host:   host,
		Resolver: &resolve.Resolver{
			Fetch:      client,
			Schema:     validator,
			PylanceURL: pylanceURL,
			Info:       host.Info,
		},
		Provider:      newProvider(client, validator),
		Schema:        validator,
		Logger:        log,
		ActionVersion: Version,
	}

	_, err = orch.Run(ctx)
	return err
}

func newProvider(client *fetch.Client, validator *schema.Validator) *registry.Provider {
	return &registry.Provider{
		RegistryURL: registryURL,
		CacheDir:    cacheDir,
		Fetch:       client,
		Schema:      validator,
		Logger:      logger.New(os.Stderr, viper.GetBool("debug")),
	}
}
