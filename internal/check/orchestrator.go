// Package check runs pyright once: resolve, fetch, build the command line,
// execute and report.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/dotcommander/pyright-action/internal/annotate"
	"github.com/dotcommander/pyright-action/internal/argv"
	"github.com/dotcommander/pyright-action/internal/baseline"
	"github.com/dotcommander/pyright-action/internal/config"
	"github.com/dotcommander/pyright-action/internal/format"
	"github.com/dotcommander/pyright-action/internal/ghactions"
	"github.com/dotcommander/pyright-action/internal/logger"
	"github.com/dotcommander/pyright-action/internal/output"
	"github.com/dotcommander/pyright-action/internal/outputters"
	"github.com/dotcommander/pyright-action/internal/registry"
	"github.com/dotcommander/pyright-action/internal/resolve"
	"github.com/dotcommander/pyright-action/internal/runner"
	"github.com/dotcommander/pyright-action/internal/schema"
	"github.com/dotcommander/pyright-action/internal/types"
)

// Orchestrator holds the collaborators of a run.
type Orchestrator struct {
	Config        *config.Config
	Host          *ghactions.Host
	Resolver      *resolve.Resolver
	Provider      *registry.Provider
	Schema        *schema.Validator
	Logger        *slog.Logger
	ActionVersion string

	// Checker output in plain mode, and checker stderr in both modes.
	Stdout io.Writer
	Stderr io.Writer
}

// Run performs the check. Failures of the checker itself are reported through
// Host.SetFailed; the returned error is for failures of the run.
func (o *Orchestrator) Run(ctx context.Context) (*output.Result, error) {
	cfg := o.Config
	log := logger.Or(o.Logger)
	start := time.Now()

	node, err := runner.DetectNode(ctx, cfg.Node)
	if err != nil {
		return nil, err
	}
	log.Debug("detected node", "version", node.Version, "path", node.ExecPath)

	spec, err := o.Resolver.Resolve(ctx, cfg.Version, cfg.PylanceVersion)
	if err != nil {
		return nil, err
	}

	info, version, err := o.Provider.Lookup(ctx, spec)
	if err != nil {
		return nil, err
	}

	entry, err := o.Provider.Path(ctx, info)
	if err != nil {
		return nil, err
	}

	args, err := argv.Build(cfg.Options, entry, version)
	if err != nil {
		return nil, err
	}

	set, err := annotate.Build(cfg.Annotate, cfg.NoComments, args)
	if err != nil {
		return nil, err
	}

	dir, err := workingDirectory(cfg.WorkingDirectory)
	if err != nil {
		return nil, err
	}

	run := &runner.Runner{Node: node, Dir: dir, Stdout: o.Stdout, Stderr: o.Stderr}

	o.Host.Info(fmt.Sprintf("pyright %s, node %s, pyright-action %s", version, node.Version, o.ActionVersion))
	o.Host.Info("Running " + shellquote.Join(run.Command(args)...))

	result := &output.Result{
		PyrightVersion:   version.String(),
		StartTime:        start,
		WorkingDirectory: dir,
	}

	if len(set) == 0 {
		log.Debug("annotations disabled, running without JSON output")
		if ignored := jsonOnlySettings(cfg); len(ignored) > 0 {
			o.Host.Info(fmt.Sprintf("Annotations are disabled, ignoring %s (needs the JSON report)", strings.Join(ignored, ", ")))
		}
		code, err := run.Run(ctx, args)
		if err != nil {
			return nil, err
		}
		result.ExitCode = code
		if code != 0 {
			o.Host.SetFailed(fmt.Sprintf("Exit code %d", code))
		}
		return result, nil
	}

	code, stdout, err := run.RunJSON(ctx, args)
	if err != nil {
		return nil, err
	}
	result.ExitCode = code

	if len(strings.TrimSpace(string(stdout))) == 0 {
		o.Host.SetFailed(fmt.Sprintf("Exit code %d", code))
		return result, nil
	}

	report, err := runner.ParseReport(o.Schema, stdout)
	if err != nil {
		return nil, err
	}
	result.Report = report

	b, err := o.loadBaseline(dir)
	if err != nil {
		return nil, err
	}

	if err := outputters.NewOutputter(cfg, o.Host, o.ActionVersion).Format(result, set, b); err != nil {
		return nil, fmt.Errorf("error formatting output: %w", err)
	}

	// Creating a baseline accepts the current state
	if cfg.CreateBaseline {
		return result, o.saveBaseline(report, version.String(), dir)
	}

	if code != 0 {
		o.Host.SetFailed(format.Pluralize(report.Summary.ErrorCount, "error", "errors"))
	}

	return result, nil
}

// jsonOnlySettings lists the configured settings that only apply when the
// checker runs with JSON output.
func jsonOnlySettings(cfg *config.Config) []string {
	var names []string
	if cfg.Format != "" && cfg.Format != "console" {
		names = append(names, "format "+cfg.Format)
	}
	if cfg.Baseline != "" {
		names = append(names, "baseline")
	}
	if cfg.CreateBaseline {
		names = append(names, "create-baseline")
	}
	return names
}

// workingDirectory returns dir as an absolute path, defaulting to the current
// directory.
func workingDirectory(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("error resolving working directory %s: %w", dir, err)
	}
	if st, err := os.Stat(abs); err != nil || !st.IsDir() {
		return "", fmt.Errorf("working directory %s does not exist", dir)
	}
	return abs, nil
}

func (o *Orchestrator) baselinePath(dir string) string {
	path := o.Config.Baseline
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return path
}

// loadBaseline returns nil when no baseline is configured, when one is being
// created, or when the file does not exist yet.
func (o *Orchestrator) loadBaseline(dir string) (*baseline.Baseline, error) {
	if o.Config.Baseline == "" || o.Config.CreateBaseline {
		return nil, nil
	}

	path := o.baselinePath(dir)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Or(o.Logger).Debug("baseline file not found", "path", path)
		return nil, nil
	}

	b, err := baseline.LoadBaseline(path, dir)
	if err != nil {
		return nil, err
	}
	logger.Or(o.Logger).Debug("loaded baseline", "path", path, "fingerprints", b.Len())
	return b, nil
}

func (o *Orchestrator) saveBaseline(report *types.Report, pyrightVersion, dir string) error {
	path := o.baselinePath(dir)

	b := baseline.CreateBaseline(report.GeneralDiagnostics, dir)
	b.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	b.PyrightVersion = pyrightVersion

	if err := b.SaveBaseline(path); err != nil {
		return fmt.Errorf("failed to save baseline: %w", err)
	}

	o.Host.Info(fmt.Sprintf("Baseline created: %s (%s)", path, format.Pluralize(b.Len(), "diagnostic", "diagnostics")))
	return nil
}
