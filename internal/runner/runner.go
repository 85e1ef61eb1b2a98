// Package runner executes the checker under Node.js and decodes its report.
package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dotcommander/pyright-action/internal/schema"
	"github.com/dotcommander/pyright-action/internal/types"
)

// DetectNode locates the node binary (path, or "node" on $PATH) and asks it
// for its version.
func DetectNode(ctx context.Context, path string) (types.NodeInfo, error) {
	if path == "" {
		path = "node"
	}

	execPath, err := exec.LookPath(path)
	if err != nil {
		return types.NodeInfo{}, fmt.Errorf("node not found: %w", err)
	}
	if abs, err := filepath.Abs(execPath); err == nil {
		execPath = abs
	}

	cmd := exec.CommandContext(ctx, execPath, "--version")
	output, err := cmd.Output()
	if err != nil {
		return types.NodeInfo{}, fmt.Errorf("%s --version failed: %w", execPath, err)
	}

	return types.NodeInfo{
		Version:  strings.TrimSpace(string(output)),
		ExecPath: execPath,
	}, nil
}

// Runner runs the checker's entry point with node.
type Runner struct {
	Node types.NodeInfo
	// Dir is the working directory of the checker; empty means the current one.
	Dir    string
	Stdout io.Writer
	Stderr io.Writer
}

// Command returns the full command line for args.
func (r *Runner) Command(args []string) []string {
	return append([]string{r.Node.ExecPath}, args...)
}

// Run executes the checker with its output passed through and returns the
// exit code.
func (r *Runner) Run(ctx context.Context, args []string) (int, error) {
	cmd := r.command(ctx, args)
	cmd.Stdout = orStd(r.Stdout, os.Stdout)
	return exitCode(cmd.Run())
}

// RunJSON executes the checker with --outputjson and returns the exit code
// and the captured report.
func (r *Runner) RunJSON(ctx context.Context, args []string) (int, []byte, error) {
	var stdout bytes.Buffer
	cmd := r.command(ctx, append(append([]string{}, args...), "--outputjson"))
	cmd.Stdout = &stdout
	code, err := exitCode(cmd.Run())
	return code, stdout.Bytes(), err
}

func (r *Runner) command(ctx context.Context, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.Node.ExecPath, args...)
	cmd.Dir = r.Dir
	cmd.Stdin = nil
	cmd.Stderr = orStd(r.Stderr, os.Stderr)
	return cmd
}

func orStd(w io.Writer, std io.Writer) io.Writer {
	if w == nil {
		return std
	}
	return w
}

// exitCode maps a non-zero exit to its code; other failures are errors.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("error running checker: %w", err)
}

// ParseReport validates and decodes the checker's JSON report.
func ParseReport(v *schema.Validator, data []byte) (*types.Report, error) {
	if v != nil {
		if err := v.Validate(schema.Report, "checker output", data); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrMalformedReport, err)
		}
	}

	var report types.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedReport, err)
	}
	return &report, nil
}
