// Package ghactions writes log lines and workflow commands understood by the
// GitHub Actions runner.
package ghactions

import (
	"io"
	"os"

	"github.com/sethvargo/go-githubactions"
)

// Property is one key=value pair of a workflow command.
type Property struct {
	Key   string
	Value string
}

// Host emits to the job log and remembers whether the run has failed.
type Host struct {
	Out    io.Writer
	action *githubactions.Action
	failed bool
}

// New returns a Host writing to out, or stdout when out is nil.
func New(out io.Writer) *Host {
	if out == nil {
		out = os.Stdout
	}
	return &Host{
		Out:    out,
		action: githubactions.New(githubactions.WithWriter(out)),
	}
}

// Info writes a plain log line.
func (h *Host) Info(msg string) {
	h.action.Infof("%s", msg)
}

// Debug writes a line shown only when step debug logging is enabled.
func (h *Host) Debug(msg string) {
	h.action.Debugf("%s", msg)
}

// Issue writes the workflow command ::name k=v,...::msg.
func (h *Host) Issue(name string, props []Property, msg string) {
	h.action.IssueCommand(Command(name, props, msg))
}

// SetFailed reports msg as an error and marks the run failed.
func (h *Host) SetFailed(msg string) {
	h.failed = true
	h.action.Errorf("%s", msg)
}

// Failed reports whether SetFailed was called.
func (h *Host) Failed() bool {
	return h.failed
}

// AddStepSummary appends markdown to the job summary file.
func (h *Host) AddStepSummary(markdown string) {
	h.action.AddStepSummary(markdown)
}

// Command builds a workflow command. Properties with empty values are dropped.
func Command(name string, props []Property, msg string) *githubactions.Command {
	cmd := &githubactions.Command{Name: name, Message: msg}
	for _, p := range props {
		if p.Value == "" {
			continue
		}
		if cmd.Properties == nil {
			cmd.Properties = githubactions.CommandProperties{}
		}
		cmd.Properties[p.Key] = p.Value
	}
	return cmd
}
