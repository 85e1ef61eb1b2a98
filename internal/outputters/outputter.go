package outputters

import (
	"fmt"
	"os"
	"time"

	"github.com/dotcommander/pyright-action/internal/annotate"
	"github.com/dotcommander/pyright-action/internal/baseline"
	"github.com/dotcommander/pyright-action/internal/config"
	"github.com/dotcommander/pyright-action/internal/ghactions"
	"github.com/dotcommander/pyright-action/internal/output"
)

// Outputter handles output formatting
type Outputter struct {
	config        *config.Config
	host          *ghactions.Host
	actionVersion string
}

// NewOutputter creates a new Outputter
func NewOutputter(config *config.Config, host *ghactions.Host, actionVersion string) *Outputter {
	return &Outputter{
		config:        config,
		host:          host,
		actionVersion: actionVersion,
	}
}

// Format always writes the job log and annotations, then the report file for
// the configured format.
func (o *Outputter) Format(result *output.Result, set annotate.Set, b *baseline.Baseline) error {
	// Set start time if not set
	if result.StartTime.IsZero() {
		result.StartTime = time.Now()
	}
	if result.WorkingDirectory == "" {
		result.WorkingDirectory = o.config.WorkingDirectory
	}

	if err := output.NewConsoleFormatter(o.host, set, b).Format(result); err != nil {
		return err
	}

	switch o.config.Format {
	case "console":
		return nil
	case "json":
		return output.NewJSONFormatter(o.actionVersion, true, o.config.Output).Format(result)
	case "markdown":
		var stepSummary func(string)
		if o.config.Output == os.Getenv("GITHUB_STEP_SUMMARY") {
			stepSummary = o.host.AddStepSummary
		}
		return output.NewMarkdownFormatter(o.config.Output, stepSummary).Format(result)
	default:
		return fmt.Errorf("unsupported format: %s", o.config.Format)
	}
}
