package output

import (
	"time"

	"github.com/dotcommander/pyright-action/internal/types"
)

// Result is one checker run as handed to the formatters.
type Result struct {
	PyrightVersion   string
	ExitCode         int
	Report           *types.Report
	StartTime        time.Time
	WorkingDirectory string

	// Filled in by the console formatter.
	Annotated int
	Ignored   int
}
