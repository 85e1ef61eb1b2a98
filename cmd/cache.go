package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/pyright-action/internal/fetch"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the pyright tool cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached pyright versions",
	Long: `Lists the pyright releases unpacked in the tool cache, oldest first.
The cache lives under $RUNNER_TOOL_CACHE when set.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCacheList(cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(w io.Writer) error {
	versions, err := newProvider(fetch.New(), nil).List()
	if err != nil {
		return fmt.Errorf("error listing cache: %w", err)
	}

	if len(versions) == 0 {
		fmt.Fprintf(w, "No cached pyright versions in %s\n", cacheDir)
		return nil
	}
	for _, v := range versions {
		fmt.Fprintln(w, v.String())
	}
	return nil
}
