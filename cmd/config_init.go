package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dotcommander/pyright-action/internal/config"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the pyright-action config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter " + config.ConfigFiles[0],
	Run: func(cmd *cobra.Command, args []string) {
		if err := runConfigInit(cmd.OutOrStdout()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			exitFunc(1)
		}
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(w io.Writer) error {
	path := filepath.Join(workingDir, config.ConfigFiles[0])
	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	warnings := true
	cfg := &config.Config{
		Annotate: "all",
		Format:   "console",
		Options: config.Options{
			Level:    "warning",
			Warnings: &warnings,
		},
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Fprintf(w, "Wrote %s\n", path)
	return nil
}
