// Package cmd provides Cobra CLI commands for sable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sablebrowser/sable/internal/cli"
)

var (
	app     *cli.App
	rootCmd = &cobra.Command{
		Use:   "sable",
		Short: "Session and tab state core for the sable browser",
		Long: `Sable - the session, tab and history state core.

Inspect and manipulate the persisted browser state: sessions with
their ordered tabs, the tab lifecycle (active, background, frozen,
discarded), and browsing history.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "init", "version":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
