package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sablebrowser/sable/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long:  `Write a commented config.yaml to the XDG config directory unless one already exists.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		path, err := config.WriteDefaultConfig()
		if err != nil {
			return err
		}
		fmt.Printf("config at %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
