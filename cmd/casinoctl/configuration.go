package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// configurationCmd represents the configuration command
var configurationCmd = &cobra.Command{
	Use:   "configuration",
	Short: "Manage casino configuration",
	Long:  `Manage casino configuration settings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("command 'configuration' requires a subcommand (show)")
	},
}

func init() {
	rootCmd.AddCommand(configurationCmd)
}
