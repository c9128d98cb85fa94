package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authenticatorsCmd represents the authenticators command
var authenticatorsCmd = &cobra.Command{
	Use:   "authenticators",
	Short: "Inspect authenticators",
	Long:  `Inspect built-in and configured authenticators.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("command 'authenticators' requires a subcommand (list)")
	},
}

func init() {
	rootCmd.AddCommand(authenticatorsCmd)
}
