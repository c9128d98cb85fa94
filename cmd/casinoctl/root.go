package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "casinoctl",
	Short: "Run and inspect the casino credential validation service",
	Long: `casinoctl runs the casino HTTP server and validates credentials against
the configured authenticator chains from the command line.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "path to casino.yml (default $CASINO_CONFIG_PATH/casino.yml)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
