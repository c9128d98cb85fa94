package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/casino-in-go/pkg/config"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show casino configuration attributes and their sources",
	Long: `Show casino configuration attributes and their sources.

The values displayed by this command reflect the current state of the
configuration sources. For example, the environment variables and config
file. These may not reflect the current values used by the running casino
server.

Config file location: /etc/casino/config/casino.yml (or CASINO_CONFIG_PATH)

Example:
  casinoctl configuration show
  casinoctl configuration show --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		path, _ := cmd.Flags().GetString("config")

		if err := showConfiguration(cmd.OutOrStdout(), path, output); err != nil {
			return fmt.Errorf("failed to show configuration: %w", err)
		}
		return nil
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func showConfiguration(out io.Writer, path, output string) error {
	var (
		cfg *config.CasinoConfig
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if output == "json" {
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, jsonOutput)
		return err
	}

	_, err = fmt.Fprint(out, cfg.FormatText())
	return err
}
