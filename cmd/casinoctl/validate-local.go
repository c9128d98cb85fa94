package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// validateLocalCmd represents the validate local command
var validateLocalCmd = &cobra.Command{
	Use:   "local USERNAME",
	Short: "Validate a username and password against the local chain",
	Long: `Validate a username and password against every authenticator of the
local chain, in configuration order.

The password is read from --password, or from the first line of stdin.

Example:
  casinoctl validate local alice --password secret
  echo secret | casinoctl validate local alice`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.close()

		result, err := a.validator.ValidateLocal(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), result)
	},
}

func init() {
	validateCmd.AddCommand(validateLocalCmd)
	validateLocalCmd.Flags().String("password", "", "password to validate (read from stdin when empty)")
}
