package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
)

var errInvalidCredentials = errors.New("invalid credentials")

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate credentials against the configured chains",
	Long: `Validate credentials against the configured authenticator chains, the
same way the server does. The result is printed as JSON; the command exits
with a non-zero status when no authenticator validated the credentials.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("command 'validate' requires a subcommand (local, external)")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func printResult(out io.Writer, result *authenticator.Result) error {
	if result == nil {
		return errInvalidCredentials
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
