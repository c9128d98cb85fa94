package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
)

// validateExternalCmd represents the validate external command
var validateExternalCmd = &cobra.Command{
	Use:   "external NAME",
	Short: "Validate a request context against one external authenticator",
	Long: `Validate request parameters and cookies against the external
authenticator called NAME.

Example:
  casinoctl validate external corp --param token=eyJhbGciOi...
  casinoctl validate external corp --cookie id_token=eyJhbGciOi...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawParams, _ := cmd.Flags().GetStringArray("param")
		rawCookies, _ := cmd.Flags().GetStringArray("cookie")

		params := url.Values{}
		for _, p := range rawParams {
			k, v, err := splitPair(p)
			if err != nil {
				return err
			}
			params.Add(k, v)
		}
		params.Set("external", args[0])

		cookies := make(map[string]string)
		for _, c := range rawCookies {
			k, v, err := splitPair(c)
			if err != nil {
				return err
			}
			cookies[k] = v
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

		result, err := a.validator.ValidateExternal(cmd.Context(), args[0], authenticator.RequestContext{
			Params:  params,
			Cookies: cookies,
		})
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), result)
	},
}

func init() {
	validateCmd.AddCommand(validateExternalCmd)
	validateExternalCmd.Flags().StringArray("param", nil, "request parameter as key=value (repeatable)")
	validateExternalCmd.Flags().StringArray("cookie", nil, "cookie as name=value (repeatable)")
}

func splitPair(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", s)
	}
	return k, v, nil
}
