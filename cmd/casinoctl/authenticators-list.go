package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator"
	"github.com/doodlesbykumbi/casino-in-go/pkg/authenticator/backends"
	"github.com/doodlesbykumbi/casino-in-go/pkg/config"
)

type listedAuthenticator struct {
	Name          string `json:"name"`
	Chain         string `json:"chain"`
	Class         string `json:"class,omitempty"`
	Authenticator string `json:"authenticator,omitempty"`
	Resolved      string `json:"resolved,omitempty"`
	Error         string `json:"error,omitempty"`
}

type builtinAuthenticator struct {
	Name     string `json:"name"`
	Chain    string `json:"chain"`
	Module   string `json:"module"`
	Synopsis string `json:"synopsis"`
}

// authenticatorsListCmd represents the authenticators list command
var authenticatorsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and configured authenticators",
	Long: `List the authenticators shipped with casino and the authenticators
configured in casino.yml, with the implementation each one resolves to.
Nothing is instantiated, so backends are not contacted.

Example:
  casinoctl authenticators list
  casinoctl authenticators list --output json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return listAuthenticators(cmd.OutOrStdout(), cfg, output)
	},
}

func init() {
	authenticatorsCmd.AddCommand(authenticatorsListCmd)
	authenticatorsListCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
}

func listAuthenticators(out io.Writer, cfg *config.CasinoConfig, output string) error {
	resolver := backends.NewResolver()

	var builtin []builtinAuthenticator
	for _, b := range backends.Builtin() {
		module, _ := authenticator.CurrentName(b.Name)
		builtin = append(builtin, builtinAuthenticator{
			Name:     b.Name,
			Chain:    b.Chain.String(),
			Module:   module,
			Synopsis: b.Synopsis,
		})
	}

	var configured []listedAuthenticator
	for _, chain := range authenticator.ChainTypes() {
		for _, entry := range cfg.Entries(chain) {
			if !entry.Record {
				continue
			}
			item := listedAuthenticator{
				Name:          entry.Name,
				Chain:         chain.String(),
				Class:         entry.Class,
				Authenticator: entry.Authenticator,
			}

			var (
				impl authenticator.Implementation
				err  error
			)
			if entry.Class != "" {
				impl, err = resolver.Lookup(entry.Class)
			} else {
				impl, err = resolver.Resolve(entry.Authenticator)
			}
			if err != nil {
				item.Error = err.Error()
			} else {
				item.Resolved = impl.String()
			}
			configured = append(configured, item)
		}
	}

	if output == "json" {
		data, err := json.MarshalIndent(map[string]interface{}{
			"builtin":    builtin,
			"configured": configured,
		}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BUILT-IN\tCHAIN\tMODULE\tDESCRIPTION")
	for _, b := range builtin {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.Name, b.Chain, b.Module, b.Synopsis)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "CONFIGURED\tCHAIN\tRESOLVES TO\t")
	for _, c := range configured {
		resolved := c.Resolved
		if c.Error != "" {
			resolved = "error: " + c.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", c.Name, c.Chain, resolved)
	}
	return tw.Flush()
}
