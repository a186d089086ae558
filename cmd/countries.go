package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adeilh/vacation/api"
	"github.com/adeilh/vacation/provider/local"
	"github.com/adeilh/vacation/provider/nager"
)

var countriesRemote bool

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the selectable countries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if !countriesRemote {
			for _, c := range api.Countries(cfg.Countries) {
				fmt.Fprintf(out, "%s  %s\n", c.Code, c.Name)
			}
			return nil
		}

		client := nager.New(nager.Options{
			BaseURL: cfg.Providers.Nager.BaseURL,
			Timeout: cfg.Providers.Nager.Timeout,
			Retries: cfg.Providers.Nager.Retries,
		})
		remote, err := client.Countries(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d countries\n", nager.Name, len(remote))
		for _, c := range remote {
			fmt.Fprintf(out, "%s  %s\n", c.CountryCode, c.Name)
		}
		builtin := local.New().Countries()
		fmt.Fprintf(out, "%s: %d countries\n", local.Name, len(builtin))
		for _, code := range builtin {
			fmt.Fprintln(out, code)
		}
		return nil
	},
}

func init() {
	countriesCmd.Flags().BoolVar(&countriesRemote, "remote", false, "list what the holiday providers support instead of the configured picker")
}
