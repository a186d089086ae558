package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adeilh/vacation/holiday"
)

var customCmd = &cobra.Command{
	Use:   "custom COUNTRY YEAR DATE NAME...",
	Short: "Add a custom holiday to the cached list of a country and year",
	Long: `Add a custom holiday to the cached list of a country and year. DATE is
YYYY-MM-DD; the remaining arguments form the holiday name. The record's
fetch time is reset, so the list stays cached for another full TTL.`,
	Args: cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		year, err := strconv.Atoi(args[1])
		if err != nil {
			return holiday.ErrInvalidYear
		}
		name := strings.Join(args[3:], " ")
		h := holiday.Holiday{Date: args[2], Name: name, LocalName: name}

		if serverURL != "" {
			err = remoteAddCustom(cmd.Context(), newRemote(serverURL), args[0], year, h)
		} else {
			var a *app
			if a, err = newApp(cmd.Context(), cfg, logger); err != nil {
				return err
			}
			defer func() {
				_ = a.Close()
			}()
			err = a.svc.AddCustom(cmd.Context(), args[0], year, h)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s %d\n", h.Date, strings.ToUpper(args[0]), year)
		return err
	},
}

func init() {
	customCmd.Flags().StringVar(&serverURL, "server", "", "post to a running server at this base URL instead of opening the store")
}
