package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/adeilh/vacation/config"
	"github.com/adeilh/vacation/holiday"
)

var holidaysJSON bool

var holidaysCmd = &cobra.Command{
	Use:   "holidays [COUNTRY] [YEAR]",
	Short: "Print the public holidays of a country and year",
	Long:  `Print the public holidays of a country and year. COUNTRY defaults to IN and YEAR to the current year.`,
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		var country, rawYear string
		if len(args) > 0 {
			country = args[0]
		}
		if len(args) > 1 {
			rawYear = args[1]
		}

		var res holiday.Result
		if serverURL != "" {
			res, err = remoteHolidays(cmd.Context(), newRemote(serverURL), country, rawYear)
		} else {
			res, err = localHolidays(cmd.Context(), cfg, logger, country, rawYear)
		}
		if err != nil {
			return err
		}
		if holidaysJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		return printHolidays(cmd.OutOrStdout(), res)
	},
}

func init() {
	holidaysCmd.Flags().BoolVar(&holidaysJSON, "json", false, "print the API response body instead of a table")
	holidaysCmd.Flags().StringVar(&serverURL, "server", "", "ask a running server at this base URL instead of opening the store")
}

func localHolidays(ctx context.Context, cfg *config.Config, logger *slog.Logger, country, rawYear string) (holiday.Result, error) {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return holiday.Result{}, err
	}
	defer func() {
		_ = a.Close()
	}()
	year, err := holiday.ParseYear(rawYear, a.svc.Now())
	if err != nil {
		return holiday.Result{}, err
	}
	return a.svc.Holidays(ctx, country, year)
}

func printHolidays(w io.Writer, res holiday.Result) error {
	if _, err := fmt.Fprintf(w, "source: %s\n", res.Source); err != nil {
		return err
	}
	for _, h := range res.Holidays {
		line := h.Date + "  " + h.Name
		if h.LocalName != "" && h.LocalName != h.Name {
			line += " (" + h.LocalName + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, strconv.Itoa(len(res.Holidays))+" holidays")
	return err
}
