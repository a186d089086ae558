package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/adeilh/vacation/calendar"
	"github.com/adeilh/vacation/holiday"
)

var (
	calendarCountry string
	calendarDate    string
	calendarView    string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Render a month or quarter calendar with holiday weeks shaded",
	Long: `Render a month or quarter calendar. Holidays are starred; the mark after
each day is the week shade: "+" for one holiday, "#" for more, "." for a quiet weekend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		view, err := calendar.ParseView(calendarView)
		if err != nil {
			return err
		}
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Close()
		}()

		date := a.svc.Now().UTC()
		if calendarDate != "" {
			if date, err = time.Parse(holiday.DateLayout, calendarDate); err != nil {
				return holiday.ErrInvalidDate
			}
		}
		res, err := a.svc.Holidays(cmd.Context(), calendarCountry, date.Year())
		if err != nil {
			return err
		}
		return calendar.Render(cmd.OutOrStdout(), calendar.NewPage(view, date, res.Holidays))
	},
}

func init() {
	calendarCmd.Flags().StringVar(&calendarCountry, "country", holiday.DefaultCountry, "ISO 3166-1 alpha-2 country code")
	calendarCmd.Flags().StringVar(&calendarDate, "date", "", "any day of the month to show, YYYY-MM-DD (default today)")
	calendarCmd.Flags().StringVar(&calendarView, "view", string(calendar.ViewMonth), "month or quarter")
}
