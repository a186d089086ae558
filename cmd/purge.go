package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached records older than the store TTL from a SQL store",
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		p, ok := a.store.(purger)
		if !ok {
			return fmt.Errorf("store driver %q does not support purge", cfg.Store.Driver)
		}
		n, err := p.Purge(cmd.Context(), a.svc.Now().Add(-cfg.Store.TTL))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "purged %d stale records\n", n)
		return nil
	},
}
