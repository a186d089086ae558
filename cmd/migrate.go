package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/adeilh/vacation/config"
	"github.com/adeilh/vacation/db/sql/postgres"
	"github.com/adeilh/vacation/db/sql/sqlite"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations for the SQL stores",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		switch cfg.Store.Driver {
		case config.DriverPostgres:
			err = postgres.Migrate(cmd.Context(), postgres.WithDSN(cfg.Store.DSN))
		case config.DriverSQLite:
			err = sqlite.Migrate(cmd.Context(), cfg.Store.Path)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "store driver %q has no schema to migrate\n", cfg.Store.Driver)
			return nil
		}
		if err != nil {
			return err
		}
		logger.Info("migrations applied", slog.String("driver", cfg.Store.Driver))
		return nil
	},
}
