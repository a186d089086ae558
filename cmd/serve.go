package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adeilh/vacation/api"
	"github.com/adeilh/vacation/httpx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the holiday HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			_ = a.Close()
		}()

		h, err := api.New(a.svc, api.WithLogger(logger), api.WithCountries(api.Countries(cfg.Countries)))
		if err != nil {
			return err
		}
		server := httpx.NewServer(
			httpx.WithAddress(cfg.Server.Addr),
			httpx.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
			httpx.WithLogger(logger),
			httpx.WithCORS(nil),
		)
		server.RegisterRoutes(h.Register)

		err = server.Start(ctx, httpx.WithShutdownTimeout(cfg.Server.ShutdownTimeout))
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}
