package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/adeilh/vacation/cache"
	"github.com/adeilh/vacation/cache/memory"
	"github.com/adeilh/vacation/cache/redis"
	"github.com/adeilh/vacation/config"
	"github.com/adeilh/vacation/db/sql/holidaydb"
	"github.com/adeilh/vacation/db/sql/postgres"
	"github.com/adeilh/vacation/db/sql/sqlite"
	"github.com/adeilh/vacation/holiday"
	"github.com/adeilh/vacation/provider"
	"github.com/adeilh/vacation/provider/local"
	"github.com/adeilh/vacation/provider/nager"
)

// app holds the long-lived dependencies shared by the subcommands.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   holiday.Store
	svc     *holiday.Service
	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}
	store, closer, err := openStore(ctx, cfg.Store, autoMigrate)
	if err != nil {
		return nil, err
	}
	a.store = store
	a.closers = append(a.closers, closer)

	svc, err := holiday.NewService(store, newProvider(cfg.Providers, logger),
		holiday.WithTTL(cfg.Store.TTL),
		holiday.WithLogger(logger),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.svc = svc
	logger.Debug("store opened", slog.String("driver", cfg.Store.Driver), slog.Duration("ttl", cfg.Store.TTL))
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// purger is implemented by stores that can drop stale records.
type purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

func openStore(ctx context.Context, cfg config.StoreConfig, migrate bool) (holiday.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		kv := memory.NewStore(cfg.Capacity)
		return cache.NewRecordStore(kv, 0), kv.Close, nil

	case config.DriverRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		kv := redis.NewStore(opts)
		if err := kv.Ping(ctx); err != nil {
			_ = kv.Close()
			return nil, nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
		}
		return cache.NewRecordStore(kv, 0), kv.Close, nil

	case config.DriverPostgres:
		if migrate {
			if err := postgres.Migrate(ctx, postgres.WithDSN(cfg.DSN)); err != nil {
				return nil, nil, err
			}
		}
		db, err := postgres.Open(ctx, postgres.WithDSN(cfg.DSN), postgres.WithPool(cfg.MaxConns, cfg.MaxConns/2, 0))
		if err != nil {
			return nil, nil, err
		}
		return holidaydb.NewRepository(db, holidaydb.Postgres), db.Close, nil

	case config.DriverSQLite:
		if migrate {
			if err := sqlite.Migrate(ctx, cfg.Path); err != nil {
				return nil, nil, err
			}
		}
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return holidaydb.NewRepository(db, holidaydb.SQLite), db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func newProvider(cfg config.ProvidersConfig, logger *slog.Logger) *provider.Chain {
	var members []holiday.Provider
	for _, name := range cfg.Order {
		switch strings.ToLower(name) {
		case config.ProviderNager:
			members = append(members, nager.New(nager.Options{
				BaseURL: cfg.Nager.BaseURL,
				Timeout: cfg.Nager.Timeout,
				Retries: cfg.Nager.Retries,
			}))
		case config.ProviderLocal:
			members = append(members, local.New())
		default:
			logger.Warn("ignoring unknown holiday provider", slog.String("provider", name))
		}
	}
	return provider.Fallback(members...).WithLogger(logger)
}
