package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Store.TTL)
	assert.Equal(t, 10, cfg.Store.MaxConns)
	assert.Equal(t, []string{ProviderNager, ProviderLocal}, cfg.Providers.Order)
	assert.Equal(t, "https://date.nager.at", cfg.Providers.Nager.BaseURL)
	assert.Equal(t, []string{"IN", "US", "GB", "DE", "AU"}, cfg.Countries)
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("VACATION_SERVER_ADDR", ":9090")
	t.Setenv("VACATION_STORE_DRIVER", "sqlite")
	t.Setenv("VACATION_STORE_PATH", "/tmp/holidays.db")
	t.Setenv("VACATION_STORE_TTL", "24h")
	t.Setenv("VACATION_STORE_MAX_CONNS", "25")
	t.Setenv("VACATION_PROVIDERS_ORDER", "local, nager")
	t.Setenv("VACATION_PROVIDERS_NAGER_RETRIES", "5")
	t.Setenv("VACATION_COUNTRIES", "US,GB")
	t.Setenv("VACATION_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, DriverSQLite, cfg.Store.Driver)
	require.Equal(t, "/tmp/holidays.db", cfg.Store.Path)
	require.Equal(t, 24*time.Hour, cfg.Store.TTL)
	require.Equal(t, 25, cfg.Store.MaxConns)
	require.Equal(t, []string{ProviderLocal, ProviderNager}, cfg.Providers.Order)
	require.Equal(t, 5, cfg.Providers.Nager.Retries)
	require.Equal(t, []string{"US", "GB"}, cfg.Countries)
	require.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacation.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: postgres
  dsn: postgres://vacation@localhost/vacation?sslmode=disable
providers:
  order: [nager]
  nager:
    timeout: 3s
log:
  level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, []string{ProviderNager}, cfg.Providers.Order)
	assert.Equal(t, 3*time.Second, cfg.Providers.Nager.Timeout)
	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
	// Untouched keys keep their defaults.
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }, `unknown store.driver "mongo"`},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = DriverPostgres }, "store.dsn is required"},
		{"postgres without pool", func(c *Config) {
			c.Store.Driver, c.Store.DSN, c.Store.MaxConns = DriverPostgres, "postgres://localhost/vacation", 0
		}, "store.max_conns must be at least 1"},
		{"redis without url", func(c *Config) { c.Store.Driver = DriverRedis }, "store.redis_url is required"},
		{"zero ttl", func(c *Config) { c.Store.TTL = 0 }, "store.ttl must be positive"},
		{"no providers", func(c *Config) { c.Providers.Order = nil }, "at least one provider"},
		{"unknown provider", func(c *Config) { c.Providers.Order = []string{"google"} }, `unknown provider "google"`},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, `unknown log.format "xml"`},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, `unknown log.level "loud"`},
		{"bad country", func(c *Config) { c.Countries = []string{"USA"} }, `invalid country "USA"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.NoError(t, Default().Validate())
}

// chdir changes the working directory for the test and restores it on
// cleanup (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
