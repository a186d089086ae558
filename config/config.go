// Package config loads runtime settings from an optional config file and
// VACATION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/adeilh/vacation/holiday"
)

const envPrefix = "VACATION"

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Provider names accepted in providers.order.
const (
	ProviderNager = "nager"
	ProviderLocal = "local"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Countries []string        `mapstructure:"countries"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// StoreConfig selects where holiday records are cached. TTL is the freshness
// window; DSN is used by postgres, Path by sqlite and RedisURL by redis.
type StoreConfig struct {
	Driver   string        `mapstructure:"driver"`
	TTL      time.Duration `mapstructure:"ttl"`
	DSN      string        `mapstructure:"dsn"`
	Path     string        `mapstructure:"path"`
	RedisURL string        `mapstructure:"redis_url"`
	Capacity uint64        `mapstructure:"capacity"`
	MaxConns int           `mapstructure:"max_conns"`
}

type ProvidersConfig struct {
	Order []string    `mapstructure:"order"`
	Nager NagerConfig `mapstructure:"nager"`
}

type NagerConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retries int           `mapstructure:"retries"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{Format: "text", Level: "info"},
		Store: StoreConfig{
			Driver:   DriverMemory,
			TTL:      holiday.DefaultTTL,
			Path:     "vacation.db",
			MaxConns: 10,
		},
		Providers: ProvidersConfig{
			Order: []string{ProviderNager, ProviderLocal},
			Nager: NagerConfig{
				BaseURL: "https://date.nager.at",
				Timeout: 10 * time.Second,
				Retries: 2,
			},
		},
		Countries: []string{"IN", "US", "GB", "DE", "AU"},
	}
}

// Load reads configuration from file and environment variables.
// Environment variables use the prefix "VACATION" and the dot character
// in keys is replaced by an underscore. For example, "store.driver" becomes
// "VACATION_STORE_DRIVER". An empty path looks for config.yaml in the working
// directory and ignores it when missing.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if s := v.GetString("providers.order"); s != "" {
		cfg.Providers.Order = splitList(s)
	}
	if s := v.GetString("countries"); s != "" {
		cfg.Countries = splitList(s)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail at first use.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, errors.New("store.redis_url is required for the redis driver"))
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("store.dsn is required for the postgres driver"))
		}
		if c.Store.MaxConns < 1 {
			errs = append(errs, fmt.Errorf("store.max_conns must be at least 1, got %d", c.Store.MaxConns))
		}
	case DriverSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	if c.Store.TTL <= 0 {
		errs = append(errs, fmt.Errorf("store.ttl must be positive, got %s", c.Store.TTL))
	}
	if len(c.Providers.Order) == 0 {
		errs = append(errs, errors.New("providers.order must name at least one provider"))
	}
	for _, p := range c.Providers.Order {
		if p != ProviderNager && p != ProviderLocal {
			errs = append(errs, fmt.Errorf("unknown provider %q", p))
		}
	}
	if !slices.Contains([]string{"text", "json"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	for _, code := range c.Countries {
		if _, err := holiday.NormalizeCountry(code); err != nil || code == "" {
			errs = append(errs, fmt.Errorf("invalid country %q", code))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// SlogLevel parses Level as debug, info, warn or error.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("unknown log.level %q", l.Level)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(slices.Clone(parts), tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
