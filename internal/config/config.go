// Package config loads ladak settings from an optional YAML file and
// LADAK_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/erazemk/ladak/internal/auth"
	"github.com/erazemk/ladak/internal/export"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the process configuration. It is loaded once and not mutated.
type Config struct {
	Env    string
	Log    LogConfig
	HTTP   HTTPConfig
	Store  StoreConfig
	Auth   AuthConfig
	Export ExportConfig
}

type LogConfig struct {
	Level string
}

type HTTPConfig struct {
	Addr string
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver      string
	SQLitePath  string
	DatabaseURL string
}

type AuthConfig struct {
	// JWTSecret signs session tokens. When empty a secret is generated and
	// persisted by the store.
	JWTSecret string
	Users     []auth.Entry
}

type ExportConfig struct {
	Charset string
}

// Development reports whether the process runs in development mode.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads the configuration. path may be empty, in which case ladak.yaml
// is used if it exists in the working directory or ./config.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("LADAK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("store.database_url", "LADAK_STORE_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("binding DATABASE_URL: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("ladak")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	cfg := &Config{
		Env:  v.GetString("env"),
		Log:  LogConfig{Level: v.GetString("log.level")},
		HTTP: HTTPConfig{Addr: v.GetString("http.addr")},
		Store: StoreConfig{
			Driver:      strings.ToLower(v.GetString("store.driver")),
			SQLitePath:  v.GetString("store.sqlite_path"),
			DatabaseURL: v.GetString("store.database_url"),
		},
		Auth:   AuthConfig{JWTSecret: v.GetString("auth.jwt_secret")},
		Export: ExportConfig{Charset: v.GetString("export.charset")},
	}

	if err := v.UnmarshalKey("auth.users", &cfg.Auth.Users); err != nil {
		return nil, fmt.Errorf("parsing auth.users: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("log.level", "info")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", "ladak.db")
	v.SetDefault("export.charset", export.CharsetUTF8)
}

// Validate checks values that cannot be defaulted. A postgres driver without
// a database URL is not an error here; the server starts in setup mode.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path must not be empty")
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Store.Driver)
	}

	if !export.SupportedCharset(c.Export.Charset) {
		return fmt.Errorf("export.charset %q is not supported", c.Export.Charset)
	}
	return nil
}
