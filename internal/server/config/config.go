// Package config loads configuration for the reference-data server.
//
// Priority (highest to lowest):
//  1. Environment variables with FD_ prefix (e.g. FD_HTTP_ADDR)
//  2. config.toml in the working directory
//  3. Built-in defaults
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime settings for the FreightDeck server.
//
// Fields:
//   - Env: development or production.
//   - Addr: bind address for the HTTP API.
//   - DatabaseDSN: PostgreSQL DSN (pgx); empty selects the in-memory store.
//   - AuthSecret: HMAC secret for bearer tokens (HS256); empty disables auth.
//   - TokenTTL: validity window for issued tokens.
//   - LogLevel / LogFormat: structured logging settings.
type Config struct {
	Env         string
	Addr        string
	DatabaseDSN string
	AuthSecret  string
	TokenTTL    time.Duration
	LogLevel    string
	LogFormat   string
}

// Load reads configuration from config.toml and FD_-prefixed environment
// variables, then applies defaults and validates the result.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env vars cover everything.
	}

	v.SetEnvPrefix("FD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Env:         v.GetString("app.env"),
		Addr:        v.GetString("http.addr"),
		DatabaseDSN: v.GetString("database.dsn"),
		AuthSecret:  v.GetString("auth.secret"),
		TokenTTL:    v.GetDuration("auth.token_ttl"),
		LogLevel:    v.GetString("log.level"),
		LogFormat:   v.GetString("log.format"),
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is the panicking variant used by the server entrypoint.
func LoadConfig() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
}

func (c *Config) validate() error {
	if c.Env == "production" {
		if c.AuthSecret == "" {
			return fmt.Errorf("auth.secret is required in production")
		}
		if len(c.AuthSecret) < 32 {
			return fmt.Errorf("auth.secret must be at least 32 characters in production")
		}
		if c.DatabaseDSN == "" {
			return fmt.Errorf("database.dsn is required in production")
		}
	}
	return nil
}
