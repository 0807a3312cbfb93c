// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config loads application configuration from an optional config
// file and environment variables. Environment variables win over the file,
// and empty variables count as unset.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

const defaultDBPassword = "changeme"

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// StoreDriver selects the catalog storage: "postgres" or "memory".
	StoreDriver string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache) for public query results
	ValkeyEnabled  bool
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int
	CacheTTL       time.Duration

	// AdminKeyHash is the bcrypt hash of the admin API key.
	AdminKeyHash string

	// DefaultPageSize is the listing limit when a request sends none.
	DefaultPageSize int
	// RateLimit is the number of public API requests allowed per IP per minute.
	RateLimit int

	// Seed fills empty collections with sample data on boot.
	Seed bool
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"server.host":          "APP_HOST",
	"server.port":          "APP_PORT",
	"server.env":           "APP_ENV",
	"store.driver":         "STORE_DRIVER",
	"db.host":              "POSTGRES_HOST",
	"db.port":              "POSTGRES_PORT",
	"db.user":              "POSTGRES_USER",
	"db.password":          "POSTGRES_PASSWORD",
	"db.name":              "POSTGRES_DB",
	"valkey.enabled":       "VALKEY_ENABLED",
	"valkey.host":          "VALKEY_HOST",
	"valkey.port":          "VALKEY_PORT",
	"valkey.password":      "VALKEY_PASSWORD",
	"valkey.db":            "VALKEY_DB",
	"cache.ttl":            "CACHE_TTL",
	"admin.key_hash":       "ADMIN_KEY_HASH",
	"catalog.page_size":    "CATALOG_PAGE_SIZE",
	"catalog.seed":         "CATALOG_SEED",
	"ratelimit.per_minute": "RATE_LIMIT_PER_MINUTE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "tripcatalog")
	v.SetDefault("db.password", defaultDBPassword)
	v.SetDefault("db.name", "tripcatalog")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("valkey.host", "localhost")
	v.SetDefault("valkey.port", "6379")
	v.SetDefault("valkey.db", 0)
	v.SetDefault("cache.ttl", "2m")
	v.SetDefault("catalog.page_size", 12)
	v.SetDefault("ratelimit.per_minute", 120)
}

// Load reads configuration, applying development defaults where
// appropriate. A tripcatalog.yml in the working directory or in
// /etc/tripcatalog is read when present. Returns an error if critical
// values are missing in production mode.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("tripcatalog")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/tripcatalog")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{
		Host:        v.GetString("server.host"),
		Port:        v.GetString("server.port"),
		Env:         v.GetString("server.env"),
		StoreDriver: v.GetString("store.driver"),

		DBHost:     v.GetString("db.host"),
		DBPort:     v.GetString("db.port"),
		DBUser:     v.GetString("db.user"),
		DBPassword: v.GetString("db.password"),
		DBName:     v.GetString("db.name"),

		ValkeyEnabled:  v.GetBool("valkey.enabled"),
		ValkeyHost:     v.GetString("valkey.host"),
		ValkeyPort:     v.GetString("valkey.port"),
		ValkeyPassword: v.GetString("valkey.password"),
		ValkeyDB:       v.GetInt("valkey.db"),
		CacheTTL:       v.GetDuration("cache.ttl"),

		AdminKeyHash: v.GetString("admin.key_hash"),

		DefaultPageSize: v.GetInt("catalog.page_size"),
		RateLimit:       v.GetInt("ratelimit.per_minute"),
	}

	// Seeding defaults to on in development only.
	cfg.Seed = cfg.IsDev()
	if v.IsSet("catalog.seed") {
		cfg.Seed = v.GetBool("catalog.seed")
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 12
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 120
	}

	switch cfg.StoreDriver {
	case DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMemory, cfg.StoreDriver)
	}

	if cfg.Env == "production" {
		if cfg.StoreDriver == DriverPostgres && cfg.DBPassword == defaultDBPassword {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.AdminKeyHash == "" {
			return nil, fmt.Errorf("ADMIN_KEY_HASH must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}
