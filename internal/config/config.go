// Package config loads service settings from the environment (and an optional .env file).
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Secret wraps a sensitive string so it never ends up in logs.
type Secret string

func (s Secret) String() string   { return "[REDACTED]" }
func (s Secret) GoString() string { return "[REDACTED]" }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// minSessionSecret is the shortest key accepted for the cookie store.
const minSessionSecret = 32

type Config struct {
	DBDriver      string
	DBDSN         Secret
	ServerPort    string
	SessionSecret Secret
	SessionSecure bool
	CORSOrigins   []string
	LogLevel      string
	AdminUsername string
	AdminPassword Secret
	SeedCities    bool
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver:      strings.ToLower(envOrDefault("DB_DRIVER", DriverPostgres)),
		DBDSN:         Secret(os.Getenv("DB_DSN")),
		ServerPort:    envOrDefault("SERVER_PORT", "8080"),
		SessionSecret: Secret(os.Getenv("SESSION_SECRET")),
		SessionSecure: envOrDefault("SESSION_SECURE", "true") == "true",
		LogLevel:      envOrDefault("LOG_LEVEL", "info"),
		AdminUsername: envOrDefault("ADMIN_USERNAME", "admin@oms.local"),
		AdminPassword: Secret(os.Getenv("ADMIN_PASSWORD")),
		SeedCities:    envOrDefault("SEED_CITIES", "false") == "true",
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.ServerPort
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverMySQL, c.DBDriver)
	}

	if c.DBDSN.Value() == "" {
		return fmt.Errorf("DB_DSN is not set")
	}

	port, err := strconv.Atoi(c.ServerPort)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("SERVER_PORT must be an integer between 1 and 65535")
	}

	if c.SessionSecret.Value() == "" {
		return fmt.Errorf("SESSION_SECRET is not set")
	}
	if len(c.SessionSecret.Value()) < minSessionSecret {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", minSessionSecret)
	}

	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain '*' (session cookies require explicit origins)")
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q", origin)
		}
	}

	return nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
