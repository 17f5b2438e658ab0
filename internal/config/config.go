package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrMissingJWTSecret  = errors.New("JWT_SECRET must be set")
	ErrUnsupportedDriver = errors.New("DB_DRIVER must be mysql or sqlite")
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	Port           string
	Env            string
	DBDriver       string
	DatabaseDSN    string
	JWTSecret      string
	AllowedOrigins []string
}

// Load reads the configuration from the environment. A missing signing key is
// fatal: callers are expected to log the error and exit.
func Load() (Config, error) {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DBDriver:       getEnv("DB_DRIVER", DriverMySQL),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/recipebox?parseTime=true"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	switch cfg.DBDriver {
	case DriverMySQL, DriverSQLite:
	default:
		return Config{}, fmt.Errorf("%w: got %q", ErrUnsupportedDriver, cfg.DBDriver)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
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
