// Package config loads service configuration from the environment.
// An optional .env file in the working directory is read first.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store backends accepted by STORE.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json or console
}

// ServerConfig holds HTTP server timeouts shared by both binaries.
type ServerConfig struct {
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"` // if set, used as-is
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"DB_NAME" envDefault:"activities"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN builds a libpq-compatible connection string.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// APIConfig configures the activities API server.
type APIConfig struct {
	Port               string `env:"PORT" envDefault:"8080"`
	Store              string `env:"STORE" envDefault:"postgres"`
	SQLitePath         string `env:"SQLITE_PATH" envDefault:"activities.db"`
	SeedDefaults       bool   `env:"SEED_DEFAULTS" envDefault:"true"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
}

// RosterConfig configures the roster web frontend.
type RosterConfig struct {
	Port       string        `env:"ROSTER_PORT" envDefault:"3000"`
	APIBaseURL string        `env:"ROSTER_API_BASE_URL" envDefault:"http://localhost:8080"`
	APITimeout time.Duration `env:"ROSTER_API_TIMEOUT" envDefault:"15s"`

	Server ServerConfig
	Log    LogConfig
}

// LoadAPI reads the API server configuration.
func LoadAPI() (*APIConfig, error) {
	var cfg APIConfig
	if err := parse(&cfg); err != nil {
		return nil, err
	}
	switch cfg.Store {
	case StorePostgres, StoreSQLite:
	default:
		return nil, fmt.Errorf("unknown STORE %q (want %s or %s)", cfg.Store, StorePostgres, StoreSQLite)
	}
	return &cfg, nil
}

// LoadRoster reads the roster frontend configuration.
func LoadRoster() (*RosterConfig, error) {
	var cfg RosterConfig
	if err := parse(&cfg); err != nil {
		return nil, err
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("ROSTER_API_BASE_URL is empty")
	}
	return &cfg, nil
}

func parse(target any) error {
	_ = godotenv.Load() // .env is optional
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
