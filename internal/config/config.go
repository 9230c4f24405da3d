package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all application configuration
type Config struct {
	BotToken    string        `env:"BOT_TOKEN,required"`
	AdminIDs    []int64       `env:"ADMIN_IDS" envSeparator:","`
	PollTimeout time.Duration `env:"POLL_TIMEOUT" envDefault:"10s"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	Database    DatabaseConfig
}

// DatabaseConfig holds storage settings for both backends
type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	Host       string `env:"DB_HOST" envDefault:"localhost"`
	Port       string `env:"DB_PORT" envDefault:"5432"`
	Name       string `env:"DB_NAME" envDefault:"feedback"`
	User       string `env:"DB_USER" envDefault:"feedback"`
	Password   string `env:"DB_PASSWORD"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"./data/feedback.db"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the cross-field rules env tags cannot express
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if len(c.AdminIDs) == 0 {
		return fmt.Errorf("ADMIN_IDS is required")
	}
	for _, id := range c.AdminIDs {
		if id <= 0 {
			return fmt.Errorf("ADMIN_IDS: invalid id %d", id)
		}
	}
	if c.PollTimeout <= 0 {
		return fmt.Errorf("POLL_TIMEOUT must be positive")
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("DB_DRIVER: unsupported driver %q", c.Database.Driver)
	}

	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}
