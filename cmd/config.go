package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/etnz/tradebook"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreLedger = "ledger"
	StoreSQLite = "sqlite"
)

// Environment variables overriding the configuration file.
const (
	EnvStore     = "TRADEBOOK_STORE"
	EnvLedger    = "TRADEBOOK_LEDGER"
	EnvDatabase  = "TRADEBOOK_DB"
	EnvCurrency  = "TRADEBOOK_CURRENCY"
	EnvLogLevel  = "TRADEBOOK_LOG_LEVEL"
	EnvModel     = "TRADEBOOK_MODEL"
	EnvGeminiKey = "GEMINI_API_KEY"
)

// Config is the configuration of the tb application.
type Config struct {
	Store    string `yaml:"store"`     // Store is "ledger" or "sqlite".
	Ledger   string `yaml:"ledger"`    // Ledger is the JSONL file of the ledger store.
	Database string `yaml:"database"`  // Database is the file of the sqlite store.
	Currency string `yaml:"currency"`  // Currency of the trades entered without one.
	LogLevel string `yaml:"log_level"` // LogLevel is a zerolog level name.
	Assist   struct {
		Model  string `yaml:"model"`
		APIKey string `yaml:"-"`
	} `yaml:"assist"`
}

// DefaultConfig returns the configuration used when there is no file.
func DefaultConfig() *Config {
	c := &Config{
		Store:    StoreLedger,
		Ledger:   "trades.jsonl",
		Database: "tradebook.db",
		Currency: tradebook.DefaultCurrency,
		LogLevel: "warn",
	}
	return c
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreLedger:
		if c.Ledger == "" {
			return errors.New("ledger file is required for the ledger store")
		}
	case StoreSQLite:
		if c.Database == "" {
			return errors.New("database file is required for the sqlite store")
		}
	default:
		return fmt.Errorf("invalid store '%s': must be '%s' or '%s'", c.Store, StoreLedger, StoreSQLite)
	}
	if err := tradebook.ValidateCurrency(c.Currency); err != nil {
		return err
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level '%s': %w", c.LogLevel, err)
	}
	return nil
}

// LoadConfig reads the configuration file at path over the defaults, then
// applies the environment, including a .env file if any. A missing file is
// not an error.
func LoadConfig(path string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	c := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(b, c); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	c.Store = getEnv(EnvStore, c.Store)
	c.Ledger = getEnv(EnvLedger, c.Ledger)
	c.Database = getEnv(EnvDatabase, c.Database)
	c.Currency = getEnv(EnvCurrency, c.Currency)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.Assist.Model = getEnv(EnvModel, c.Assist.Model)
	c.Assist.APIKey = getEnv(EnvGeminiKey, c.Assist.APIKey)

	c.normalize()
	return c, nil
}

func (c *Config) normalize() {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
