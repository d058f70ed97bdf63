// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	token := cfg.YNAB.APIToken
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	YNAB          YNABConfig          `yaml:"ynab"`
	Reconcile     ReconcileConfig     `yaml:"reconcile"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// YNABConfig holds YNAB API configuration
type YNABConfig struct {
	APIToken  string `yaml:"api_token"`
	BaseURL   string `yaml:"base_url"`
	BudgetID  string `yaml:"budget_id"`
	AccountID string `yaml:"account_id"`
}

// ReconcileConfig holds default matching tolerances. Requests may override
// them per run.
type ReconcileConfig struct {
	DateToleranceDays int     `yaml:"date_tolerance_days"`
	AmountTolerance   float64 `yaml:"amount_tolerance"`
	FlagColor         string  `yaml:"flag_color"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${YNAB_TOKEN})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8080),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("RECONCILER_DB_PATH", "reconciler.db"),
		},
		YNAB: YNABConfig{
			APIToken:  os.Getenv("YNAB_TOKEN"),
			BaseURL:   getEnv("YNAB_BASE_URL", "https://api.ynab.com/v1"),
			BudgetID:  os.Getenv("YNAB_BUDGET_ID"),
			AccountID: os.Getenv("YNAB_ACCOUNT_ID"),
		},
		Reconcile: ReconcileConfig{
			DateToleranceDays: getEnvInt("RECONCILE_DATE_TOLERANCE_DAYS", 7),
			AmountTolerance:   0.01,
			FlagColor:         getEnv("RECONCILE_FLAG_COLOR", "orange"),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills in values a partial YAML file may omit
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "reconciler.db"
	}
	if c.YNAB.BaseURL == "" {
		c.YNAB.BaseURL = "https://api.ynab.com/v1"
	}
	if c.Reconcile.DateToleranceDays == 0 {
		c.Reconcile.DateToleranceDays = 7
	}
	if c.Reconcile.AmountTolerance == 0 {
		c.Reconcile.AmountTolerance = 0.01
	}
	if c.Reconcile.FlagColor == "" {
		c.Reconcile.FlagColor = "orange"
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = "text"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// GetAPIToken retrieves the YNAB token from config first, then tries the
// given environment variable names in order
func (c *Config) GetAPIToken(envVarNames ...string) string {
	if c.YNAB.APIToken != "" {
		return c.YNAB.APIToken
	}
	for _, envVar := range envVarNames {
		if val := os.Getenv(envVar); val != "" {
			return val
		}
	}
	return ""
}
