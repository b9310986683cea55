package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL connection string. The DATABASE_URL
	// environment variable (including one loaded from a .env file) takes
	// precedence over the config file value.
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	// ReferenceTimezone is the fixed timezone for calendar-date overlap
	// checks. Time-off conflicts are evaluated on calendar dates in this
	// zone regardless of where a job runs.
	ReferenceTimezone string `yaml:"referenceTimezone" validate:"required"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from crewdesk_config.yaml,
// searching the current directory first, then the user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	// A missing .env file is fine; the config file can carry the URL.
	godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks that the reference
// timezone resolves.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.ReferenceTimezone); err != nil {
		return fmt.Errorf("invalid referenceTimezone %q: %w", cfg.ReferenceTimezone, err)
	}

	return nil
}

// Location returns the reference timezone as a *time.Location. Validate must
// have succeeded first.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReferenceTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid referenceTimezone %q: %w", c.ReferenceTimezone, err)
	}
	return loc, nil
}

// findConfigFile searches for crewdesk_config.yaml in the current directory
// and the home directory.
func findConfigFile() (string, error) {
	configFileName := "crewdesk_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
