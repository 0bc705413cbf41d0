package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"
)

// Invalid-row policies accepted in the config file
const (
	InvalidRowsReject = "reject"
	InvalidRowsSkip   = "skip"
)

// ServerConfig configures the HTTP server started by the serve command
type ServerConfig struct {
	Addr string `yaml:"addr,omitempty"`

	// RecalcRule is an optional RRULE (e.g. "FREQ=DAILY;BYHOUR=6") describing
	// when the server recomputes the distribution on its own
	RecalcRule string `yaml:"recalcRule,omitempty"`
}

// Config represents the application configuration
type Config struct {
	SpreadsheetID      string `yaml:"spreadsheetID" validate:"required"`
	ServiceAccountFile string `yaml:"serviceAccountFile" validate:"required"`

	StudentsTab string `yaml:"studentsTab" validate:"required"`
	WeightsTab  string `yaml:"weightsTab" validate:"required"`
	ResultsTab  string `yaml:"resultsTab" validate:"required"`

	// DefaultInstitute is the weight table fallback key; empty means "Other"
	DefaultInstitute string `yaml:"defaultInstitute,omitempty"`

	// InvalidRows selects what the engine does with rows that fail validation
	InvalidRows string `yaml:"invalidRows,omitempty" validate:"omitempty,oneof=reject skip"`

	// HistoryDSN is an optional PostgreSQL connection string; when set, a
	// summary of every distribution run is recorded there
	HistoryDSN string `yaml:"historyDSN,omitempty"`

	Server ServerConfig `yaml:"server,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from campus_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	return LoadWithEnv("")
}

// LoadWithEnv loads the configuration with an environment suffix
// For example, env="test" will look for "campus_config.test.yaml"
func LoadWithEnv(env string) (*Config, error) {
	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks the recalc rule syntax
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Server.RecalcRule != "" {
		if _, err := rrule.StrToRRule(cfg.Server.RecalcRule); err != nil {
			return fmt.Errorf("invalid recalcRule: %w", err)
		}
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.DefaultInstitute == "" {
		cfg.DefaultInstitute = "Other"
	}
	if cfg.InvalidRows == "" {
		cfg.InvalidRows = InvalidRowsReject
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
}

// findConfigFile searches for campus_config.yaml in current directory and home directory
// If env is provided, it is added as an extension (e.g. "campus_config.test.yaml")
func findConfigFile(env string) (string, error) {
	configFileName := "campus_config.yaml"
	if env != "" {
		configFileName = "campus_config." + env + ".yaml"
	}

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
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
