package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file at the repo root.
const FileName = "rosa.yaml"

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config represents the top-level rosa.yaml configuration.
type Config struct {
	Organisation OrganisationConfig `yaml:"organisation"`
	Storage      StorageConfig      `yaml:"storage"`
	Ledger       LedgerConfig       `yaml:"ledger"`
	Display      DisplayConfig      `yaml:"display"`
	Log          LogConfig          `yaml:"log"`
	Git          GitConfig          `yaml:"git"`
}

// OrganisationConfig identifies the association running the project.
type OrganisationConfig struct {
	Name string `yaml:"name" validate:"required"`
}

// StorageConfig selects where ledgers are kept.
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"required,oneof=csv sqlite"`
	Path    string `yaml:"path,omitempty" validate:"required_if=Backend sqlite"` // sqlite file, relative to the repo root
}

// LedgerConfig holds ledger editing defaults.
type LedgerConfig struct {
	CarryForward bool `yaml:"carry_forward"`
}

// DisplayConfig controls how amounts are printed.
type DisplayConfig struct {
	Locale   string `yaml:"locale" validate:"required,bcp47_language_tag"`
	Currency string `yaml:"currency" validate:"required,iso4217"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email" validate:"omitempty,email"`
}

// envOverrides are read from ROSA_* variables and win over the file.
type envOverrides struct {
	StorageBackend string `envconfig:"STORAGE_BACKEND"`
	StoragePath    string `envconfig:"STORAGE_PATH"`
	LogLevel       string `envconfig:"LOG_LEVEL"`
	Locale         string `envconfig:"LOCALE"`
	GitAutoCommit  *bool  `envconfig:"GIT_AUTO_COMMIT"`
}

var validate = validator.New()

// Load reads a rosa.yaml file from disk, applies ROSA_* overrides and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides cfg with any ROSA_* environment variables that are set.
func ApplyEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("rosa", &env); err != nil {
		return fmt.Errorf("reading environment: %w", err)
	}
	if env.StorageBackend != "" {
		cfg.Storage.Backend = env.StorageBackend
	}
	if env.StoragePath != "" {
		cfg.Storage.Path = env.StoragePath
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.Locale != "" {
		cfg.Display.Locale = env.Locale
	}
	if env.GitAutoCommit != nil {
		cfg.Git.AutoCommit = *env.GitAutoCommit
	}
	return nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(orgName, backend string) *Config {
	cfg := &Config{
		Organisation: OrganisationConfig{
			Name: orgName,
		},
		Storage: StorageConfig{
			Backend: backend,
		},
		Ledger: LedgerConfig{
			CarryForward: true,
		},
		Display: DisplayConfig{
			Locale:   "fr-FR",
			Currency: "EUR",
		},
		Log: LogConfig{
			Level: "info",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Rosa",
			AuthorEmail: "rosa@localhost",
		},
	}
	if backend == BackendSQLite {
		cfg.Storage.Path = "data/rosa.db"
	}
	return cfg
}
