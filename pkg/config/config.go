// Package config handles loading and validation of driver configuration.
//
// Configuration is assembled from three layers, later layers overriding
// earlier ones: the YAML file at ~/.config/ci-driver/config.yml, a .env file
// in the working directory (if present), and process environment variables.
// Validation fails fast before any network call is attempted.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	errMissingToken = errors.New("access token is not set (token in config or GITHUB_TOKEN)")

	// ErrMissingToken is returned when no credential is configured.
	ErrMissingToken = errMissingToken
)

// Config represents the complete configuration for ci-driver.
type Config struct {
	// Token is the provider access credential.
	Token string `yaml:"token"`

	// Repository is the repository or organization URL the driver targets.
	// Empty means the coordinate is resolved from the ambient CI context.
	Repository string `yaml:"repository"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Runner RunnerConfig `yaml:"runner"`
}

// RunnerConfig holds defaults for self-hosted runner provisioning.
type RunnerConfig struct {
	// Workdir is where the runner binary is unpacked and configured.
	Workdir string `yaml:"workdir"`

	// Name is the runner display name.
	Name string `yaml:"name"`

	// Labels are attached to the runner at registration time.
	Labels []string `yaml:"labels"`

	// Single configures the runner in ephemeral mode: one job, then exit.
	Single bool `yaml:"single"`
}

// Load assembles the configuration from file, .env and environment.
// A missing config file is not an error; the environment alone may be
// sufficient.
func Load() (*Config, error) {
	config := &Config{LogLevel: "info"}

	if err := loadFile(config); err != nil {
		return nil, err
	}

	// .env is a development convenience; absence is the common case.
	_ = godotenv.Load()

	applyEnv(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func loadFile(config *Config) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".config", "ci-driver", "config.yml")

	// #nosec G304 - Reading config from user's home directory is intentional
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(config *Config) {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		config.Token = v
	}
	if v := os.Getenv("CI_DRIVER_REPOSITORY"); v != "" {
		config.Repository = v
	}
	if v := os.Getenv("CI_DRIVER_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("CI_DRIVER_RUNNER_LABELS"); v != "" {
		config.Runner.Labels = splitLabels(v)
	}
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Token == "" {
		return errMissingToken
	}
	return nil
}

func splitLabels(v string) []string {
	parts := strings.Split(v, ",")
	labels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			labels = append(labels, p)
		}
	}
	return labels
}
