package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	domainconfig "workable/domain/config"
	"workable/pkg/utils"
)

// Config holds all application configuration
type Config struct {
	// Application
	Environment string `yaml:"environment" validate:"oneof=development production test"`

	// Logging
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	// Metrics
	EnableMetrics    bool   `yaml:"enable_metrics"`
	MetricsNamespace string `yaml:"metrics_namespace" validate:"required"`

	// Export defaults
	MaxTreeDepth int `yaml:"max_tree_depth" validate:"min=1,max=100"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Environment:      "development",
		LogLevel:         "info",
		EnableMetrics:    true,
		MetricsNamespace: "workable",
		MaxTreeDepth:     10,
	}
}

// Load builds the configuration in three layers: built-in defaults, an
// optional YAML file, and WORKABLE_* environment variables on top.
// An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvironment()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DomainProfile returns the domain rule set for the configured environment
func (c *Config) DomainProfile() *domainconfig.DomainConfig {
	return domainconfig.LoadDomainConfig(c.Environment)
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// applyEnvironment overlays WORKABLE_* environment variables
func (c *Config) applyEnvironment() {
	c.Environment = getEnv("WORKABLE_ENV", c.Environment)
	c.LogLevel = getEnv("WORKABLE_LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("WORKABLE_METRICS", c.EnableMetrics)
	c.MetricsNamespace = getEnv("WORKABLE_METRICS_NAMESPACE", c.MetricsNamespace)
	c.MaxTreeDepth = getEnvInt("WORKABLE_MAX_TREE_DEPTH", c.MaxTreeDepth)
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
