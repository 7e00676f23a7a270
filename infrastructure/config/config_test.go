package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workable/infrastructure/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.EnableMetrics)
	assert.Equal(t, "workable", cfg.MetricsNamespace)
	assert.Equal(t, 10, cfg.MaxTreeDepth)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromYAML(t *testing.T) {
	// Arrange
	path := writeConfig(t, `
environment: production
log_level: warn
enable_metrics: false
max_tree_depth: 4
`)

	// Act
	cfg, err := config.Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.EnableMetrics)
	assert.Equal(t, 4, cfg.MaxTreeDepth)
	assert.Equal(t, "workable", cfg.MetricsNamespace, "unset keys keep their defaults")
	assert.True(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	// Arrange
	path := writeConfig(t, "log_level: info\n")
	t.Setenv("WORKABLE_LOG_LEVEL", "debug")
	t.Setenv("WORKABLE_MAX_TREE_DEPTH", "25")

	// Act
	cfg, err := config.Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 25, cfg.MaxTreeDepth)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, "log_level: shouting\n")

	_, err := config.Load(path)

	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_DomainProfile(t *testing.T) {
	cfg := config.Default()
	cfg.Environment = "production"

	profile := cfg.DomainProfile()

	require.NotNil(t, profile)
	assert.True(t, profile.RequireUniqueNames, "production profile tightens validation")
}

// Test helpers

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workable.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
