package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "plotscout.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentQueries)
	assert.Equal(t, "mock", cfg.Inventory.Mode)
	assert.Equal(t, "mock", cfg.Pricing.Mode)
	assert.Equal(t, int64(1024), cfg.Anthropic.MaxTokens)

	assert.InDelta(t, 5.0, cfg.Pipeline.MinAreaAcres, 0.001)
	assert.Equal(t, 10, cfg.Pipeline.TopListings)
	assert.Equal(t, 5, cfg.Pipeline.TopRecommendations)
	assert.InDelta(t, 1200.0, cfg.Pipeline.OptimalAreaSqft, 0.001)
	assert.InDelta(t, 30.0, cfg.Pipeline.Weights.Price, 0.001)
	assert.InDelta(t, 25.0, cfg.Pipeline.Weights.Area, 0.001)
	assert.InDelta(t, 20.0, cfg.Pipeline.Weights.RERARegistered, 0.001)
	assert.InDelta(t, 10.0, cfg.Pipeline.Weights.RERAUnlisted, 0.001)
	assert.InDelta(t, 3.0, cfg.Pipeline.Weights.AmenityPerItem, 0.001)
	assert.InDelta(t, 15.0, cfg.Pipeline.Weights.AmenityCap, 0.001)
	assert.InDelta(t, 8.0, cfg.Pipeline.Weights.DeveloperScore, 0.001)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/plotscout
log:
  level: debug
  format: console
server:
  port: 9090
pipeline:
  min_area_acres: 2.5
  top_recommendations: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/plotscout", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.InDelta(t, 2.5, cfg.Pipeline.MinAreaAcres, 0.001)
	assert.Equal(t, 3, cfg.Pipeline.TopRecommendations)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Pipeline.TopListings)
	assert.InDelta(t, 30.0, cfg.Pipeline.Weights.Price, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("PLOTSCOUT_STORE_DRIVER", "postgres")
	t.Setenv("PLOTSCOUT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("PLOTSCOUT_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
