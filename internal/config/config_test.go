package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "newsletter-analytics", cfg.App.Name)
	assert.Equal(t, 1, cfg.Analysis.Workers)
	assert.Equal(t, time.Second, cfg.Analysis.RequestDelay)
	assert.Equal(t, 5, cfg.Analysis.TopN)
	assert.Equal(t, "https://substack.com", cfg.Provider.Search.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Cache.DocumentTTL)
	assert.False(t, cfg.Schedule.Enabled)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
analysis:
  workers: 4
  request_delay: 250ms
schedule:
  enabled: true
  interval: 1h
  publications:
    - platformer
    - stratechery
`), 0o600))

	t.Setenv("ANALYTICS_APP_PORT", "9090")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Analysis.Workers)
	assert.Equal(t, 250*time.Millisecond, cfg.Analysis.RequestDelay)
	assert.Equal(t, []string{"platformer", "stratechery"}, cfg.Schedule.Publications)
	assert.Equal(t, 9090, cfg.App.Port)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("analysis:\n  workers: 0\n"), 0o600))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.workers")
}

func TestLoad_AllowOrigins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ANALYTICS_APP_ALLOW_ORIGINS", "https://dash.example.com,https://ops.example.com")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://dash.example.com", "https://ops.example.com"}, cfg.App.AllowOrigins)
}

func TestLoad_CacheTTLMustUndercutSchedule(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schedule:
  enabled: true
  interval: 30m
  publications: [platformer]
cache:
  enabled: true
  document_ttl: 30m
`), 0o600))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache.document_ttl")

	t.Setenv("ANALYTICS_CACHE_DOCUMENT_TTL", "5m")
	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Cache.DocumentTTL)
}
