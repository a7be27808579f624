package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/souqra/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "souqra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// No file in the working directory and no explicit path.
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.Equal(t, "duckduckgo", cfg.Search.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Store.LockTTL)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  format: json
server:
  port: 9090
  origins: [https://app.example.com]
store:
  driver: sqlite
  dsn: /tmp/souqra.db
  lock_ttl: 90s
pipeline:
  styles: ["Minimal", "Retro"]
  concurrency: 2
retention:
  schedule: "@hourly"
  max_age: 48h
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "9090", cfg.Server.Port, "numbers are weakly decoded into strings")
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.Origins)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, 90*time.Second, cfg.Store.LockTTL)
	assert.Equal(t, []string{"Minimal", "Retro"}, cfg.Pipeline.Styles)
	assert.Equal(t, 48*time.Hour, cfg.Retention.MaxAge)

	// Untouched sections keep their defaults.
	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, ".souqra/sessions", cfg.Store.Dir)
}

func TestLoad_Environment(t *testing.T) {
	path := writeConfig(t, "store:\n  driver: memory\n")
	t.Setenv("SOUQRA_STORE_DRIVER", "redis")
	t.Setenv("SOUQRA_STORE_REDIS_ADDR", "cache:6379")
	t.Setenv("SOUQRA_SERVER_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("SOUQRA_LLM_PROVIDER", "anthropic")
	t.Setenv("SOUQRA_LLM_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("BRAVE_API_KEY", "brave-key")
	t.Setenv("SOUQRA_MAX_INPUT_SIZE", "10")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Store.Driver, "environment overrides the file")
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.Origins)
	assert.Equal(t, "sk-ant", cfg.LLM.APIKey)
	assert.Equal(t, "brave-key", cfg.Search.BraveAPIKey)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing Explicit File", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("Malformed YAML", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "store: [unclosed"))
		assert.Error(t, err)
	})

	t.Run("Unknown Driver", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "store:\n  driver: floppy\n"))
		assert.ErrorContains(t, err, "floppy")
	})

	t.Run("SQL Without DSN", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "store:\n  driver: postgres\n"))
		assert.ErrorContains(t, err, "dsn")
	})

	t.Run("Bad Duration", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "store:\n  lock_ttl: soon\n"))
		assert.Error(t, err)
	})
}
