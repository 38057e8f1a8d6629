package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
model:
  provider: scripted
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderScripted, cfg.Model.Provider)
	assert.Equal(t, 5, cfg.Engine.MaxInvalidRetries)
	assert.Equal(t, "bankdesk.db", cfg.Banking.Path)
	assert.Equal(t, "checkpoints.db", cfg.Checkpoints.Path)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FileOverrides(t *testing.T) {
	path := writeConfig(t, `
model:
  provider: anthropic
  api_key: test-key
  name: claude-3-5-sonnet-20241022
engine:
  max_invalid_retries: 2
banking:
  in_memory: true
checkpoints:
  in_memory: true
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderAnthropic, cfg.Model.Provider)
	assert.Equal(t, "test-key", cfg.Model.APIKey)
	assert.Equal(t, 2, cfg.Engine.MaxInvalidRetries)
	assert.True(t, cfg.Banking.InMemory)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BANKDESK_MODEL_API_KEY", "env-key")
	path := writeConfig(t, `
model:
  provider: openai
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Model.APIKey)
}

func TestValidate_Failures(t *testing.T) {
	path := writeConfig(t, `
model:
  provider: openai
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")

	path = writeConfig(t, `
model:
  provider: carrier-pigeon
`)
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider")
}
