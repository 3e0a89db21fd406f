package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cursor-agent", cfg.ChildAgentBinaryPath)
	assert.Equal(t, "UTC", cfg.Timezone)
}

func TestLoad_JSONFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	body := `{"child_agent_binary_path": "/opt/bin/cursor-agent", "timezone": "America/New_York"}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/cursor-agent", cfg.ChildAgentBinaryPath)
	assert.Equal(t, "America/New_York", cfg.Timezone)
}

func TestLoad_TOMLFileIsAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor-enhanced-config.toml")
	body := "child_agent_binary_path = \"/opt/bin/cursor-agent\"\ntimezone = \"UTC\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/cursor-agent", cfg.ChildAgentBinaryPath)
}

func TestLoad_EnvVarsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"api_key": "file-key"}`), 0o600))

	t.Setenv("CURSOR_API_KEY", "env-key")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.APIKey)
}

func TestSave_RoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	cfg := Default()
	cfg.APIKey = "secret"

	require.NoError(t, Save(path, cfg))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", reloaded.APIKey)
}

func TestStore_ReloadPicksUpFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"timezone": "UTC"}`), 0o600))

	store, err := NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, "UTC", store.Get().Timezone)

	require.NoError(t, os.WriteFile(path, []byte(`{"timezone": "Asia/Tokyo"}`), 0o600))
	require.NoError(t, store.reload())
	assert.Equal(t, "Asia/Tokyo", store.Get().Timezone)
}
