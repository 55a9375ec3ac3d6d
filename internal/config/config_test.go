package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, "gemini", cfg.Model.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model.ID)
	assert.Equal(t, 8, cfg.Agent.MaxToolRounds)
	assert.Equal(t, 10, cfg.DataService.TimeoutSeconds)
	assert.Equal(t, 15, cfg.Chart.TimeoutSeconds)
	assert.Equal(t, "python3", cfg.Chart.Python)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Agent.MaxToolRounds, cfg.Agent.MaxToolRounds)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
model:
  provider: vertex
  project: my-project
  region: asia-northeast1
agent:
  maxToolRounds: 3
dataService:
  url: http://localhost:9999
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vertex", cfg.Model.Provider)
	assert.Equal(t, "my-project", cfg.Model.Project)
	assert.Equal(t, 3, cfg.Agent.MaxToolRounds)
	assert.Equal(t, "http://localhost:9999", cfg.DataService.URL)
	// Untouched fields keep defaults
	assert.Equal(t, 15, cfg.Chart.TimeoutSeconds)
	assert.Equal(t, "gemini-2.5-flash", cfg.Model.ID)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [broken"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DEALBRIEF_TEST_SECRET", "sk-123")

	assert.Equal(t, "sk-123", expandEnvVars("${DEALBRIEF_TEST_SECRET}"))
	assert.Equal(t, "plain", expandEnvVars("plain"))
	assert.Equal(t, "${UNSET_VAR_XYZ}", expandEnvVars("${UNSET_VAR_XYZ}"))
}

func TestAPIKeyExpansion(t *testing.T) {
	t.Setenv("DEALBRIEF_TEST_KEY", "real-key")

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "model:\n  apiKey: ${DEALBRIEF_TEST_KEY}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "real-key", cfg.Model.APIKey)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEALBRIEF_API_KEY", "env-key")
	t.Setenv("DEALBRIEF_MODEL", "gemini-2.5-pro")
	t.Setenv("DEALBRIEF_WEB_PORT", "9000")
	t.Setenv("DEALBRIEF_LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Model.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model.ID)
	assert.Equal(t, 9000, cfg.Web.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := Defaults()
	cfg.Model.Project = "proj-1"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "proj-1", loaded.Model.Project)
}
