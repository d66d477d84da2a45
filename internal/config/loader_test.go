package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const minimalYAML = `
server:
  port: 8088
database:
  user: sentinel
  password: secret
risk_policy:
  critical_threshold: 75
`

func TestLoad_MergesFileAndDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "sentinel", cfg.Database.User)
	assert.Equal(t, 75, cfg.RiskPolicy.CriticalThreshold)
	// Defaults applied for unset fields.
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultWarningThreshold, cfg.RiskPolicy.WarningThreshold)
	assert.Equal(t, 0.4, cfg.RiskPolicy.FilingTrendWeight)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidPolicyRejected(t *testing.T) {
	path := writeConfigFile(t, `
database:
  user: sentinel
risk_policy:
  warning_threshold: 90
  critical_threshold: 70
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GSTSENTINEL_DATABASE_USER", "envuser")
	t.Setenv("GSTSENTINEL_SERVER_PORT", "9090")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "envuser", cfg.Database.User)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestMustLoad_PanicsOnError(t *testing.T) {
	assert.Panics(t, func() { MustLoad("/does/not/exist.yaml") })
}
