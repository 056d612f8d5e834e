package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Config
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, Default(), onDisk)
}

func TestLoadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"host": "0.0.0.0", "port": 9090},
		"monitoring": {"interval_seconds": 5}
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5, cfg.Monitoring.IntervalSeconds)
	// Omitted fields keep defaults.
	assert.Equal(t, Default().Monitoring.CPUSampleMillis, cfg.Monitoring.CPUSampleMillis)
	assert.Equal(t, Default().Database.Filename, cfg.Database.Filename)
	assert.True(t, cfg.Monitoring.EnableDiskMonitoring)
}

func TestLoadProbeFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"monitoring": {"enable_network_monitoring": false}
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Monitoring.EnableNetworkMonitoring)
	assert.True(t, cfg.Monitoring.EnableProcessMonitoring)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadSanitizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": -1},
		"monitoring": {"interval_seconds": 0, "cpu_sample_millis": -5}
	}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
	assert.Equal(t, Default().Monitoring.IntervalSeconds, cfg.Monitoring.IntervalSeconds)
	assert.Equal(t, Default().Monitoring.CPUSampleMillis, cfg.Monitoring.CPUSampleMillis)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SYSDASH_HOST", "127.0.0.1")
	t.Setenv("SYSDASH_PORT", "9999")
	t.Setenv("SYSDASH_INTERVAL_SECONDS", "7")
	t.Setenv("SYSDASH_THEME", "light")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 7, cfg.Monitoring.IntervalSeconds)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.Equal(t, "127.0.0.1:9999", cfg.Addr())
}

func TestApplyEnvIgnoresMalformed(t *testing.T) {
	t.Setenv("SYSDASH_PORT", "not-a-number")

	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, Default().Server.Port, cfg.Server.Port)
}
