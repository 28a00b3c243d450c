package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseJSON_ExplicitFile(t *testing.T) {
	path := writeFile(t, "", "cfg.json", `{
		"central_server": "ws://rv.example:9000",
		"ping_interval": "30s",
		"ping_timeout": 5,
		"lookup_field": "username",
		"directory_backend": "sqlite",
		"watch_directory": true
	}`)

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseJSON(cfg, []string{"-config", path}))

	assert.Equal(t, "ws://rv.example:9000", cfg.ServerURL)
	assert.Equal(t, 30*time.Second, cfg.PingInterval)
	assert.Equal(t, 5*time.Second, cfg.PingTimeout)
	assert.Equal(t, "username", cfg.LookupField)
	assert.Equal(t, BackendSQLite, cfg.DirectoryBackend)
	assert.True(t, cfg.WatchDirectory)
	assert.Equal(t, 10*time.Second, cfg.LookupTimeout, "absent keys keep their value")
}

func TestParseJSON_PrototypeFileInDataDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, common.ConfigFileName, `{
		"central_server": "ws://localhost:8765",
		"ping_interval": 20,
		"ping_timeout": 10
	}`)

	cfg := &Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = "ws://before:1"
	require.NoError(t, parseJSON(cfg, []string{"-d", dir}))

	assert.Equal(t, "ws://localhost:8765", cfg.ServerURL)
	assert.Equal(t, 20*time.Second, cfg.PingInterval)
}

func TestParseJSON_NoFileNoChanges(t *testing.T) {
	cfg := &Config{ServerURL: "ws://keep:1", PingInterval: 42 * time.Second, DataDir: t.TempDir()}
	require.NoError(t, parseJSON(cfg, nil))

	assert.Equal(t, "ws://keep:1", cfg.ServerURL)
	assert.Equal(t, 42*time.Second, cfg.PingInterval)
}

func TestParseJSON_Errors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		cfg := &Config{}
		err := parseJSON(cfg, []string{"-c", filepath.Join(t.TempDir(), "nope.json")})
		require.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeFile(t, "", "bad.json", `{"central_server":`)
		cfg := &Config{}
		require.Error(t, parseJSON(cfg, []string{"-c", path}))
	})

	t.Run("invalid duration", func(t *testing.T) {
		path := writeFile(t, "", "bad.json", `{"ping_interval":"soon"}`)
		cfg := &Config{}
		require.Error(t, parseJSON(cfg, []string{"-c", path}))
	})
}

func TestLoad_FlagsOverrideJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.json", `{"central_server":"ws://json:1","ping_interval":"500ms","log_level":"debug"}`)

	cfg, err := Load([]string{"-c", path, "-a", "ws://flag:2", "-d", dir, "-t", "3"})
	require.NoError(t, err)

	assert.Equal(t, "ws://flag:2", cfg.ServerURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PingInterval, "unset -i must not truncate the JSON value")
	assert.Equal(t, 3*time.Second, cfg.PingTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidResultIsRejected(t *testing.T) {
	path := writeFile(t, "", "cfg.json", `{"directory_backend":"mongo"}`)
	_, err := Load([]string{"-c", path, "-d", t.TempDir()})
	require.Error(t, err)
}
