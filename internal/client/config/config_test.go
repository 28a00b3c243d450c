package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/presence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "ws://localhost:8765", c.ServerURL)
	assert.Equal(t, 20*time.Second, c.PingInterval)
	assert.Equal(t, 10*time.Second, c.PingTimeout)
	assert.Equal(t, "target", c.LookupField)
	assert.Equal(t, BackendJSON, c.DirectoryBackend)
	assert.Equal(t, ".chatty_patty", filepath.Base(c.DataDir))
	assert.NoError(t, c.Validate())
}

func TestLoad_DefaultsWithEmptyDataDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load([]string{"-d", dir})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, "ws://localhost:8765", cfg.ServerURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "defaults", mutate: func(c *Config) {}, ok: true},
		{name: "wss", mutate: func(c *Config) { c.ServerURL = "wss://chat.example.com/ws" }, ok: true},
		{name: "zero ping interval", mutate: func(c *Config) { c.PingInterval = 0 }, ok: true},
		{name: "sqlite backend", mutate: func(c *Config) { c.DirectoryBackend = BackendSQLite }, ok: true},
		{name: "http scheme", mutate: func(c *Config) { c.ServerURL = "http://localhost:8765" }},
		{name: "no host", mutate: func(c *Config) { c.ServerURL = "ws://" }},
		{name: "negative interval", mutate: func(c *Config) { c.PingInterval = -time.Second }},
		{name: "negative timeout", mutate: func(c *Config) { c.PingTimeout = -time.Second }},
		{name: "zero handshake", mutate: func(c *Config) { c.HandshakeTimeout = 0 }},
		{name: "zero lookup timeout", mutate: func(c *Config) { c.LookupTimeout = 0 }},
		{name: "bad lookup field", mutate: func(c *Config) { c.LookupField = "name" }},
		{name: "bad backend", mutate: func(c *Config) { c.DirectoryBackend = "redis" }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "empty data dir", mutate: func(c *Config) { c.DataDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Config
			c.LoadDefaults()
			tt.mutate(&c)
			if tt.ok {
				require.NoError(t, c.Validate())
			} else {
				require.Error(t, c.Validate())
			}
		})
	}
}

func TestPresence(t *testing.T) {
	var c Config
	c.LoadDefaults()
	c.ServerURL = "ws://rv:1"

	require.Equal(t, presence.Config{
		ServerURL:        "ws://rv:1",
		PingInterval:     20 * time.Second,
		PingTimeout:      10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		LookupTimeout:    10 * time.Second,
		LookupField:      "target",
	}, c.Presence())
}
