package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "ws://10.0.0.1:9090", "-i", "15", "-t", "5", "-d", "/tmp/cp", "-b", "sqlite", "-l", "debug"},
			expected: &Config{
				ServerURL: "ws://10.0.0.1:9090", PingInterval: 15 * time.Second, PingTimeout: 5 * time.Second,
				DataDir: "/tmp/cp", DirectoryBackend: "sqlite", LogLevel: "debug",
			},
		},
		{
			name:     "unknown flags ignored",
			args:     []string{"-x", "1", "-a", "ws://h:1", "--verbose"},
			expected: &Config{ServerURL: "ws://h:1"},
		},
		{
			name:     "zero interval disables keepalive",
			args:     []string{"-i", "0"},
			expected: &Config{},
		},
		{name: "bad interval", args: []string{"-i", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestDataDirFlag(t *testing.T) {
	assert.Equal(t, "/x", dataDirFlag([]string{"-a", "ws://h:1", "-d", "/x"}))
	assert.Equal(t, "/y", dataDirFlag([]string{"-d=/y"}))
	assert.Equal(t, "", dataDirFlag([]string{"-a", "ws://h:1"}))
}
