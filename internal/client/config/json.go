package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/flagx"
	"github.com/dmitrijs2005/chattypatty/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell a key that is absent from one set to its zero value.
type JsonConfig struct {
	CentralServer    *string         `json:"central_server"`
	PingInterval     *timex.Duration `json:"ping_interval"`
	PingTimeout      *timex.Duration `json:"ping_timeout"`
	HandshakeTimeout *timex.Duration `json:"handshake_timeout"`
	LookupTimeout    *timex.Duration `json:"lookup_timeout"`
	LookupField      *string         `json:"lookup_field"`
	DataDir          *string         `json:"data_dir"`
	DirectoryBackend *string         `json:"directory_backend"`
	WatchDirectory   *bool           `json:"watch_directory"`
	LogLevel         *string         `json:"log_level"`
}

// configPath picks the JSON file: an explicit -c/-config path, else
// config.json in the data directory (from -d or the default) when present.
func configPath(cfg *Config, args []string) (path string, explicit bool) {
	if p := flagx.ConfigFile(args); p != "" {
		return p, true
	}

	dir := cfg.DataDir
	if d := dataDirFlag(args); d != "" {
		dir = d
	}
	return filepath.Join(dir, common.ConfigFileName), false
}

// parseJSON overlays cfg with the keys present in the JSON file. A missing
// implicit file is not an error; a missing explicit one is.
func parseJSON(cfg *Config, args []string) error {
	path, explicit := configPath(cfg, args)

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}

func (jc *JsonConfig) apply(cfg *Config) {
	if jc.CentralServer != nil {
		cfg.ServerURL = *jc.CentralServer
	}
	if jc.PingInterval != nil {
		cfg.PingInterval = jc.PingInterval.Duration
	}
	if jc.PingTimeout != nil {
		cfg.PingTimeout = jc.PingTimeout.Duration
	}
	if jc.HandshakeTimeout != nil {
		cfg.HandshakeTimeout = jc.HandshakeTimeout.Duration
	}
	if jc.LookupTimeout != nil {
		cfg.LookupTimeout = jc.LookupTimeout.Duration
	}
	if jc.LookupField != nil {
		cfg.LookupField = *jc.LookupField
	}
	if jc.DataDir != nil {
		cfg.DataDir = *jc.DataDir
	}
	if jc.DirectoryBackend != nil {
		cfg.DirectoryBackend = *jc.DirectoryBackend
	}
	if jc.WatchDirectory != nil {
		cfg.WatchDirectory = *jc.WatchDirectory
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
}
