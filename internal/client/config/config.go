package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/presence"
	"github.com/dmitrijs2005/chattypatty/internal/client/protocol"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/logging"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds runtime settings for the client.
type Config struct {
	ServerURL        string
	PingInterval     time.Duration
	PingTimeout      time.Duration
	HandshakeTimeout time.Duration
	LookupTimeout    time.Duration
	LookupField      string

	DataDir          string
	DirectoryBackend string
	WatchDirectory   bool

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "ws://localhost:8765"
	c.PingInterval = 20 * time.Second
	c.PingTimeout = 10 * time.Second
	c.HandshakeTimeout = 10 * time.Second
	c.LookupTimeout = 10 * time.Second
	c.LookupField = protocol.LookupFieldTarget
	c.DataDir = defaultDataDir()
	c.DirectoryBackend = BackendJSON
	c.WatchDirectory = false
	c.LogLevel = "info"
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return common.DataDirName
	}
	return filepath.Join(home, common.DataDirName)
}

// LoadConfig builds a Config from defaults, the JSON file and the process
// command line, in that order, and validates it.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.ServerURL)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("central_server: %w", err))
	case u.Scheme != "ws" && u.Scheme != "wss":
		errs = append(errs, fmt.Errorf("central_server: scheme must be ws or wss, got %q", u.Scheme))
	case u.Host == "":
		errs = append(errs, errors.New("central_server: missing host"))
	}

	if c.PingInterval < 0 {
		errs = append(errs, errors.New("ping_interval must not be negative"))
	}
	if c.PingTimeout < 0 {
		errs = append(errs, errors.New("ping_timeout must not be negative"))
	}
	if c.HandshakeTimeout <= 0 {
		errs = append(errs, errors.New("handshake_timeout must be positive"))
	}
	if c.LookupTimeout <= 0 {
		errs = append(errs, errors.New("lookup_timeout must be positive"))
	}
	if !protocol.ValidLookupField(c.LookupField) {
		errs = append(errs, fmt.Errorf("lookup_field must be %q or %q, got %q",
			protocol.LookupFieldTarget, protocol.LookupFieldUsername, c.LookupField))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.DirectoryBackend != BackendJSON && c.DirectoryBackend != BackendSQLite {
		errs = append(errs, fmt.Errorf("directory_backend must be %q or %q, got %q",
			BackendJSON, BackendSQLite, c.DirectoryBackend))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}

	return errors.Join(errs...)
}

// Presence returns the session settings.
func (c *Config) Presence() presence.Config {
	return presence.Config{
		ServerURL:        c.ServerURL,
		PingInterval:     c.PingInterval,
		PingTimeout:      c.PingTimeout,
		HandshakeTimeout: c.HandshakeTimeout,
		LookupTimeout:    c.LookupTimeout,
		LookupField:      c.LookupField,
	}
}
