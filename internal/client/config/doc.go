// Package config loads runtime configuration for the chattypatty client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file: the path given with -c or -config, otherwise
//     config.json inside the data directory when it exists.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   rendezvous server URL (ws:// or wss://)
//	-i int      keepalive ping interval in seconds, 0 disables
//	-t int      keepalive ping timeout in seconds
//	-d string   data directory
//	-b string   directory backend: json or sqlite
//	-l string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations are strings like "20s" or bare numbers of seconds. Only keys
// present in the file change the configuration:
//
//	{
//	  "central_server": "ws://localhost:8765",
//	  "ping_interval": 20,
//	  "ping_timeout": 10,
//	  "handshake_timeout": "10s",
//	  "lookup_timeout": "10s",
//	  "lookup_field": "target",
//	  "data_dir": "/home/me/.chatty_patty",
//	  "directory_backend": "json",
//	  "watch_directory": false,
//	  "log_level": "info"
//	}
package config
