// Package common contains shared constants and sentinel errors used across
// the chattypatty client components.
package common

// DataDirName is the per-user directory (relative to the home directory) that
// holds the profile, the peer list and the optional config file.
const DataDirName = ".chatty_patty"

// File names inside the data directory.
const (
	ProfileFileName  = "user_profile.json"
	PeersFileName    = "all_users.json"
	ConfigFileName   = "config.json"
	DatabaseFileName = "directory.db"
)

// UnknownAddress is the placeholder address of a peer learned from a server
// snapshot whose address has not been resolved yet.
const UnknownAddress = "unknown"
