// Package models defines the client-side records persisted by chattypatty:
// the local user's Profile and the PeerRecord entries of the directory.
package models

import (
	"strings"
	"time"
)

// PeerRecord is one known user in the local directory.
type PeerRecord struct {
	// Username is unique within the directory and compared case-sensitively.
	Username string

	// Address is an IP literal, or common.UnknownAddress until a lookup
	// resolves it.
	Address string

	// CreatedAt is when the record was first inserted. It never changes.
	CreatedAt time.Time

	// LastSeen is updated whenever a server snapshot lists the user.
	LastSeen time.Time

	IsOnline bool
}

// Profile is the local user's own identity. It has the same shape as a
// PeerRecord; exactly one exists per data directory.
type Profile struct {
	Username  string
	Address   string
	CreatedAt time.Time
	LastSeen  time.Time
	IsOnline  bool
}

// AsPeer converts the profile into the directory record describing it.
func (p Profile) AsPeer() PeerRecord {
	return PeerRecord(p)
}

// MatchesQuery reports whether the username contains query, ignoring case.
// An empty query matches everything.
func (r PeerRecord) MatchesQuery(query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Username), strings.ToLower(query))
}
