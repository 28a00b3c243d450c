package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/common"
)

// TimeLayout is the timestamp format used in the persisted JSON files.
const TimeLayout = "2006-01-02 15:04:05"

// recordJSON is the on-disk shape shared by profiles and peer records.
type recordJSON struct {
	Username  string `json:"username"`
	IP        string `json:"ip"`
	CreatedAt string `json:"created_at"`
	LastSeen  string `json:"last_seen"`
	IsOnline  bool   `json:"is_online"`
}

// FormatTime renders t in TimeLayout using local time. The zero time is
// rendered as an empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(TimeLayout)
}

// ParseTime accepts TimeLayout (interpreted as local time) or RFC 3339.
// An empty string yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(TimeLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad timestamp %q", s)
	}
	return t, nil
}

func (r PeerRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Username:  r.Username,
		IP:        r.Address,
		CreatedAt: FormatTime(r.CreatedAt),
		LastSeen:  FormatTime(r.LastSeen),
		IsOnline:  r.IsOnline,
	})
}

// UnmarshalJSON ignores unknown fields. A missing ip becomes
// common.UnknownAddress.
func (r *PeerRecord) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	created, err := ParseTime(raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	seen, err := ParseTime(raw.LastSeen)
	if err != nil {
		return fmt.Errorf("last_seen: %w", err)
	}
	if raw.IP == "" {
		raw.IP = common.UnknownAddress
	}
	*r = PeerRecord{
		Username:  raw.Username,
		Address:   raw.IP,
		CreatedAt: created,
		LastSeen:  seen,
		IsOnline:  raw.IsOnline,
	}
	return nil
}

func (p Profile) MarshalJSON() ([]byte, error) {
	return p.AsPeer().MarshalJSON()
}

// UnmarshalJSON decodes a profile. Unlike a peer record, a missing ip stays
// empty so the caller can detect it.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	created, err := ParseTime(raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("created_at: %w", err)
	}
	seen, err := ParseTime(raw.LastSeen)
	if err != nil {
		return fmt.Errorf("last_seen: %w", err)
	}
	*p = Profile{
		Username:  raw.Username,
		Address:   raw.IP,
		CreatedAt: created,
		LastSeen:  seen,
		IsOnline:  raw.IsOnline,
	}
	return nil
}
