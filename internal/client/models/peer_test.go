package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/stretchr/testify/require"
)

func TestPeerRecord_MatchesQuery(t *testing.T) {
	r := PeerRecord{Username: "AliceCooper"}

	require.True(t, r.MatchesQuery(""))
	require.True(t, r.MatchesQuery("alice"))
	require.True(t, r.MatchesQuery("COOP"))
	require.False(t, r.MatchesQuery("bob"))
}

func TestProfile_AsPeer(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.Local)
	p := Profile{Username: "alice", Address: "10.0.0.2", CreatedAt: now, LastSeen: now, IsOnline: true}

	got := p.AsPeer()
	require.Equal(t, PeerRecord{Username: "alice", Address: "10.0.0.2", CreatedAt: now, LastSeen: now, IsOnline: true}, got)
}

func TestPeerRecord_JSONShape(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 30, 15, 0, time.Local)
	b, err := json.Marshal(PeerRecord{Username: "alice", Address: "10.0.0.2", CreatedAt: ts, LastSeen: ts, IsOnline: true})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"username": "alice",
		"ip": "10.0.0.2",
		"created_at": "2024-05-01 10:30:15",
		"last_seen": "2024-05-01 10:30:15",
		"is_online": true
	}`, string(b))
}

func TestPeerRecord_UnmarshalDefaultsAndUnknownFields(t *testing.T) {
	var r PeerRecord
	err := json.Unmarshal([]byte(`{"username":"bob","extra":42}`), &r)
	require.NoError(t, err)
	require.Equal(t, "bob", r.Username)
	require.Equal(t, common.UnknownAddress, r.Address)
	require.True(t, r.CreatedAt.IsZero())
	require.False(t, r.IsOnline)
}

func TestPeerRecord_UnmarshalRFC3339(t *testing.T) {
	var r PeerRecord
	err := json.Unmarshal([]byte(`{"username":"bob","ip":"1.2.3.4","created_at":"2024-05-01T10:30:15Z"}`), &r)
	require.NoError(t, err)
	require.True(t, r.CreatedAt.Equal(time.Date(2024, 5, 1, 10, 30, 15, 0, time.UTC)))
}

func TestPeerRecord_UnmarshalBadTimestamp(t *testing.T) {
	var r PeerRecord
	err := json.Unmarshal([]byte(`{"username":"bob","last_seen":"yesterday"}`), &r)
	require.Error(t, err)
}

func TestProfile_RoundTripKeepsSeconds(t *testing.T) {
	ts := time.Date(2023, 12, 31, 23, 59, 58, 0, time.Local)
	in := Profile{Username: "alice", Address: "192.168.1.5", CreatedAt: ts, LastSeen: ts, IsOnline: true}

	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out Profile
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, in.Username, out.Username)
	require.Equal(t, in.Address, out.Address)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.True(t, in.LastSeen.Equal(out.LastSeen))
	require.True(t, out.IsOnline)
}

func TestProfile_MissingIPStaysEmpty(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"username":"alice"}`), &p))
	require.Empty(t, p.Address)
}

func TestFormatTime_Zero(t *testing.T) {
	require.Equal(t, "", FormatTime(time.Time{}))
	tm, err := ParseTime("")
	require.NoError(t, err)
	require.True(t, tm.IsZero())
}
