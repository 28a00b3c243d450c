package profile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *JSONRepository {
	t.Helper()
	return NewJSONRepository(filepath.Join(t.TempDir(), common.ProfileFileName))
}

func TestJSONRepository_LoadMissing(t *testing.T) {
	_, err := newRepo(t).Load(context.Background())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestJSONRepository_SaveLoad(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)

	in := models.Profile{Username: "alice", Address: "10.0.0.7", CreatedAt: ts, LastSeen: ts, IsOnline: true}
	require.NoError(t, r.Save(ctx, in))

	out, err := r.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", out.Username)
	require.Equal(t, "10.0.0.7", out.Address)
	require.True(t, ts.Equal(out.CreatedAt))
	require.True(t, out.IsOnline)

	info, err := os.Stat(r.Path())
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestJSONRepository_Corrupt(t *testing.T) {
	r := newRepo(t)
	require.NoError(t, os.WriteFile(r.Path(), []byte("{not json"), 0o600))

	_, err := r.Load(context.Background())
	require.ErrorIs(t, err, common.ErrCorrupt)
	require.NotErrorIs(t, err, common.ErrNotFound)
}

func TestJSONRepository_EmptyUsernameIsCorrupt(t *testing.T) {
	r := newRepo(t)
	require.NoError(t, os.WriteFile(r.Path(), []byte(`{"username":"  ","ip":"1.2.3.4"}`), 0o600))

	_, err := r.Load(context.Background())
	require.ErrorIs(t, err, common.ErrCorrupt)
}

func TestJSONRepository_ReadsPrototypeFile(t *testing.T) {
	r := newRepo(t)
	raw := `{
  "username": "patty",
  "ip": "192.168.0.10",
  "created_at": "2024-03-01 12:00:00",
  "last_seen": "2024-03-02 08:15:30",
  "is_online": true
}`
	require.NoError(t, os.WriteFile(r.Path(), []byte(raw), 0o600))

	p, err := r.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "patty", p.Username)
	require.Equal(t, time.Date(2024, 3, 2, 8, 15, 30, 0, time.Local), p.LastSeen)
}
