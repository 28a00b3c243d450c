package directory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/chattypatty/internal/client/models"
	"github.com/dmitrijs2005/chattypatty/internal/client/repositories/peers"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestWatch_NotWatchable(t *testing.T) {
	d := New(&memRepo{}, logging.Discard())
	require.ErrorIs(t, d.Watch(context.Background()), ErrNotWatchable)
}

func TestWatch_ReloadsOnExternalWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), common.PeersFileName)
	d := newDir(t, peers.NewJSONRepository(path))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Watch(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// another writer replaces the file behind the directory's back
	other := peers.NewJSONRepository(path)
	require.Eventually(t, func() bool {
		_ = other.Replace(context.Background(), []models.PeerRecord{{Username: "mallory", Address: "10.9.9.9"}})
		_, ok := d.Get("mallory")
		return ok
	}, 5*time.Second, 200*time.Millisecond)
}
