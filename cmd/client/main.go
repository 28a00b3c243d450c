package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dmitrijs2005/chattypatty/internal/client/cli"
	"github.com/dmitrijs2005/chattypatty/internal/client/config"
	"github.com/dmitrijs2005/chattypatty/internal/client/directory"
	"github.com/dmitrijs2005/chattypatty/internal/client/identity"
	"github.com/dmitrijs2005/chattypatty/internal/client/repositories/peers"
	"github.com/dmitrijs2005/chattypatty/internal/client/repositories/profile"
	"github.com/dmitrijs2005/chattypatty/internal/client/runner"
	"github.com/dmitrijs2005/chattypatty/internal/client/storage"
	"github.com/dmitrijs2005/chattypatty/internal/common"
	"github.com/dmitrijs2005/chattypatty/internal/filex"
	"github.com/dmitrijs2005/chattypatty/internal/logging"
	"golang.org/x/term"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	logger := logging.New(level, os.Stderr)

	dataDir, err := filex.DataDir(cfg.DataDir)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openPeers(ctx, cfg, dataDir)
	if err != nil {
		return err
	}
	defer closeRepo()

	dir, err := directory.Open(ctx, repo, logger)
	if err != nil {
		return fmt.Errorf("peer directory: %w", err)
	}
	if cfg.WatchDirectory {
		go func() {
			if err := dir.Watch(ctx); err != nil && !errors.Is(err, directory.ErrNotWatchable) {
				logger.Warn(ctx, "directory watch stopped", "error", err)
			}
		}()
	}

	store := identity.NewStore(profile.NewJSONRepository(filepath.Join(dataDir, common.ProfileFileName)), dir, logger)

	r := runner.New(cfg.Presence(), dir, logger)
	r.Start()
	defer r.Close()

	app := cli.NewApp(cli.Options{
		Identity:    store,
		Directory:   dir,
		Runner:      r,
		Probe:       cfg.Presence(),
		Logger:      logger,
		Out:         os.Stdout,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	})
	return app.Run(ctx, os.Stdin)
}

func openPeers(ctx context.Context, cfg *config.Config, dataDir string) (peers.Repository, func(), error) {
	if cfg.DirectoryBackend != config.BackendSQLite {
		return peers.NewJSONRepository(filepath.Join(dataDir, common.PeersFileName)), func() {}, nil
	}

	db, err := storage.InitDatabase(ctx, filepath.Join(dataDir, common.DatabaseFileName))
	if err != nil {
		return nil, nil, fmt.Errorf("peer database: %w", err)
	}
	return peers.NewSQLiteRepository(db), func() { _ = db.Close() }, nil
}
