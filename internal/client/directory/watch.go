package directory

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrNotWatchable is returned by Watch when the backing store is not a file.
var ErrNotWatchable = errors.New("directory store is not a file")

type pathed interface {
	Path() string
}

const watchDebounce = 100 * time.Millisecond

// Watch reloads the directory whenever its backing file changes on disk, for
// example when another process edits all_users.json. It blocks until ctx is
// done. The parent directory is watched so atomic renames are seen.
func (d *Directory) Watch(ctx context.Context) error {
	p, ok := d.repo.(pathed)
	if !ok {
		return ErrNotWatchable
	}
	target := filepath.Clean(p.Path())

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.log.Warn(ctx, "watch error", "error", err)

		case <-timer.C:
			if err := d.Reload(ctx); err != nil {
				d.log.Warn(ctx, "reload after change failed", "error", err)
				continue
			}
			d.log.Debug(ctx, "reloaded from disk", "records", d.Len())
		}
	}
}
