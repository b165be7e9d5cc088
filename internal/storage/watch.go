package storage

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/maruel/bookshelf/internal/models"
)

// Watch reloads c whenever its file changes on disk and calls fn with the
// new list. fn is also called once with the current list before watching.
//
// The directory is watched rather than the file because saves replace the
// file through a rename. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, c *Catalog, fn func([]*models.Book)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	path, err := filepath.Abs(c.Path())
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	fn(c.List())
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			slog.DebugContext(ctx, "Catalog changed on disk", "path", path, "op", event.Op.String())
			c.Reload()
			fn(c.List())
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "Error watching catalog", "err", err)
		}
	}
}
