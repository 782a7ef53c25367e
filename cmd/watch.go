package cmd

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rubiojr/docsearch/pkg/log"
	"github.com/rubiojr/docsearch/pkg/storage"
)

// reimportDelay coalesces bursts of file events (editors often write a file
// in several steps).
const reimportDelay = 250 * time.Millisecond

// watchContent re-imports dir into store whenever a file under it changes,
// until ctx is done.
func watchContent(ctx context.Context, store *storage.Store, dir string) error {
	logger := log.ForService("watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Warnf("failed to close content watcher: %v", err)
		}
	}()

	if err := addWatchDirs(watcher, dir); err != nil {
		return err
	}
	logger.Infof("Watching %s for changes", dir)

	var timer *time.Timer
	reimport := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			// New directories need their own watch.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatchDirs(watcher, event.Name); err != nil {
						logger.Warnf("failed to watch %s: %v", event.Name, err)
					}
				}
			}
			logger.Debugf("content changed: %s (%s)", event.Name, event.Op)

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reimportDelay, func() {
				select {
				case reimport <- struct{}{}:
				default:
				}
			})

		case <-reimport:
			res, err := importDir(ctx, store, dir)
			if err != nil {
				logger.Errorf("re-import failed: %v", err)
				continue
			}
			logger.Infof("Content reloaded: %d documents, %d removed", res.Stored, res.Removed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("content watcher error: %v", err)
		}
	}
}

// addWatchDirs adds root and every non-hidden directory below it.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
