package scanner

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"
)

// WatchEvent describes one file-level change observed by watch mode.
type WatchEvent struct {
	Path string
	Op   fsnotify.Op
}

// Watch implements the scanner's optional continuous-indexing supplement
// (SPEC_FULL.md §10): it emits a WatchEvent for every create/write/remove
// under the repository root, deduplicating events for the same path via
// singleflight: an event that arrives while onEvent is still running for
// that path is merged into the running call. There is no debounce window;
// an event arriving after that call returns triggers onEvent again.
func (s *Scanner) Watch(ctx context.Context, onEvent func(WatchEvent)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, s.rootAbs, s.cfg); err != nil {
		return err
	}

	var g singleflight.Group
	logger := slog.With("component", "scanner.watch")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !s.isSupported(event.Name) {
				continue
			}
			rel, _ := filepath.Rel(s.rootAbs, event.Name)
			if s.matchesIgnore(filepath.ToSlash(rel)) {
				continue
			}
			key := event.Name
			go func(ev fsnotify.Event) {
				_, _, _ = g.Do(key, func() (interface{}, error) {
					onEvent(WatchEvent{Path: ev.Name, Op: ev.Op})
					return nil, nil
				})
			}(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

func addRecursive(watcher *fsnotify.Watcher, root string, cfg Config) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}
