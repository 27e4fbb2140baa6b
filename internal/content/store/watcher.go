package store

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch re-runs Reload whenever the content root changes on disk. Change
// bursts (editor saves, git checkouts) are debounced into one rebuild. A
// failed rebuild keeps the previous snapshot live.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	addAll := func() {
		_ = filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if werr := watcher.Add(path); werr != nil {
					s.log.Warn("watch dir failed", "path", path, "error", werr)
				}
			}
			return nil
		})
	}
	addAll()

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		trigger := make(chan struct{}, 1)
		fire := func() {
			select {
			case trigger <- struct{}{}:
			default:
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(300*time.Millisecond, fire)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.log.Warn("content watcher error", "error", err)
			case <-trigger:
				s.log.Info("content change detected, rebuilding snapshot")
				if err := s.Reload(ctx); err != nil {
					s.log.Error("content rebuild failed, keeping previous snapshot", "error", err)
				}
				// New directories may have appeared.
				addAll()
			}
		}
	}()
	return nil
}
