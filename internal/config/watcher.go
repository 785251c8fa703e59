package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch follows the ini file at path and calls Store.UpdateConfig whenever
// it changes on disk, debounced by settle to coalesce an editor's
// save-bursts (write-then-rename, multiple partial writes, …) into one
// reload. This is supplementary to the core spec: it is what would drive
// updateConfig if the desktop UI (out of scope) rewrites config.ini. It
// blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, store *Store, settle time.Duration, onReload func(Snapshot), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	var timer *time.Timer
	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if err := store.UpdateConfig(ctx, cfg); err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onReload != nil {
			onReload(cfg)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(settle, reload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
