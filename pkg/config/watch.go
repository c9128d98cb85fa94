package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period a Watcher waits for after the last
// change before reloading. Editors often save with several writes.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a configuration file when it changes
type Watcher struct {
	// Debounce coalesces changes that arrive within this period into one
	// reload. Zero reloads on every change.
	Debounce time.Duration

	path    string
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching path. The parent directory is watched so that
// files replaced by rename are picked up.
func NewWatcher(path string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	return &Watcher{Debounce: DefaultDebounce, path: filepath.Clean(path), watcher: watcher}, nil
}

// Run calls onChange with the reloaded configuration once writes to the file
// have settled, or with the error that prevented loading it. It returns when
// ctx is done and closes the watcher.
func (w *Watcher) Run(ctx context.Context, onChange func(*CasinoConfig, error)) error {
	defer func() { _ = w.watcher.Close() }()

	var (
		timer   *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if w.Debounce <= 0 {
				onChange(LoadFile(w.path))
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.Debounce)
			} else {
				timer.Reset(w.Debounce)
			}
			settled = timer.C
		case <-settled:
			settled = nil
			onChange(LoadFile(w.path))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			onChange(nil, fmt.Errorf("watcher error: %w", err))
		case <-ctx.Done():
			return nil
		}
	}
}

// Watch blocks until ctx is done, reloading path on change
func Watch(ctx context.Context, path string, onChange func(*CasinoConfig, error)) error {
	w, err := NewWatcher(path)
	if err != nil {
		return err
	}
	return w.Run(ctx, onChange)
}
