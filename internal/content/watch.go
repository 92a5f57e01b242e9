package content

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 250 * time.Millisecond

// Watch reloads the catalog in dir whenever a lesson or test file changes
// and hands the result to onReload. It blocks until ctx is done.
func Watch(ctx context.Context, dir string, onReload func(*Catalog, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	for _, sub := range []string{dir, filepath.Join(dir, "lessons"), filepath.Join(dir, "tests")} {
		if err := w.Add(sub); err != nil {
			return fmt.Errorf("watch %s: %w", sub, err)
		}
	}

	var timer *time.Timer
	reload := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !isContentFile(ev.Name) || ev.Op == fsnotify.Chmod {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			onReload(LoadDir(dir))

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			onReload(nil, fmt.Errorf("watch %s: %w", dir, err))
		}
	}
}

func isContentFile(name string) bool {
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
