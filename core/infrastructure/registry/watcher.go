package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hyperterse/querygate/core/infrastructure/logging"
)

const reloadDebounce = 500 * time.Millisecond

// Watch reloads source whenever its registry file changes, until ctx is
// done. The parent directory is watched so editors that replace the file
// are handled.
func Watch(ctx context.Context, source *FileSource) error {
	if source.Path() == "" {
		return fmt.Errorf("registry has no file to watch")
	}

	log := logging.New("registry:watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	target := filepath.Clean(source.Path())
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", target, err)
	}

	reload := make(chan struct{}, 1)

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			case <-reload:
				if err := source.Reload(); err != nil {
					log.Errorf("Registry reload failed, keeping previous definitions: %v", err)
					continue
				}
				log.Infof("Registry reloaded from %s", target)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warnf("Watcher error: %v", err)
			}
		}
	}()

	log.Infof("Watching %s for changes", target)
	return nil
}
