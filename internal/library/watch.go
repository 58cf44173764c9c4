package library

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watch follows dir and drops entries whose files disappear outside the
// program. onChange is called after each dropped entry. Watch blocks until
// ctx is done.
func (l *Library) Watch(ctx context.Context, dir string, onChange func(path string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating fsnotify watcher: %w", err)
	}
	defer w.Close() //nolint:errcheck

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	log.Debug("fsnotify watching dir", "dir", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if l.Forget(event.Name) {
				log.Debug("fsnotify event", "file", event.Name, "event", event.Op)
				if onChange != nil {
					onChange(event.Name)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Debug("fsnotify error", "dir", dir, "error", err)
		}
	}
}
