package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// SweepDir deletes every regular file directly inside dir, including
// symlinks to regular files (the link is removed, not its target).
// Subdirectories are left alone and individual failures are logged. It
// returns the number of files removed.
func SweepDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("unable to read %s: %w", dir, err)
	}

	removed := 0
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		if err := os.Remove(path); err != nil {
			log.Warn("Unable to remove temp file", "path", path, "err", err)
			continue
		}
		removed++
	}
	log.Debug("Swept temp directory", "dir", dir, "removed", removed)
	return removed, nil
}
