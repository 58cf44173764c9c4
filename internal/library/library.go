// Package library tracks the recordings produced in a session.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/naming"
	"github.com/dgnsrekt/paste2audio/internal/wavfile"
	"github.com/sahilm/fuzzy"
)

// ErrNotFound is returned for paths not in the library.
var ErrNotFound = errors.New("file not in library")

// Entry is one produced file.
type Entry struct {
	Path     string
	Size     int64
	Duration time.Duration
	Created  time.Time
}

// Name returns the file's base name.
func (e Entry) Name() string { return filepath.Base(e.Path) }

// Library is an ordered list of produced files, oldest first.
type Library struct {
	mu      sync.RWMutex
	entries []Entry
}

// New returns an empty Library.
func New() *Library {
	return &Library{}
}

// Add appends path, reading its size and duration. Adding a path already
// present refreshes its entry in place.
func (l *Library) Add(path string) (Entry, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Entry{}, fmt.Errorf("unable to add %s: %w", path, err)
	}
	e := Entry{Path: path, Size: fi.Size(), Created: fi.ModTime()}
	if info, err := wavfile.Probe(path); err == nil {
		e.Duration = info.Duration
	} else {
		log.Warn("Unable to read recording duration", "path", path, "err", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(path); i >= 0 {
		l.entries[i] = e
		return e, nil
	}
	l.entries = append(l.entries, e)
	return e, nil
}

// Remove deletes path from disk and from the list. A failed deletion is
// logged; the entry is dropped regardless.
func (l *Library) Remove(path string) error {
	l.mu.Lock()
	i := l.indexLocked(path)
	if i < 0 {
		l.mu.Unlock()
		return ErrNotFound
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	l.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Error("Unable to delete recording", "path", path, "err", err)
	}
	return nil
}

// Forget drops path from the list without touching the disk.
func (l *Library) Forget(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexLocked(path)
	if i < 0 {
		return false
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	return true
}

// Entries returns a copy of the list.
func (l *Library) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Index returns the position of path, or -1.
func (l *Library) Index(path string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexLocked(path)
}

func (l *Library) indexLocked(path string) int {
	for i, e := range l.entries {
		if e.Path == path {
			return i
		}
	}
	return -1
}

// Filter returns the entries whose names fuzzy-match query, best match
// first. An empty query returns every entry.
func (l *Library) Filter(query string) []Entry {
	entries := l.Entries()
	if strings.TrimSpace(query) == "" {
		return entries
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	matches := fuzzy.Find(query, names)
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, entries[m.Index])
	}
	return out
}

// Scan adds the processed recordings already present in dir, oldest first.
func (l *Library) Scan(dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, naming.ProcessedPrefix+"*.wav"))
	if err != nil {
		return 0, err
	}
	type found struct {
		path string
		mod  time.Time
	}
	var files []found
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, found{p, fi.ModTime()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].mod.Before(files[j].mod) })

	n := 0
	for _, f := range files {
		if _, err := l.Add(f.path); err == nil {
			n++
		}
	}
	return n, nil
}
