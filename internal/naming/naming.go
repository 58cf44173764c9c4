// Package naming derives file names for converted recordings from the text
// they were synthesized from.
package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	// MaxBaseLen is the number of characters of the source text kept in a
	// base name.
	MaxBaseLen = 10

	// FallbackBase is used when the text has no letters or digits at all.
	FallbackBase = "recording"

	// ProcessedPrefix marks files that went through the tempo stage.
	ProcessedPrefix = "processed_"
)

// BaseName returns a file-system safe base name built from the first
// characters of text. Only letters, digits and underscores survive.
func BaseName(text string) string {
	text = norm.NFC.String(text)

	var kept []rune
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			kept = append(kept, r)
		}
	}
	if len(kept) > MaxBaseLen {
		kept = kept[:MaxBaseLen]
	}

	base := strings.TrimSpace(string(kept))
	base = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, base)

	if base == "" {
		return FallbackBase
	}
	return base
}

// UniquePath returns dir/base+ext, or the first of dir/base_1+ext,
// dir/base_2+ext, ... that does not exist yet. The check is not atomic: a
// concurrent writer may still create the returned path first.
func UniquePath(dir, base, ext string) (string, error) {
	return uniquePath(dir, base, ext, nil)
}

// RecordingPath is UniquePath for recordings. A candidate also counts as
// taken while its processed file exists, since the recording is renamed to
// that path once it has been processed.
func RecordingPath(dir, base string) (string, error) {
	return uniquePath(dir, base, ".wav", ProcessedPath)
}

func uniquePath(dir, base, ext string, companion func(string) string) (string, error) {
	candidate := filepath.Join(dir, base+ext)
	for counter := 1; ; counter++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken && companion != nil {
			if taken, err = exists(companion(candidate)); err != nil {
				return "", err
			}
		}
		if !taken {
			return candidate, nil
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
	}
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to stat %s: %w", path, err)
	}
	return true, nil
}

// ProcessedPath returns the path of the tempo-stage output for src, next to
// src: data/temp/hello.wav becomes data/temp/processed_hello.wav.
func ProcessedPath(src string) string {
	dir, file := filepath.Split(src)
	ext := filepath.Ext(file)
	name := strings.TrimSuffix(file, ext)
	return filepath.Join(dir, ProcessedPrefix+name+".wav")
}

// SegmentPath returns the temp path of the index-th segment of a job.
func SegmentPath(dir, job string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("seg_%s_%03d.wav", job, index))
}
