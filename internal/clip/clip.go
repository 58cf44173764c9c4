// Package clip reads text from the system clipboard.
package clip

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrEmpty is returned when the clipboard holds no text.
var ErrEmpty = errors.New("clipboard is empty")

// Source provides raw clipboard text.
type Source interface {
	ReadAll() (string, error)
}

type system struct{}

func (system) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", errors.New("no clipboard utility available (install xclip, xsel or wl-clipboard)")
	}
	return clipboard.ReadAll()
}

// System returns the OS clipboard.
func System() Source { return system{} }

// Reader reads trimmed text from a Source.
type Reader struct {
	src Source
}

// NewReader returns a Reader over src, or over the system clipboard when src
// is nil.
func NewReader(src Source) *Reader {
	if src == nil {
		src = System()
	}
	return &Reader{src: src}
}

// Read returns the clipboard text with surrounding whitespace removed.
func (r *Reader) Read() (string, error) {
	text, err := r.src.ReadAll()
	if err != nil {
		return "", fmt.Errorf("unable to read clipboard: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// Static is a Source returning fixed text.
type Static string

// ReadAll implements Source.
func (s Static) ReadAll() (string, error) { return string(s), nil }
