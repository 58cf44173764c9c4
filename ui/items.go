package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/dgnsrekt/paste2audio/internal/library"
	"github.com/dustin/go-humanize"
)

// item adapts a library entry to the list component.
type item struct {
	entry library.Entry
}

func (i item) Title() string       { return i.entry.Name() }
func (i item) FilterValue() string { return i.entry.Name() }

func (i item) Description() string {
	return fmt.Sprintf("%s · %s · %s",
		formatTime(i.entry.Duration),
		humanize.Bytes(uint64(i.entry.Size)), //nolint:gosec
		humanize.Time(i.entry.Created),
	)
}

func toItems(entries []library.Entry) []list.Item {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = item{entry: e}
	}
	return items
}
