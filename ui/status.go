package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

const ellipsis = "…"

// Status line texts.
const (
	statusReady      = "Paste text to convert it to speech."
	statusEmpty      = "Clipboard is empty!"
	statusConverting = "Converting to speech..."
	statusDone       = "Conversion complete! Ready to play."
	statusRetiming   = "Changing speed to %s..."
	statusRetimed    = "Speed set to %s."
)

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	subtleFg  = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}

	titleStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Background(darkGreen).
			Padding(0, 1).
			Render

	statusStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Render

	errorStyle = lipgloss.NewStyle().
			Foreground(red).
			Render

	subtleStyle = lipgloss.NewStyle().
			Foreground(subtleFg).
			Render
)

// formatTime renders d as m:ss.
func formatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// percent returns pos/total clamped to [0, 1].
func percent(pos, total time.Duration) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(pos) / float64(total)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func errorStatus(err error) string {
	return "Error: " + err.Error()
}

func isErrorStatus(s string) bool {
	return strings.HasPrefix(s, "Error: ")
}

// statusLine renders the status text truncated to width.
func statusLine(s string, width int) string {
	if width > 0 {
		s = truncate.StringWithTail(s, uint(width), ellipsis) //nolint:gosec
	}
	if isErrorStatus(s) {
		return errorStyle(s)
	}
	return statusStyle(s)
}
