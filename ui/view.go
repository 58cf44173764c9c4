package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/paste2audio/internal/audio"
	"github.com/dgnsrekt/paste2audio/internal/tempo"
)

var lipglossSpinner = lipgloss.NewStyle().Foreground(mintGreen)

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle("paste2audio"))
	b.WriteString("\n\n")

	status := m.status
	if m.busy() {
		status = m.spinner.View() + " " + status
	}
	b.WriteString(statusLine(status, m.width))
	b.WriteString("\n\n")

	b.WriteString(m.list.View())
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("%s %s / %s\n",
		m.progress.ViewAs(percent(m.position, m.duration)),
		formatTime(m.position),
		formatTime(m.duration),
	))
	b.WriteString(m.controlsView())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m model) controlsView() string {
	return subtleStyle(fmt.Sprintf("%s  •  speed %s  •  volume %d%%",
		stateLabel(m.state), tempo.Label(m.speed), m.volume))
}

func stateLabel(s audio.State) string {
	switch s {
	case audio.StatePlaying:
		return "▶ playing"
	case audio.StatePaused:
		return "⏸ paused"
	default:
		return "■ stopped"
	}
}
