package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Paste      key.Binding
	PlayPause  key.Binding
	Reset      key.Binding
	Delete     key.Binding
	Speed      key.Binding
	VolumeUp   key.Binding
	VolumeDown key.Binding
	SeekBack   key.Binding
	SeekFwd    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Paste: key.NewBinding(
			key.WithKeys("p", "ctrl+v"),
			key.WithHelp("p", "paste & convert"),
		),
		PlayPause: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "play/pause"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Speed: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "speed"),
		),
		VolumeUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+/-", "volume"),
		),
		VolumeDown: key.NewBinding(
			key.WithKeys("-", "_"),
		),
		SeekBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→", "seek"),
		),
		SeekFwd: key.NewBinding(
			key.WithKeys("right", "l"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Paste, k.PlayPause, k.Speed, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Paste, k.PlayPause, k.Reset},
		{k.SeekBack, k.VolumeUp, k.Speed},
		{k.Delete, k.Help, k.Quit},
	}
}
