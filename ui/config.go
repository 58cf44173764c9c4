package ui

import "time"

// Config contains TUI-specific configuration.
type Config struct {
	// Speed is the tempo factor applied to new conversions.
	Speed float64

	// Volume in percent, 0-100.
	Volume int

	// SeekStep is how far left/right move the playhead.
	SeekStep time.Duration

	// For debugging the UI
	TickInterval time.Duration `env:"PASTE2AUDIO_TICK"          envDefault:"100ms"`
	AltScreen    bool          `env:"PASTE2AUDIO_ALT_SCREEN"    envDefault:"true"`
	EnableMouse  bool          `env:"PASTE2AUDIO_ENABLE_MOUSE"  envDefault:"false"`
}
