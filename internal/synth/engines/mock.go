package engines

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/go-audio/audio"
)

// MockConfig configures the tone generator.
type MockConfig struct {
	SampleRate int
	Frequency  float64

	// PerRune is the audio length produced per input rune.
	PerRune time.Duration

	// Delay simulates engine latency.
	Delay time.Duration
}

// Mock produces a sine tone whose length is proportional to the text. It
// needs no external tools and is used by tests and demos.
type Mock struct {
	cfg MockConfig
}

// NewMock returns a Mock engine, filling zero fields with defaults.
func NewMock(cfg MockConfig) *Mock {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = KokoroSampleRate
	}
	if cfg.Frequency <= 0 {
		cfg.Frequency = 440
	}
	if cfg.PerRune <= 0 {
		cfg.PerRune = 10 * time.Millisecond
	}
	return &Mock{cfg: cfg}
}

// Name implements synth.Engine.
func (m *Mock) Name() string { return NameMock }

// Frames returns the number of frames Synthesize produces for text.
func (m *Mock) Frames(text string) int {
	n := utf8.RuneCountInString(text)
	return int(int64(n) * int64(m.cfg.PerRune) * int64(m.cfg.SampleRate) / int64(time.Second))
}

// Synthesize implements synth.Engine.
func (m *Mock) Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, synth.ErrEmptyText
	}
	if m.cfg.Delay > 0 {
		t := time.NewTimer(m.cfg.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	frames := m.Frames(text)
	data := make([]int, frames)
	step := 2 * math.Pi * m.cfg.Frequency / float64(m.cfg.SampleRate)
	for i := range data {
		data[i] = int(math.Sin(step*float64(i)) * 8000)
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: m.cfg.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}, nil
}

// Validate implements synth.Engine.
func (m *Mock) Validate(context.Context) error { return nil }
