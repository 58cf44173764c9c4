// Package synth turns text into audio segments by splitting it into chunks
// and handing each chunk to a speech engine.
package synth

import (
	"context"
	"errors"

	"github.com/go-audio/audio"
)

var (
	// ErrEmptyText is returned when there is nothing to synthesize.
	ErrEmptyText = errors.New("empty text")

	// ErrEngineUnavailable is returned when an engine's dependencies are
	// missing.
	ErrEngineUnavailable = errors.New("speech engine is not available")

	// ErrUnknownEngine is returned for engine names no constructor is
	// registered for.
	ErrUnknownEngine = errors.New("unknown speech engine")

	// ErrNoAudio is returned by engines that produced an empty result.
	ErrNoAudio = errors.New("engine returned no audio")
)

// Engine converts a chunk of text to 16-bit PCM.
type Engine interface {
	// Name returns the engine identifier used in configuration.
	Name() string

	// Synthesize converts text to audio. The buffer's Format carries the
	// sample rate and channel count the engine produced.
	Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error)

	// Validate checks that the engine's binaries, models or endpoints are
	// reachable.
	Validate(ctx context.Context) error
}

// Closer is implemented by engines holding connections.
type Closer interface {
	Close() error
}

// Options are shared by all engines.
type Options struct {
	Voice    string
	Language string
}
