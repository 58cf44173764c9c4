package audio

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Track is one playing stream. *oto.Player satisfies it.
type Track interface {
	Play()
	Pause()
	IsPlaying() bool
	SetVolume(volume float64)
	BufferedSize() int
	Seek(offset int64, whence int) (int64, error)
	Close() error
}

// Device creates tracks in a fixed output format.
type Device interface {
	NewTrack(src io.ReadSeeker) Track
	SampleRate() int
	Channels() int
}

// DeviceConfig describes the output format.
type DeviceConfig struct {
	SampleRate int // 44100 or 48000 Hz
	Channels   int // 1 = mono, 2 = stereo
	BufferSize time.Duration
}

// DefaultDeviceConfig returns a mono 48 kHz device config.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		SampleRate: 48000,
		Channels:   1,
		BufferSize: 100 * time.Millisecond,
	}
}

func validateConfig(cfg DeviceConfig) error {
	// oto is only reliable at these rates
	if cfg.SampleRate != 44100 && cfg.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", cfg.SampleRate)
	}
	if cfg.Channels != 1 && cfg.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", cfg.Channels)
	}
	if cfg.BufferSize < 0 {
		return fmt.Errorf("buffer size must not be negative, got %s", cfg.BufferSize)
	}
	return nil
}

// OtoDevice plays through the system audio device. Only one may exist per
// process.
type OtoDevice struct {
	ctx *oto.Context
	cfg DeviceConfig
}

// NewOtoDevice opens the audio device and waits until it is ready.
func NewOtoDevice(cfg DeviceConfig) (*OtoDevice, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-ready

	return &OtoDevice{ctx: ctx, cfg: cfg}, nil
}

// NewTrack implements Device.
func (d *OtoDevice) NewTrack(src io.ReadSeeker) Track {
	return d.ctx.NewPlayer(src)
}

// SampleRate implements Device.
func (d *OtoDevice) SampleRate() int { return d.cfg.SampleRate }

// Channels implements Device.
func (d *OtoDevice) Channels() int { return d.cfg.Channels }
