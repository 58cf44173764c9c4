package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/wavfile"
)

// ErrNothingLoaded is returned by controls that need a loaded file.
var ErrNothingLoaded = errors.New("no audio loaded")

// ErrClosed is returned after Close.
var ErrClosed = errors.New("player is closed")

// State is the playback state.
type State int32

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Player plays one file at a time.
type Player struct {
	dev    Device
	logger *log.Logger

	mu       sync.Mutex
	track    Track
	src      *source
	path     string
	duration time.Duration
	state    State
	volume   float64
}

// NewPlayer returns a Player on dev at full volume.
func NewPlayer(dev Device) *Player {
	return &Player{
		dev:    dev,
		logger: log.WithPrefix("player"),
		volume: 1.0,
	}
}

// Load decodes path and prepares it for playback at position zero, paused.
// The file is mixed and resampled to the device format.
func (p *Player) Load(path string) error {
	buf, err := wavfile.Read(path)
	if err != nil {
		return fmt.Errorf("unable to load %s: %w", path, err)
	}
	if p.dev.Channels() == 1 {
		buf = wavfile.Downmix(buf)
	}
	if buf.Format.SampleRate != p.dev.SampleRate() {
		buf = wavfile.Resample(buf, p.dev.SampleRate())
	}
	pcm := wavfile.ToPCM16(buf)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == StateClosed {
		return ErrClosed
	}
	p.unloadLocked()

	p.src = newSource(pcm)
	p.track = p.dev.NewTrack(p.src)
	p.track.SetVolume(p.volume)
	p.path = path
	p.duration = p.bytesToDuration(int64(len(pcm)))
	p.state = StatePaused

	p.logger.Debug("Loaded", "path", path, "duration", p.duration)
	return nil
}

// Loaded returns the path of the loaded file, or "".
func (p *Player) Loaded() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path
}

// Play starts or resumes playback. A finished track restarts from zero.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkLocked(); err != nil {
		return err
	}
	p.refreshLocked()
	if p.state == StateStopped {
		if err := p.seekLocked(0); err != nil {
			return err
		}
	}
	p.track.Play()
	p.state = StatePlaying
	return nil
}

// Pause pauses playback. Pausing a paused player is a no-op.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkLocked(); err != nil {
		return err
	}
	p.refreshLocked()
	if p.state == StatePlaying {
		p.track.Pause()
		p.state = StatePaused
	}
	return nil
}

// Toggle switches between playing and paused.
func (p *Player) Toggle() error {
	if p.State() == StatePlaying {
		return p.Pause()
	}
	return p.Play()
}

// Reset rewinds to zero and pauses.
func (p *Player) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkLocked(); err != nil {
		return err
	}
	p.track.Pause()
	if err := p.seekLocked(0); err != nil {
		return err
	}
	p.state = StatePaused
	return nil
}

// Seek moves to pos, clamped to the track.
func (p *Player) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.checkLocked(); err != nil {
		return err
	}
	if pos < 0 {
		pos = 0
	}
	if pos > p.duration {
		pos = p.duration
	}
	p.refreshLocked()
	if p.state == StateStopped {
		p.state = StatePaused
	}
	return p.seekLocked(p.durationToBytes(pos))
}

// SetVolume sets the volume in [0, 1].
func (p *Player) SetVolume(v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", v)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	if p.track != nil {
		p.track.SetVolume(v)
	}
	return nil
}

// Position returns how much of the track has been heard: bytes handed to the
// device minus what the device still buffers.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return 0
	}
	p.refreshLocked()
	return p.bytesToDuration(p.positionLocked())
}

// Duration returns the length of the loaded track.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// State returns the playback state. A track that played to its end reports
// StateStopped.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshLocked()
	return p.state
}

// Unload stops playback and releases the track.
func (p *Player) Unload() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unloadLocked()
	if p.state != StateClosed {
		p.state = StateStopped
	}
}

// Close unloads and rejects further use.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unloadLocked()
	p.state = StateClosed
	return nil
}

func (p *Player) checkLocked() error {
	if p.state == StateClosed {
		return ErrClosed
	}
	if p.track == nil {
		return ErrNothingLoaded
	}
	return nil
}

// refreshLocked notices a track that ran out of data.
func (p *Player) refreshLocked() {
	if p.state != StatePlaying || p.track == nil {
		return
	}
	if !p.track.IsPlaying() && p.src.Remaining() == 0 {
		p.state = StateStopped
		p.logger.Debug("Playback finished", "path", p.path)
	}
}

func (p *Player) positionLocked() int64 {
	if p.state == StateStopped && p.src.Remaining() == 0 {
		return p.src.Size()
	}
	pos := p.src.Offset() - int64(p.track.BufferedSize())
	if pos < 0 {
		pos = 0
	}
	return pos
}

func (p *Player) seekLocked(offset int64) error {
	if _, err := p.track.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("unable to seek: %w", err)
	}
	return nil
}

func (p *Player) unloadLocked() {
	if p.track != nil {
		p.track.Pause()
		if err := p.track.Close(); err != nil {
			p.logger.Warn("Unable to close track", "path", p.path, "err", err)
		}
	}
	p.track, p.src, p.path, p.duration = nil, nil, "", 0
}

func (p *Player) frameSize() int64 {
	return int64(2 * p.dev.Channels())
}

func (p *Player) bytesToDuration(n int64) time.Duration {
	frames := n / p.frameSize()
	return time.Duration(frames) * time.Second / time.Duration(p.dev.SampleRate())
}

func (p *Player) durationToBytes(d time.Duration) int64 {
	frames := int64(d) * int64(p.dev.SampleRate()) / int64(time.Second)
	return frames * p.frameSize()
}

// source is the PCM stream handed to the device. It tracks the read offset
// for position reporting; the device reads it from its own goroutine.
type source struct {
	mu     sync.Mutex
	r      *bytes.Reader
	size   int64
	offset int64
}

func newSource(pcm []byte) *source {
	return &source{r: bytes.NewReader(pcm), size: int64(len(pcm))}
}

func (s *source) Read(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.r.Read(b)
	s.offset += int64(n)
	return n, err
}

func (s *source) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.r.Seek(offset, whence)
	if err == nil {
		s.offset = n
	}
	return n, err
}

func (s *source) Offset() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

func (s *source) Remaining() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size - s.offset
}

func (s *source) Size() int64 { return s.size }
