// Package wavfile reads, writes and concatenates the PCM16 WAV files produced
// by a conversion.
package wavfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// BitDepth is the bit depth of every file written by this package.
const BitDepth = 16

// wavFormatPCM is the WAVE format tag for integer PCM.
const wavFormatPCM = 1

var (
	// ErrInvalidFile is returned for data that is not a readable PCM WAV.
	ErrInvalidFile = errors.New("not a valid PCM wav file")

	// ErrNoAudio is returned when there is nothing to concatenate or write.
	ErrNoAudio = errors.New("no audio data")
)

// Info describes a WAV file without loading its samples.
type Info struct {
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// Read loads the whole file at path into memory as 16-bit samples.
func Read(path string) (*audio.IntBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open wav: %w", err)
	}
	defer f.Close() //nolint:errcheck

	buf, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

// Decode reads a complete WAV stream. Samples of other integer bit depths are
// rescaled to 16 bits.
func Decode(r io.ReadSeeker) (*audio.IntBuffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, ErrInvalidFile
	}
	if d.WavAudioFormat != wavFormatPCM {
		return nil, fmt.Errorf("%w: format tag %d", ErrInvalidFile, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("unable to decode pcm: %w", err)
	}
	if buf.Format == nil {
		buf.Format = &audio.Format{NumChannels: int(d.NumChans), SampleRate: int(d.SampleRate)}
	}
	toDepth16(buf, int(d.BitDepth))
	return buf, nil
}

func toDepth16(buf *audio.IntBuffer, depth int) {
	switch {
	case depth == BitDepth:
	case depth == 8:
		// 8-bit WAV is unsigned.
		for i, v := range buf.Data {
			buf.Data[i] = (v - 128) << 8
		}
	case depth > BitDepth:
		shift := uint(depth - BitDepth) //nolint:gosec
		for i, v := range buf.Data {
			buf.Data[i] = v >> shift
		}
	}
	buf.SourceBitDepth = BitDepth
}

// Write stores buf at path as a 16-bit PCM WAV, replacing any existing file.
func Write(path string, buf *audio.IntBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create wav: %w", err)
	}
	if err := Encode(f, buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to close wav: %w", err)
	}
	return nil
}

// Encode writes buf as a 16-bit PCM WAV stream.
func Encode(w io.WriteSeeker, buf *audio.IntBuffer) error {
	if buf == nil || buf.Format == nil {
		return ErrNoAudio
	}
	enc := wav.NewEncoder(w, buf.Format.SampleRate, BitDepth, buf.Format.NumChannels, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("unable to encode pcm: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("unable to finalize wav header: %w", err)
	}
	return nil
}

// Probe reads only the header of the file at path.
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("unable to open wav: %w", err)
	}
	defer f.Close() //nolint:errcheck

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return Info{}, fmt.Errorf("%s: %w", path, ErrInvalidFile)
	}
	dur, err := d.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("unable to read duration: %w", err)
	}
	return Info{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		Duration:   dur,
	}, nil
}

// Concat joins bufs in order. The result takes the sample rate and channel
// count of the last buffer; mismatches are reported through mismatch, which
// may be nil.
func Concat(bufs []*audio.IntBuffer, mismatch func(index int, got, want audio.Format)) (*audio.IntBuffer, error) {
	if len(bufs) == 0 {
		return nil, ErrNoAudio
	}

	last := bufs[len(bufs)-1]
	if last.Format == nil {
		return nil, fmt.Errorf("segment %d: %w", len(bufs)-1, ErrNoAudio)
	}

	total := 0
	for i, b := range bufs {
		if b == nil || b.Format == nil {
			return nil, fmt.Errorf("segment %d: %w", i, ErrNoAudio)
		}
		if mismatch != nil && *b.Format != *last.Format {
			mismatch(i, *b.Format, *last.Format)
		}
		total += len(b.Data)
	}

	data := make([]int, 0, total)
	for _, b := range bufs {
		data = append(data, b.Data...)
	}

	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: last.Format.NumChannels, SampleRate: last.Format.SampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	}, nil
}

// Frames returns the number of sample frames in buf.
func Frames(buf *audio.IntBuffer) int {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels == 0 {
		return 0
	}
	return len(buf.Data) / buf.Format.NumChannels
}

// Duration returns the playing time of buf.
func Duration(buf *audio.IntBuffer) time.Duration {
	if buf == nil || buf.Format == nil || buf.Format.SampleRate == 0 {
		return 0
	}
	return time.Duration(Frames(buf)) * time.Second / time.Duration(buf.Format.SampleRate)
}

// FromPCM16 wraps raw signed 16-bit little-endian samples. A trailing odd
// byte is dropped.
func FromPCM16(data []byte, sampleRate, channels int) *audio.IntBuffer {
	samples := make([]int, len(data)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(data[i*2:]))) //nolint:gosec
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: BitDepth,
	}
}

// ToPCM16 renders buf as signed 16-bit little-endian bytes, clamping
// out-of-range samples.
func ToPCM16(buf *audio.IntBuffer) []byte {
	out := make([]byte, len(buf.Data)*2)
	for i, v := range buf.Data {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(clamp16(v))) //nolint:gosec
	}
	return out
}

func clamp16(v int) int16 {
	switch {
	case v > 32767:
		return 32767
	case v < -32768:
		return -32768
	default:
		return int16(v) //nolint:gosec
	}
}
