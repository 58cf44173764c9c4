package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/dgnsrekt/paste2audio/internal/wavfile"
	"github.com/go-audio/audio"
)

// header holds sample rate and channel count ahead of the PCM bytes.
const headerLen = 8

// Engine wraps a synth.Engine and answers repeated chunks from memory.
type Engine struct {
	synth.Engine
	store *Memory
	scope string
}

// Wrap returns next backed by store. scope separates entries of engines
// configured differently, e.g. with the voice name.
func Wrap(next synth.Engine, store *Memory, scope string) *Engine {
	return &Engine{Engine: next, store: store, scope: scope}
}

// Key returns the cache key of text within scope.
func Key(engine, scope, text string) string {
	h := sha256.New()
	h.Write([]byte(engine))
	h.Write([]byte{0})
	h.Write([]byte(scope))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// Synthesize implements synth.Engine.
func (e *Engine) Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error) {
	key := Key(e.Engine.Name(), e.scope, text)
	if data, ok := e.store.Get(key); ok {
		if buf, ok := decode(data); ok {
			log.Debug("Chunk served from cache", "engine", e.Engine.Name(), "chars", len(text))
			return buf, nil
		}
		e.store.Delete(key)
	}

	buf, err := e.Engine.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := e.store.Put(key, encode(buf)); err != nil && !errors.Is(err, ErrItemTooLarge) {
		log.Warn("Unable to cache chunk", "err", err)
	}
	return buf, nil
}

// Close closes the wrapped engine if it holds resources.
func (e *Engine) Close() error {
	if c, ok := e.Engine.(synth.Closer); ok {
		return c.Close()
	}
	return nil
}

func encode(buf *audio.IntBuffer) []byte {
	pcm := wavfile.ToPCM16(buf)
	out := make([]byte, headerLen+len(pcm))
	binary.LittleEndian.PutUint32(out[0:], uint32(buf.Format.SampleRate))  //nolint:gosec
	binary.LittleEndian.PutUint32(out[4:], uint32(buf.Format.NumChannels)) //nolint:gosec
	copy(out[headerLen:], pcm)
	return out
}

func decode(data []byte) (*audio.IntBuffer, bool) {
	if len(data) < headerLen+2 {
		return nil, false
	}
	rate := int(binary.LittleEndian.Uint32(data[0:]))
	ch := int(binary.LittleEndian.Uint32(data[4:]))
	if rate <= 0 || ch <= 0 {
		return nil, false
	}
	return wavfile.FromPCM16(data[headerLen:], rate, ch), true
}
