package engines

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dgnsrekt/paste2audio/internal/proc"
	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/dgnsrekt/paste2audio/internal/wavfile"
	"github.com/go-audio/audio"
	"github.com/hajimehoshi/go-mp3"
)

// GTTSConfig configures the gtts-cli engine.
type GTTSConfig struct {
	Binary  string
	Slow    bool
	Timeout time.Duration
}

// GTTS shells out to gtts-cli, which writes MP3; the result is decoded in
// process and mixed down to mono.
type GTTS struct {
	cfg    GTTSConfig
	lang   string
	tld    string
	runner *proc.Runner
}

// gttsLocales maps Kokoro language codes to a gTTS language and Google
// domain.
var gttsLocales = map[string][2]string{
	"a": {"en", "com"},
	"b": {"en", "co.uk"},
	"e": {"es", "es"},
	"f": {"fr", "fr"},
	"h": {"hi", "co.in"},
	"i": {"it", "it"},
	"j": {"ja", "co.jp"},
	"p": {"pt", "com.br"},
	"z": {"zh-CN", "com"},
}

// NewGTTS returns a GTTS engine for the given language. Single-letter Kokoro
// codes are translated; anything else is passed to gtts-cli as is.
func NewGTTS(cfg GTTSConfig, language string) (*GTTS, error) {
	if cfg.Binary == "" {
		cfg.Binary = "gtts-cli"
	}
	lang, tld := gttsLocale(language)
	return &GTTS{
		cfg:    cfg,
		lang:   lang,
		tld:    tld,
		runner: proc.New(cfg.Timeout),
	}, nil
}

func gttsLocale(language string) (lang, tld string) {
	if language == "" {
		return "en", "com"
	}
	if l, ok := gttsLocales[strings.ToLower(language)]; ok {
		return l[0], l[1]
	}
	return language, "com"
}

// Name implements synth.Engine.
func (g *GTTS) Name() string { return NameGTTS }

func (g *GTTS) args(out string) []string {
	args := []string{"--lang", g.lang, "--tld", g.tld, "--file", "-", "--output", out}
	if g.cfg.Slow {
		args = append(args, "--slow")
	}
	return args
}

// Synthesize implements synth.Engine.
func (g *GTTS) Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, synth.ErrEmptyText
	}
	bin, err := proc.FindBinary(g.cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", synth.ErrEngineUnavailable, err)
	}

	f, err := os.CreateTemp("", "paste2audio-*.mp3")
	if err != nil {
		return nil, fmt.Errorf("unable to create temp file: %w", err)
	}
	out := f.Name()
	_ = f.Close()
	defer os.Remove(out) //nolint:errcheck

	if _, err := g.runner.RunWithStdin(ctx, text, bin, g.args(out)...); err != nil {
		return nil, fmt.Errorf("gtts-cli failed: %w", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("unable to read gtts output: %w", err)
	}
	return DecodeMP3(bytes.NewReader(data))
}

// DecodeMP3 decodes an MP3 stream to a mono 16-bit buffer.
func DecodeMP3(r io.Reader) (*audio.IntBuffer, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("unable to decode mp3: %w", err)
	}
	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("unable to decode mp3: %w", err)
	}
	if len(pcm) < 4 {
		return nil, synth.ErrNoAudio
	}
	// go-mp3 always yields interleaved stereo.
	return wavfile.Downmix(wavfile.FromPCM16(pcm, dec.SampleRate(), 2)), nil
}

// Validate implements synth.Engine.
func (g *GTTS) Validate(context.Context) error {
	if _, err := proc.FindBinary(g.cfg.Binary); err != nil {
		return fmt.Errorf("%w: %v", synth.ErrEngineUnavailable, err)
	}
	return nil
}
