package engines

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/paste2audio/internal/synth"
)

func TestNames(t *testing.T) {
	got := strings.Join(Names(), ",")
	if got != "gtts,kokoro,mock,piper,yandex" {
		t.Errorf("Names() = %s", got)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     func(*Config)
		want    string
		wantErr error
	}{
		{"mock", func(c *Config) { c.Engine = "mock" }, NameMock, nil},
		{"case insensitive", func(c *Config) { c.Engine = " MOCK " }, NameMock, nil},
		{"default is kokoro", func(c *Config) { c.Engine = "" }, NameKokoro, nil},
		{"gtts", func(c *Config) { c.Engine = "gtts" }, NameGTTS, nil},
		{"unknown", func(c *Config) { c.Engine = "espeak" }, "", synth.ErrUnknownEngine},
		{"yandex without key", func(c *Config) { c.Engine = "yandex" }, "", synth.ErrEngineUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.cfg(&cfg)
			e, err := New(cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if e.Name() != tt.want {
				t.Errorf("Name() = %s, want %s", e.Name(), tt.want)
			}
		})
	}
}

func TestNewPiperRequiresModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Engine = NamePiper
	if _, err := New(cfg); err == nil {
		t.Error("expected error without piper model")
	}
}

func TestMock(t *testing.T) {
	m := NewMock(MockConfig{})
	buf, err := m.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	// 5 runes * 10ms at 24kHz
	if len(buf.Data) != 1200 || m.Frames("hello") != 1200 {
		t.Errorf("frames = %d, want 1200", len(buf.Data))
	}
	if buf.Format.SampleRate != KokoroSampleRate || buf.Format.NumChannels != 1 {
		t.Errorf("format = %+v", *buf.Format)
	}

	if _, err := m.Synthesize(context.Background(), "\n "); !errors.Is(err, synth.ErrEmptyText) {
		t.Errorf("err = %v, want ErrEmptyText", err)
	}
}

func TestMockDelayHonorsContext(t *testing.T) {
	m := NewMock(MockConfig{Delay: time.Minute})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.Synthesize(ctx, "hello"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPiperSampleRate(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "en_GB-alba-medium.onnx")
	if err := os.WriteFile(model+".json", []byte(`{"audio":{"sample_rate":16000}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewPiper(PiperConfig{Model: model})
	if err != nil {
		t.Fatal(err)
	}
	if p.SampleRate() != 16000 {
		t.Errorf("SampleRate() = %d, want 16000", p.SampleRate())
	}

	p, _ = NewPiper(PiperConfig{Model: filepath.Join(dir, "missing.onnx")})
	if p.SampleRate() != PiperDefaultSampleRate {
		t.Errorf("SampleRate() = %d, want %d", p.SampleRate(), PiperDefaultSampleRate)
	}
}

func TestPiperArgs(t *testing.T) {
	p, _ := NewPiper(PiperConfig{Model: "m.onnx", Speaker: 3, LengthScale: 1.25})
	got := strings.Join(p.args(), " ")
	want := "--model m.onnx --output_raw --speaker 3 --length_scale 1.25"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

// A shell script stands in for piper and echoes stdin back as raw PCM.
func TestPiperSynthesizeWithFakeBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake binary")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "fake-piper")
	script := "#!/bin/sh\ncat\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	p, _ := NewPiper(PiperConfig{Binary: bin, Model: filepath.Join(dir, "m.onnx")})
	buf, err := p.Synthesize(context.Background(), "abcd")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	// four bytes of input make two 16-bit samples
	if len(buf.Data) != 2 || buf.Format.SampleRate != PiperDefaultSampleRate {
		t.Errorf("buf = %d samples @ %d", len(buf.Data), buf.Format.SampleRate)
	}
}

func TestPiperMissingBinary(t *testing.T) {
	p, _ := NewPiper(PiperConfig{Binary: "definitely-not-piper-xyz", Model: "m.onnx"})
	if _, err := p.Synthesize(context.Background(), "hi"); !errors.Is(err, synth.ErrEngineUnavailable) {
		t.Errorf("err = %v, want ErrEngineUnavailable", err)
	}
	if err := p.Validate(context.Background()); !errors.Is(err, synth.ErrEngineUnavailable) {
		t.Errorf("Validate err = %v, want ErrEngineUnavailable", err)
	}
}

func TestGTTSLocale(t *testing.T) {
	tests := []struct {
		in, lang, tld string
	}{
		{"b", "en", "co.uk"},
		{"a", "en", "com"},
		{"", "en", "com"},
		{"J", "ja", "co.jp"},
		{"de", "de", "com"},
	}
	for _, tt := range tests {
		lang, tld := gttsLocale(tt.in)
		if lang != tt.lang || tld != tt.tld {
			t.Errorf("gttsLocale(%q) = %s, %s; want %s, %s", tt.in, lang, tld, tt.lang, tt.tld)
		}
	}
}

func TestGTTSArgs(t *testing.T) {
	g, _ := NewGTTS(GTTSConfig{Slow: true}, "b")
	got := strings.Join(g.args("/tmp/out.mp3"), " ")
	want := "--lang en --tld co.uk --file - --output /tmp/out.mp3 --slow"
	if got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
}

func TestDecodeMP3Invalid(t *testing.T) {
	if _, err := DecodeMP3(strings.NewReader("not an mp3")); err == nil {
		t.Error("expected error decoding garbage")
	}
}

func TestYandexRequest(t *testing.T) {
	y, err := NewYandex(YandexConfig{APIKey: "key", FolderID: "folder"})
	if err != nil {
		t.Fatal(err)
	}
	defer y.Close() //nolint:errcheck

	req := y.request("hello")
	if req.GetText() != "hello" || req.GetModel() != "general" {
		t.Errorf("request = %v", req)
	}
	if len(req.GetHints()) != 2 || req.GetHints()[0].GetVoice() != "marina" {
		t.Errorf("hints = %v", req.GetHints())
	}

	if err := y.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := y.Validate(context.Background()); !errors.Is(err, synth.ErrEngineUnavailable) {
		t.Errorf("Validate after close = %v", err)
	}
}
