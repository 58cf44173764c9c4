package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/paste2audio/internal/clip"
	"github.com/dgnsrekt/paste2audio/internal/convert"
	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/dgnsrekt/paste2audio/internal/tempo"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

func newTestViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	setDefaults(v)
	if yaml != "" {
		v.SetConfigType("yaml")
		if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
			t.Fatalf("unable to parse config: %v", err)
		}
	}
	return v
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := loadSettings(newTestViper(t, defaultConfig))
	if err != nil {
		t.Fatalf("default config does not load: %v", err)
	}

	if cfg.Engine.Engine != "kokoro" {
		t.Errorf("engine = %q", cfg.Engine.Engine)
	}
	if cfg.Engine.Voice != "bf_emma" || cfg.Engine.Language != "b" {
		t.Errorf("voice/lang = %q/%q", cfg.Engine.Voice, cfg.Engine.Language)
	}
	if cfg.Speed != 1.0 {
		t.Errorf("speed = %v", cfg.Speed)
	}
	if cfg.Volume != 100 {
		t.Errorf("volume = %d", cfg.Volume)
	}
	if cfg.SplitPattern != synth.DefaultSplitPattern {
		t.Errorf("split pattern = %q, want %q", cfg.SplitPattern, synth.DefaultSplitPattern)
	}
	if !cfg.SweepOnExit {
		t.Error("sweep_on_exit should default to true")
	}
	if cfg.CacheSize != 64<<20 {
		t.Errorf("cache size = %d", cfg.CacheSize)
	}
	if cfg.FFmpegTimeout != 2*time.Minute {
		t.Errorf("ffmpeg timeout = %v", cfg.FFmpegTimeout)
	}
	if cfg.Engine.Kokoro.URL != "http://localhost:8880" {
		t.Errorf("kokoro url = %q", cfg.Engine.Kokoro.URL)
	}
	if cfg.Engine.Yandex.Voice != "marina" {
		t.Errorf("yandex voice = %q", cfg.Engine.Yandex.Voice)
	}
}

func TestLoadSettingsWithoutFile(t *testing.T) {
	cfg, err := loadSettings(newTestViper(t, ""))
	if err != nil {
		t.Fatalf("defaults do not load: %v", err)
	}
	if cfg.TempDir != "data/temp" {
		t.Errorf("temp dir = %q", cfg.TempDir)
	}
	if cfg.Engine.Piper.Timeout != 30*time.Second {
		t.Errorf("piper timeout = %v", cfg.Engine.Piper.Timeout)
	}
}

func TestLoadSettingsOverrides(t *testing.T) {
	cfg, err := loadSettings(newTestViper(t, `
engine: Piper
speed: "1.5x"
volume: 40
cache:
  max_size: 0
piper:
  model: /models/alba.onnx
  speaker: 2
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.Engine != "piper" {
		t.Errorf("engine = %q", cfg.Engine.Engine)
	}
	if cfg.Speed != 1.5 {
		t.Errorf("speed = %v", cfg.Speed)
	}
	if cfg.Volume != 40 {
		t.Errorf("volume = %d", cfg.Volume)
	}
	if cfg.CacheSize != 0 {
		t.Errorf("cache size = %d", cfg.CacheSize)
	}
	if cfg.Engine.Piper.Model != "/models/alba.onnx" || cfg.Engine.Piper.Speaker != 2 {
		t.Errorf("piper = %+v", cfg.Engine.Piper)
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown speed", `speed: "3x"`, tempo.ErrInvalidSpeed},
		{"volume too high", `volume: 150`, nil},
		{"negative volume", `volume: -1`, nil},
		{"bad split pattern", `split_pattern: "("`, nil},
		{"empty temp dir", `temp_dir: ""`, nil},
		{"negative cache", "cache:\n  max_size: -1", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadSettings(newTestViper(t, tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := homedir.Dir()
	if err != nil {
		t.Skip("no home directory")
	}
	t.Setenv("P2A_TEST_DIR", "/srv/audio")

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"ffmpeg", "ffmpeg"},
		{"/usr/bin/piper", "/usr/bin/piper"},
		{"~/models", filepath.Join(home, "models")},
		{"$P2A_TEST_DIR/temp", "/srv/audio/temp"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := expandPath(tt.in); got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnsureConfigFile(t *testing.T) {
	old := configFile
	t.Cleanup(func() { configFile = old })

	t.Run("creates default", func(t *testing.T) {
		configFile = filepath.Join(t.TempDir(), "nested", "paste2audio.yml")
		if err := ensureConfigFile(); err != nil {
			t.Fatal(err)
		}
		b, err := os.ReadFile(configFile)
		if err != nil {
			t.Fatal(err)
		}
		if string(b) != defaultConfig {
			t.Error("written config differs from the default")
		}
	})

	t.Run("keeps existing", func(t *testing.T) {
		configFile = filepath.Join(t.TempDir(), "paste2audio.yaml")
		if err := os.WriteFile(configFile, []byte("engine: mock\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := ensureConfigFile(); err != nil {
			t.Fatal(err)
		}
		b, _ := os.ReadFile(configFile)
		if string(b) != "engine: mock\n" {
			t.Errorf("config overwritten: %q", b)
		}
	})

	t.Run("rejects other formats", func(t *testing.T) {
		configFile = filepath.Join(t.TempDir(), "paste2audio.toml")
		if err := ensureConfigFile(); err == nil {
			t.Fatal("expected an error for .toml")
		}
	})
}

func TestInputText(t *testing.T) {
	cb := clip.NewReader(clip.Static("  from the clipboard \n"))

	t.Run("arguments", func(t *testing.T) {
		got, err := inputText([]string{"hello", "there"}, nil, cb)
		if err != nil {
			t.Fatal(err)
		}
		if got != "hello there" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("blank arguments", func(t *testing.T) {
		if _, err := inputText([]string{" ", ""}, nil, cb); !errors.Is(err, convert.ErrEmptyText) {
			t.Errorf("error = %v, want ErrEmptyText", err)
		}
	})

	t.Run("piped stdin", func(t *testing.T) {
		f, err := os.CreateTemp(t.TempDir(), "stdin")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.WriteString("piped text\n"); err != nil {
			t.Fatal(err)
		}
		if _, err := f.Seek(0, 0); err != nil {
			t.Fatal(err)
		}
		defer f.Close() //nolint:errcheck

		got, err := inputText(nil, f, cb)
		if err != nil {
			t.Fatal(err)
		}
		if got != "piped text" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("clipboard", func(t *testing.T) {
		got, err := inputText(nil, nil, cb)
		if err != nil {
			t.Fatal(err)
		}
		if got != "from the clipboard" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("empty clipboard", func(t *testing.T) {
		_, err := inputText(nil, nil, clip.NewReader(clip.Static("   ")))
		if !errors.Is(err, clip.ErrEmpty) {
			t.Errorf("error = %v, want clip.ErrEmpty", err)
		}
	})
}

func TestNewAppWithMockEngine(t *testing.T) {
	cfg, err := loadSettings(newTestViper(t, "engine: mock\n"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.TempDir = t.TempDir()

	a, err := newApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer a.close()

	if a.engine.Name() != "mock" {
		t.Errorf("engine = %q", a.engine.Name())
	}

	res, err := a.runner.Run(context.Background(), a.prepare("Hello there\nGeneral"), 1.0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Segments != 2 {
		t.Errorf("segments = %d, want 2", res.Segments)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("result missing: %v", err)
	}
}
