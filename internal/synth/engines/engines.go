package engines

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/synth"
)

// Engine names accepted in configuration.
const (
	NameKokoro = "kokoro"
	NamePiper  = "piper"
	NameGTTS   = "gtts"
	NameYandex = "yandex"
	NameMock   = "mock"
)

// Config selects and configures an engine.
type Config struct {
	Engine string

	// Voice and Language follow Kokoro conventions ("bf_emma", "b"); other
	// engines translate what they can.
	Voice    string
	Language string

	Kokoro KokoroConfig
	Piper  PiperConfig
	GTTS   GTTSConfig
	Yandex YandexConfig
	Mock   MockConfig
}

// DefaultConfig mirrors the defaults written to a fresh config file.
func DefaultConfig() Config {
	return Config{
		Engine:   NameKokoro,
		Voice:    "bf_emma",
		Language: "b",
		Kokoro: KokoroConfig{
			URL:        "http://localhost:8880",
			Model:      "kokoro",
			SampleRate: KokoroSampleRate,
			Timeout:    60 * time.Second,
		},
		Piper: PiperConfig{
			Binary:      "piper",
			LengthScale: 1.0,
			Timeout:     30 * time.Second,
		},
		GTTS: GTTSConfig{
			Binary:  "gtts-cli",
			Timeout: 30 * time.Second,
		},
		Yandex: YandexConfig{
			Endpoint: YandexEndpoint,
			Voice:    "marina",
		},
	}
}

type constructor func(Config) (synth.Engine, error)

var constructors = map[string]constructor{
	NameKokoro: func(c Config) (synth.Engine, error) { return NewKokoro(c.Kokoro, c.Voice, c.Language) },
	NamePiper:  func(c Config) (synth.Engine, error) { return NewPiper(c.Piper) },
	NameGTTS:   func(c Config) (synth.Engine, error) { return NewGTTS(c.GTTS, c.Language) },
	NameYandex: func(c Config) (synth.Engine, error) { return NewYandex(c.Yandex) },
	NameMock:   func(c Config) (synth.Engine, error) { return NewMock(c.Mock), nil },
}

// Names returns the supported engine names, sorted.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the engine named by cfg.Engine.
func New(cfg Config) (synth.Engine, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Engine))
	if name == "" {
		name = NameKokoro
	}
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (choose one of %s)", synth.ErrUnknownEngine, cfg.Engine, strings.Join(Names(), ", "))
	}

	engine, err := ctor(cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create %s engine: %w", name, err)
	}
	log.Info("TTS engine selected", "engine", engine.Name(), "voice", cfg.Voice, "lang", cfg.Language)
	return engine, nil
}
