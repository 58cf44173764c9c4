package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/dgnsrekt/paste2audio/internal/synth/engines"
	"github.com/dgnsrekt/paste2audio/internal/tempo"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// settings is the resolved configuration of a run.
type settings struct {
	Engine engines.Config

	TempDir       string
	SplitPattern  string
	StripMarkdown bool
	SweepOnExit   bool
	Speed         float64
	Volume        int
	CacheSize     int64 // bytes, 0 disables the chunk cache

	FFmpegBinary  string
	FFmpegTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	d := engines.DefaultConfig()

	v.SetDefault("engine", d.Engine)
	v.SetDefault("voice", d.Voice)
	v.SetDefault("lang", d.Language)
	v.SetDefault("speed", "1x")
	v.SetDefault("volume", 100)
	v.SetDefault("temp_dir", "data/temp")
	v.SetDefault("split_pattern", synth.DefaultSplitPattern)
	v.SetDefault("strip_markdown", false)
	v.SetDefault("sweep_on_exit", true)
	v.SetDefault("cache.max_size", 64)

	v.SetDefault("ffmpeg.binary", "ffmpeg")
	v.SetDefault("ffmpeg.timeout", "2m")

	v.SetDefault("kokoro.url", d.Kokoro.URL)
	v.SetDefault("kokoro.model", d.Kokoro.Model)
	v.SetDefault("kokoro.timeout", d.Kokoro.Timeout.String())

	v.SetDefault("piper.binary", d.Piper.Binary)
	v.SetDefault("piper.model", "")
	v.SetDefault("piper.speaker", 0)
	v.SetDefault("piper.length_scale", d.Piper.LengthScale)
	v.SetDefault("piper.timeout", d.Piper.Timeout.String())

	v.SetDefault("gtts.binary", d.GTTS.Binary)
	v.SetDefault("gtts.slow", false)
	v.SetDefault("gtts.timeout", d.GTTS.Timeout.String())

	v.SetDefault("yandex.api_key", "")
	v.SetDefault("yandex.folder_id", "")
	v.SetDefault("yandex.voice", d.Yandex.Voice)
	v.SetDefault("yandex.endpoint", d.Yandex.Endpoint)
}

func loadSettings(v *viper.Viper) (settings, error) {
	s := settings{
		TempDir:       expandPath(v.GetString("temp_dir")),
		SplitPattern:  v.GetString("split_pattern"),
		StripMarkdown: v.GetBool("strip_markdown"),
		SweepOnExit:   v.GetBool("sweep_on_exit"),
		Volume:        v.GetInt("volume"),
		CacheSize:     v.GetInt64("cache.max_size") << 20,
		FFmpegBinary:  expandPath(v.GetString("ffmpeg.binary")),
		FFmpegTimeout: v.GetDuration("ffmpeg.timeout"),
	}

	speed, err := tempo.ParseSpeed(v.GetString("speed"))
	if err != nil {
		return s, fmt.Errorf("speed: %w", err)
	}
	s.Speed = speed

	if s.Volume < 0 || s.Volume > 100 {
		return s, fmt.Errorf("volume must be between 0 and 100, got %d", s.Volume)
	}
	if s.TempDir == "" {
		return s, fmt.Errorf("temp_dir must not be empty")
	}
	if _, err := regexp.Compile(s.SplitPattern); err != nil {
		return s, fmt.Errorf("split_pattern: %w", err)
	}
	if s.CacheSize < 0 {
		return s, fmt.Errorf("cache.max_size must not be negative")
	}

	s.Engine = engines.Config{
		Engine:   strings.ToLower(v.GetString("engine")),
		Voice:    v.GetString("voice"),
		Language: v.GetString("lang"),
		Kokoro: engines.KokoroConfig{
			URL:        v.GetString("kokoro.url"),
			Model:      v.GetString("kokoro.model"),
			SampleRate: engines.KokoroSampleRate,
			Timeout:    v.GetDuration("kokoro.timeout"),
		},
		Piper: engines.PiperConfig{
			Binary:      expandPath(v.GetString("piper.binary")),
			Model:       expandPath(v.GetString("piper.model")),
			Speaker:     v.GetInt("piper.speaker"),
			LengthScale: v.GetFloat64("piper.length_scale"),
			Timeout:     v.GetDuration("piper.timeout"),
		},
		GTTS: engines.GTTSConfig{
			Binary:  expandPath(v.GetString("gtts.binary")),
			Slow:    v.GetBool("gtts.slow"),
			Timeout: v.GetDuration("gtts.timeout"),
		},
		Yandex: engines.YandexConfig{
			APIKey:   v.GetString("yandex.api_key"),
			FolderID: v.GetString("yandex.folder_id"),
			Endpoint: v.GetString("yandex.endpoint"),
			Voice:    v.GetString("yandex.voice"),
		},
	}
	return s, nil
}

// expandPath expands ~ and environment variables. Bare command names are
// left alone.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return os.ExpandEnv(path)
	}
	return os.ExpandEnv(p)
}
