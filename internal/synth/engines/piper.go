package engines

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/proc"
	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/dgnsrekt/paste2audio/internal/wavfile"
	"github.com/go-audio/audio"
)

// PiperDefaultSampleRate is used when a model ships without a config file.
const PiperDefaultSampleRate = 22050

// PiperConfig configures the piper subprocess engine.
type PiperConfig struct {
	Binary      string
	Model       string
	Speaker     int
	LengthScale float64
	Timeout     time.Duration
}

// Piper runs the piper binary once per chunk and reads raw PCM from stdout.
type Piper struct {
	cfg        PiperConfig
	binary     string
	sampleRate int
	runner     *proc.Runner
}

type piperModelConfig struct {
	Audio struct {
		SampleRate int `json:"sample_rate"`
	} `json:"audio"`
}

// NewPiper returns a Piper engine. The model's sample rate is read from the
// JSON file next to it.
func NewPiper(cfg PiperConfig) (*Piper, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("piper model path is required")
	}
	if cfg.Binary == "" {
		cfg.Binary = "piper"
	}
	if cfg.LengthScale <= 0 {
		cfg.LengthScale = 1.0
	}

	return &Piper{
		cfg:        cfg,
		binary:     cfg.Binary,
		sampleRate: piperSampleRate(cfg.Model),
		runner:     proc.New(cfg.Timeout),
	}, nil
}

func piperSampleRate(model string) int {
	data, err := os.ReadFile(model + ".json")
	if err != nil {
		log.Debug("Piper model config not found, using default rate", "model", model, "rate", PiperDefaultSampleRate)
		return PiperDefaultSampleRate
	}
	var mc piperModelConfig
	if err := json.Unmarshal(data, &mc); err != nil || mc.Audio.SampleRate <= 0 {
		log.Warn("Unable to read piper model sample rate", "model", model, "err", err)
		return PiperDefaultSampleRate
	}
	return mc.Audio.SampleRate
}

// SampleRate returns the rate of the audio Synthesize produces.
func (p *Piper) SampleRate() int { return p.sampleRate }

// Name implements synth.Engine.
func (p *Piper) Name() string { return NamePiper }

func (p *Piper) args() []string {
	args := []string{"--model", p.cfg.Model, "--output_raw"}
	if p.cfg.Speaker > 0 {
		args = append(args, "--speaker", strconv.Itoa(p.cfg.Speaker))
	}
	if p.cfg.LengthScale != 1.0 {
		args = append(args, "--length_scale", strconv.FormatFloat(p.cfg.LengthScale, 'f', 2, 64))
	}
	return args
}

// Synthesize implements synth.Engine.
func (p *Piper) Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, synth.ErrEmptyText
	}
	if err := p.resolve(); err != nil {
		return nil, err
	}

	pcm, err := p.runner.RunWithStdin(ctx, text, p.binary, p.args()...)
	if err != nil {
		return nil, fmt.Errorf("piper failed: %w", err)
	}
	if len(pcm) < 2 {
		return nil, synth.ErrNoAudio
	}
	return wavfile.FromPCM16(pcm, p.sampleRate, 1), nil
}

func (p *Piper) resolve() error {
	path, err := proc.FindBinary(p.cfg.Binary)
	if err != nil {
		return fmt.Errorf("%w: %v", synth.ErrEngineUnavailable, err)
	}
	p.binary = path
	return nil
}

// Validate implements synth.Engine.
func (p *Piper) Validate(context.Context) error {
	if err := p.resolve(); err != nil {
		return err
	}
	if _, err := os.Stat(p.cfg.Model); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: piper model %s not found", synth.ErrEngineUnavailable, p.cfg.Model)
		}
		return fmt.Errorf("unable to stat piper model: %w", err)
	}
	return nil
}
