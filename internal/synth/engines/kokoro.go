package engines

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/dgnsrekt/paste2audio/internal/wavfile"
	"github.com/go-audio/audio"
)

// KokoroSampleRate is the native output rate of Kokoro models.
const KokoroSampleRate = 24000

// KokoroConfig configures the Kokoro HTTP engine.
type KokoroConfig struct {
	// URL is the server base URL; the engine posts to URL/v1/audio/speech.
	URL        string
	Model      string
	Speed      float64
	SampleRate int
	Timeout    time.Duration
}

// Kokoro synthesizes through the OpenAI-compatible speech endpoint of a
// Kokoro server, requesting raw PCM.
type Kokoro struct {
	cfg      KokoroConfig
	voice    string
	language string
	client   *http.Client
}

type kokoroRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed"`
	LangCode       string  `json:"lang_code,omitempty"`
	Stream         bool    `json:"stream"`
}

// NewKokoro returns a Kokoro engine. voice and language use Kokoro's own
// identifiers, e.g. "bf_emma" and "b" for British English.
func NewKokoro(cfg KokoroConfig, voice, language string) (*Kokoro, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("kokoro url is required")
	}
	if voice == "" {
		return nil, fmt.Errorf("kokoro voice is required")
	}
	if cfg.Model == "" {
		cfg.Model = "kokoro"
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = KokoroSampleRate
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")

	return &Kokoro{
		cfg:      cfg,
		voice:    voice,
		language: language,
		client:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name implements synth.Engine.
func (k *Kokoro) Name() string { return NameKokoro }

// Synthesize implements synth.Engine.
func (k *Kokoro) Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, synth.ErrEmptyText
	}

	body, err := json.Marshal(kokoroRequest{
		Model:          k.cfg.Model,
		Input:          text,
		Voice:          k.voice,
		ResponseFormat: "pcm",
		Speed:          k.cfg.Speed,
		LangCode:       k.language,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.cfg.URL+"/v1/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kokoro request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("kokoro returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	pcm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("unable to read kokoro audio: %w", err)
	}
	if len(pcm) < 2 {
		return nil, synth.ErrNoAudio
	}
	return wavfile.FromPCM16(pcm, k.cfg.SampleRate, 1), nil
}

// Validate implements synth.Engine by probing the server's health endpoint.
func (k *Kokoro) Validate(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.cfg.URL+"/health", nil)
	if err != nil {
		return fmt.Errorf("unable to build request: %w", err)
	}
	resp, err := k.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: kokoro server at %s: %v", synth.ErrEngineUnavailable, k.cfg.URL, err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: kokoro health check returned HTTP %d", synth.ErrEngineUnavailable, resp.StatusCode)
	}
	return nil
}
