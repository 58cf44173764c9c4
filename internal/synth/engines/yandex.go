package engines

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/dgnsrekt/paste2audio/internal/wavfile"
	"github.com/go-audio/audio"
	tts "github.com/yandex-cloud/go-genproto/yandex/cloud/ai/tts/v3"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/metadata"
)

// YandexEndpoint is the SpeechKit v3 gRPC endpoint.
const YandexEndpoint = "tts.api.cloud.yandex.net:443"

// YandexConfig configures the SpeechKit engine.
type YandexConfig struct {
	APIKey   string
	FolderID string
	Endpoint string
	Voice    string
	Model    string
	Speed    float64
}

// Yandex synthesizes through Yandex SpeechKit and asks for a WAV container.
type Yandex struct {
	cfg    YandexConfig
	conn   *grpc.ClientConn
	client tts.SynthesizerClient
}

// NewYandex dials the SpeechKit endpoint. The connection is lazy; errors
// surface on the first request.
func NewYandex(cfg YandexConfig) (*Yandex, error) {
	if cfg.APIKey == "" || cfg.FolderID == "" {
		return nil, fmt.Errorf("%w: yandex api_key and folder_id are required", synth.ErrEngineUnavailable)
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = YandexEndpoint
	}
	if cfg.Voice == "" {
		cfg.Voice = "marina"
	}
	if cfg.Model == "" {
		cfg.Model = "general"
	}
	if cfg.Speed <= 0 {
		cfg.Speed = 1.0
	}

	creds := credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	conn, err := grpc.Dial(cfg.Endpoint, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to TTS service: %w", err)
	}

	return &Yandex{
		cfg:    cfg,
		conn:   conn,
		client: tts.NewSynthesizerClient(conn),
	}, nil
}

// Name implements synth.Engine.
func (y *Yandex) Name() string { return NameYandex }

func (y *Yandex) request(text string) *tts.UtteranceSynthesisRequest {
	req := &tts.UtteranceSynthesisRequest{}
	req.SetModel(y.cfg.Model)
	req.SetText(text)

	voice := &tts.Hints{}
	voice.SetVoice(y.cfg.Voice)
	speed := &tts.Hints{}
	speed.SetSpeed(y.cfg.Speed)
	req.SetHints([]*tts.Hints{voice, speed})

	container := &tts.ContainerAudio{}
	container.SetContainerAudioType(tts.ContainerAudio_WAV)
	spec := &tts.AudioFormatOptions{}
	spec.SetContainerAudio(container)
	req.SetOutputAudioSpec(spec)

	req.SetLoudnessNormalizationType(tts.UtteranceSynthesisRequest_LUFS)
	return req
}

// Synthesize implements synth.Engine.
func (y *Yandex) Synthesize(ctx context.Context, text string) (*audio.IntBuffer, error) {
	if strings.TrimSpace(text) == "" {
		return nil, synth.ErrEmptyText
	}

	ctx = metadata.AppendToOutgoingContext(ctx,
		"authorization", "Api-Key "+y.cfg.APIKey,
		"x-folder-id", y.cfg.FolderID,
	)

	stream, err := y.client.UtteranceSynthesis(ctx, y.request(text))
	if err != nil {
		return nil, fmt.Errorf("failed to start synthesis: %w", err)
	}

	var wav bytes.Buffer
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to receive audio data: %w", err)
		}
		if chunk := resp.GetAudioChunk(); chunk != nil {
			wav.Write(chunk.GetData())
		}
	}
	if wav.Len() == 0 {
		return nil, synth.ErrNoAudio
	}

	return wavfile.Decode(bytes.NewReader(wav.Bytes()))
}

// Validate implements synth.Engine.
func (y *Yandex) Validate(context.Context) error {
	if y.conn == nil {
		return fmt.Errorf("%w: yandex client is closed", synth.ErrEngineUnavailable)
	}
	return nil
}

// Close releases the gRPC connection.
func (y *Yandex) Close() error {
	if y.conn == nil {
		return nil
	}
	err := y.conn.Close()
	y.conn = nil
	return err
}
