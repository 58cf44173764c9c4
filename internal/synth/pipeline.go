package synth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-audio/audio"
)

// DefaultSplitPattern splits text at runs of newlines.
const DefaultSplitPattern = `\n+`

// Segment is one synthesized chunk of the input text.
type Segment struct {
	Index int
	Text  string
	Audio *audio.IntBuffer
}

// Pipeline splits text and synthesizes the chunks one after another.
type Pipeline struct {
	engine Engine
	split  *regexp.Regexp
	logger *log.Logger
}

// NewPipeline returns a Pipeline for engine splitting on pattern. An empty
// pattern means DefaultSplitPattern.
func NewPipeline(engine Engine, pattern string) (*Pipeline, error) {
	if pattern == "" {
		pattern = DefaultSplitPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid split pattern %q: %w", pattern, err)
	}
	return &Pipeline{
		engine: engine,
		split:  re,
		logger: log.WithPrefix("synth"),
	}, nil
}

// Chunks returns the non-blank pieces of text in order.
func (p *Pipeline) Chunks(text string) []string {
	var chunks []string
	for _, c := range p.split.Split(text, -1) {
		if c = strings.TrimSpace(c); c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

// Generate synthesizes every chunk of text and hands the segments to yield in
// order. It stops at the first error from the engine, from yield, or from ctx.
func (p *Pipeline) Generate(ctx context.Context, text string, yield func(Segment) error) error {
	chunks := p.Chunks(text)
	if len(chunks) == 0 {
		return ErrEmptyText
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}

		start := time.Now()
		buf, err := p.engine.Synthesize(ctx, chunk)
		if err != nil {
			p.logger.Error("Synthesis failed", "engine", p.engine.Name(), "chunk", i, "error", err)
			return fmt.Errorf("chunk %d: %w", i, err)
		}
		if buf == nil || buf.Format == nil || len(buf.Data) == 0 {
			return fmt.Errorf("chunk %d: %w", i, ErrNoAudio)
		}
		p.logger.Debug("Synthesis completed",
			"engine", p.engine.Name(),
			"chunk", i,
			"textLength", len(chunk),
			"samples", len(buf.Data),
			"duration", time.Since(start))

		if err := yield(Segment{Index: i, Text: chunk, Audio: buf}); err != nil {
			return err
		}
	}
	return nil
}
