package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/cache"
	"github.com/dgnsrekt/paste2audio/internal/convert"
	"github.com/dgnsrekt/paste2audio/internal/proc"
	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/dgnsrekt/paste2audio/internal/synth/engines"
	"github.com/dgnsrekt/paste2audio/internal/tempo"
	"github.com/dgnsrekt/paste2audio/internal/textprep"
)

const validateTimeout = 5 * time.Second

// app holds the conversion components shared by the TUI and the headless
// commands.
type app struct {
	cfg    settings
	engine synth.Engine
	runner *convert.Runner
}

func newApp(cfg settings) (*app, error) {
	engine, err := engines.New(cfg.Engine)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}
	if cfg.CacheSize > 0 {
		engine = cache.Wrap(engine, cache.NewMemory(cfg.CacheSize), cfg.Engine.Voice+"|"+cfg.Engine.Language)
	}

	pipeline, err := synth.NewPipeline(engine, cfg.SplitPattern)
	if err != nil {
		closeEngine(engine)
		return nil, err //nolint:wrapcheck
	}
	worker, err := convert.NewWorker(pipeline, cfg.TempDir)
	if err != nil {
		closeEngine(engine)
		return nil, err //nolint:wrapcheck
	}
	tp := tempo.New(cfg.FFmpegBinary, proc.New(cfg.FFmpegTimeout))

	return &app{
		cfg:    cfg,
		engine: engine,
		runner: convert.NewRunner(worker, tp),
	}, nil
}

// validate checks the engine is reachable.
func (a *app) validate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, validateTimeout)
	defer cancel()
	if err := a.engine.Validate(ctx); err != nil {
		return fmt.Errorf("%s engine: %w", a.engine.Name(), err)
	}
	return nil
}

func (a *app) prepare(text string) string {
	return textprep.Prepare(text, textprep.Options{StripMarkdown: a.cfg.StripMarkdown})
}

func (a *app) close() {
	if a.runner.Busy() {
		log.Info("Canceling conversion in flight")
	}
	a.runner.Cancel()
	closeEngine(a.engine)
}

func closeEngine(e synth.Engine) {
	c, ok := e.(synth.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn("Unable to close engine", "engine", e.Name(), "err", err)
	}
}
