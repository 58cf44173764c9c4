// Package convert runs conversion jobs: text is synthesized chunk by chunk
// into WAV segments, the segments are joined into one recording and the
// recording is passed through the tempo stage.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/naming"
	"github.com/dgnsrekt/paste2audio/internal/synth"
	"github.com/dgnsrekt/paste2audio/internal/wavfile"
	"github.com/go-audio/audio"
	"github.com/google/uuid"
)

// Result describes a finished job.
type Result struct {
	JobID string

	// Source is the concatenated recording before the tempo stage.
	Source string

	// Path is the processed file that should be played.
	Path string

	// Speed is the tempo factor Path was produced at.
	Speed float64

	Segments int
	Duration time.Duration
}

// Worker synthesizes text into a single WAV file inside Dir.
type Worker struct {
	pipeline *synth.Pipeline
	dir      string
	logger   *log.Logger
}

// NewWorker returns a Worker writing into dir, creating it if needed.
func NewWorker(pipeline *synth.Pipeline, dir string) (*Worker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create temp directory: %w", err)
	}
	return &Worker{
		pipeline: pipeline,
		dir:      dir,
		logger:   log.WithPrefix("convert"),
	}, nil
}

// Dir returns the directory recordings are written to.
func (w *Worker) Dir() string { return w.dir }

// Convert synthesizes text and writes the joined recording. Segment files
// never outlive the call, whether it succeeds, fails or is canceled.
func (w *Worker) Convert(ctx context.Context, text string) (*Result, error) {
	return w.convert(ctx, newJobID(), text)
}

func newJobID() string {
	return uuid.NewString()[:8]
}

func (w *Worker) convert(ctx context.Context, jobID, text string) (*Result, error) {
	if len(w.pipeline.Chunks(text)) == 0 {
		return nil, ErrEmptyText
	}
	start := time.Now()
	w.logger.Info("Conversion started", "job", jobID, "chars", len(text))

	var segments []string
	defer func() { w.removeSegments(segments) }()

	err := w.pipeline.Generate(ctx, text, func(seg synth.Segment) error {
		path := naming.SegmentPath(w.dir, jobID, seg.Index)
		if err := wavfile.Write(path, seg.Audio); err != nil {
			return &JobError{JobID: jobID, Stage: StageWrite, Err: err}
		}
		segments = append(segments, path)
		w.logger.Debug("Segment written", "job", jobID, "index", seg.Index, "path", path)
		return nil
	})
	if err != nil {
		return nil, w.jobErr(ctx, jobID, StageSynthesize, err)
	}
	if len(segments) == 0 {
		return nil, &JobError{JobID: jobID, Stage: StageSynthesize, Err: ErrNoSegments}
	}

	joined, err := w.join(ctx, jobID, segments)
	if err != nil {
		return nil, w.jobErr(ctx, jobID, StageConcat, err)
	}

	out, err := naming.RecordingPath(w.dir, naming.BaseName(text))
	if err != nil {
		return nil, &JobError{JobID: jobID, Stage: StageWrite, Err: err}
	}
	if err := wavfile.Write(out, joined); err != nil {
		return nil, &JobError{JobID: jobID, Stage: StageWrite, Err: err}
	}

	res := &Result{
		JobID:    jobID,
		Source:   out,
		Path:     out,
		Speed:    1.0,
		Segments: len(segments),
		Duration: wavfile.Duration(joined),
	}
	w.logger.Info("Conversion finished",
		"job", jobID,
		"path", out,
		"segments", res.Segments,
		"audio", res.Duration.Round(time.Millisecond),
		"took", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

// join reads the segments back in order and concatenates them.
func (w *Worker) join(ctx context.Context, jobID string, segments []string) (*audio.IntBuffer, error) {
	bufs := make([]*audio.IntBuffer, 0, len(segments))
	for _, path := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf, err := wavfile.Read(path)
		if err != nil {
			return nil, err
		}
		bufs = append(bufs, buf)
	}
	return wavfile.Concat(bufs, func(index int, got, want audio.Format) {
		w.logger.Warn("Segment format differs from output",
			"job", jobID,
			"segment", index,
			"rate", got.SampleRate,
			"channels", got.NumChannels,
			"output_rate", want.SampleRate,
			"output_channels", want.NumChannels,
		)
	})
}

func (w *Worker) removeSegments(paths []string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("Unable to remove segment", "path", filepath.Base(p), "err", err)
		}
	}
}

// jobErr maps cancellation to ErrCanceled and wraps everything else.
func (w *Worker) jobErr(ctx context.Context, jobID, stage string, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		w.logger.Info("Conversion canceled", "job", jobID, "stage", stage)
		return ErrCanceled
	}
	if errors.Is(err, synth.ErrEmptyText) {
		return ErrEmptyText
	}
	var jerr *JobError
	if errors.As(err, &jerr) {
		return jerr
	}
	return &JobError{JobID: jobID, Stage: stage, Err: err}
}
