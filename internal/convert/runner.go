package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Tempo produces the playable file from a recording and changes the speed
// of one already produced.
type Tempo interface {
	Process(ctx context.Context, src string, factor float64) (string, error)
	Retime(ctx context.Context, path string, factor float64) error
}

// Runner allows one job at a time. Starting a job cancels the job in flight
// and waits for it to clean up before the new one begins.
type Runner struct {
	worker *Worker
	tempo  Tempo

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner returns a Runner. tempo may be nil, in which case the recording
// is returned as is.
func NewRunner(worker *Worker, tempo Tempo) *Runner {
	return &Runner{worker: worker, tempo: tempo}
}

// Run converts text and applies the speed factor. It blocks until the job is
// done; callers wanting concurrency run it on their own goroutine.
func (r *Runner) Run(ctx context.Context, text string, factor float64) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
	}
	prev := r.done
	r.cancel, r.done = cancel, done
	r.mu.Unlock()

	defer func() {
		cancel()
		r.mu.Lock()
		if r.done == done {
			r.cancel, r.done = nil, nil
		}
		r.mu.Unlock()
		close(done)
	}()

	if prev != nil {
		log.Debug("Waiting for previous conversion to stop")
		<-prev
	}
	if ctx.Err() != nil {
		return nil, ErrCanceled
	}

	jobID := newJobID()
	res, err := r.worker.convert(ctx, jobID, text)
	if err != nil {
		return nil, err
	}
	if r.tempo == nil {
		return res, nil
	}

	path, err := r.tempo.Process(ctx, res.Source, factor)
	if errors.Is(ctx.Err(), context.Canceled) {
		// superseded while processing; a newer job owns the result
		removeFiles(res.Source, path)
		log.Info("Conversion canceled", "job", jobID, "stage", StageTempo)
		return nil, ErrCanceled
	}
	if err != nil {
		return nil, &JobError{JobID: jobID, Stage: StageTempo, Err: err}
	}
	res.Path = path
	res.Speed = factor
	res.Duration = scaleDuration(res.Duration, factor)
	return res, nil
}

// Respeed changes the tempo of an existing recording in place. factor is
// relative to the recording's current speed.
func (r *Runner) Respeed(ctx context.Context, path string, factor float64) error {
	if r.tempo == nil {
		return nil
	}
	if err := r.tempo.Retime(ctx, path, factor); err != nil {
		return fmt.Errorf("unable to change speed of %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Cancel stops the job in flight, if any, and waits for it.
func (r *Runner) Cancel() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Busy reports whether a job is running.
func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done != nil
}

// IsCanceled reports whether err came from a superseded job.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// scaleDuration returns the playing time of d after a tempo change.
func scaleDuration(d time.Duration, factor float64) time.Duration {
	if factor <= 0 {
		return d
	}
	return time.Duration(float64(d) / factor)
}

func removeFiles(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("Unable to remove file of canceled job", "path", filepath.Base(p), "err", err)
		}
	}
}
