package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyText is returned when the text has no speakable content.
	ErrEmptyText = errors.New("no text to convert")

	// ErrNoSegments is returned when synthesis finished without audio.
	ErrNoSegments = errors.New("no audio segments were produced")

	// ErrCanceled is returned by a job superseded by a newer one.
	ErrCanceled = errors.New("conversion canceled")
)

// Job stages reported in JobError.
const (
	StageSynthesize = "synthesize"
	StageWrite      = "write"
	StageConcat     = "concat"
	StageTempo      = "tempo"
)

// JobError records which stage of a job failed.
type JobError struct {
	JobID string
	Stage string
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}
