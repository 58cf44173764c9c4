// Package tempo produces the "processed" copy of a recording: a time-stretched
// version made by ffmpeg's atempo filter, or the recording itself renamed when
// no speed change is needed.
package tempo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/paste2audio/internal/naming"
	"github.com/dgnsrekt/paste2audio/internal/proc"
)

// atempo accepts factors in [0.5, 2.0]; larger changes are chained.
const (
	minAtempo = 0.5
	maxAtempo = 2.0
)

// ErrInvalidSpeed is returned for non-positive or non-finite speed factors.
var ErrInvalidSpeed = errors.New("invalid speed factor")

// Speed is a selectable playback speed.
type Speed struct {
	Label  string
	Factor float64
}

// Speeds are the selectable multipliers, in menu order.
var Speeds = []Speed{
	{"1x", 1.0},
	{"1.2x", 1.2},
	{"1.5x", 1.5},
	{"1.75x", 1.75},
}

// ParseSpeed resolves a menu label ("1.5x") or a plain factor ("1.5").
func ParseSpeed(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, sp := range Speeds {
		if sp.Label == s {
			return sp.Factor, nil
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "x"), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSpeed, s)
	}
	if err := validate(f); err != nil {
		return 0, err
	}
	return f, nil
}

// Label returns the menu label for factor, or a formatted factor.
func Label(factor float64) string {
	for _, sp := range Speeds {
		if isUnity(sp.Factor / factor) {
			return sp.Label
		}
	}
	return strconv.FormatFloat(factor, 'g', 3, 64) + "x"
}

// NextSpeed returns the menu entry after factor, wrapping around.
func NextSpeed(factor float64) Speed {
	for i, sp := range Speeds {
		if isUnity(sp.Factor / factor) {
			return Speeds[(i+1)%len(Speeds)]
		}
	}
	return Speeds[0]
}

func validate(factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, factor)
	}
	return nil
}

func isUnity(f float64) bool {
	return math.Abs(f-1.0) < 1e-9
}

// Filter returns the ffmpeg audio filter for factor, chaining atempo stages
// when factor is outside a single stage's range.
func Filter(factor float64) (string, error) {
	if err := validate(factor); err != nil {
		return "", err
	}

	var stages []string
	for factor > maxAtempo {
		stages = append(stages, "atempo="+formatFactor(maxAtempo))
		factor /= maxAtempo
	}
	for factor < minAtempo {
		stages = append(stages, "atempo="+formatFactor(minAtempo))
		factor /= minAtempo
	}
	stages = append(stages, "atempo="+formatFactor(factor))
	return strings.Join(stages, ","), nil
}

func formatFactor(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Processor applies tempo changes with ffmpeg.
type Processor struct {
	ffmpeg string
	runner *proc.Runner
}

// New returns a Processor that invokes ffmpegBin through runner. The binary is
// only resolved when a speed change is actually requested.
func New(ffmpegBin string, runner *proc.Runner) *Processor {
	if ffmpegBin == "" {
		ffmpegBin = "ffmpeg"
	}
	return &Processor{ffmpeg: ffmpegBin, runner: runner}
}

// Process produces the processed file for src and returns its path. At speed
// 1.0 src is renamed; otherwise ffmpeg writes a tempo-shifted copy and src is
// left in place. An existing processed file is never overwritten.
func (p *Processor) Process(ctx context.Context, src string, factor float64) (string, error) {
	if err := validate(factor); err != nil {
		return "", err
	}
	dst := naming.ProcessedPath(src)
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("%s: %w", dst, fs.ErrExist)
	}

	if isUnity(factor) {
		if err := os.Rename(src, dst); err != nil {
			return "", fmt.Errorf("unable to rename recording: %w", err)
		}
		log.Debug("Renamed recording", "from", src, "to", dst)
		return dst, nil
	}

	if err := p.atempo(ctx, src, dst, factor); err != nil {
		return "", err
	}
	return dst, nil
}

// Retime changes the tempo of path in place by factor. ffmpeg writes to a
// hidden file next to path which then replaces it; path is untouched when
// ffmpeg fails.
func (p *Processor) Retime(ctx context.Context, path string, factor float64) error {
	if err := validate(factor); err != nil {
		return err
	}
	if isUnity(factor) {
		return nil
	}

	dir, file := filepath.Split(path)
	tmp := filepath.Join(dir, ".retime_"+file)
	if err := p.atempo(ctx, path, tmp, factor); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("unable to replace recording: %w", err)
	}
	return nil
}

func (p *Processor) atempo(ctx context.Context, src, dst string, factor float64) error {
	filter, err := Filter(factor)
	if err != nil {
		return err
	}
	bin, err := proc.FindBinary(p.ffmpeg, proc.CommonLocations("ffmpeg")...)
	if err != nil {
		return fmt.Errorf("ffmpeg is required for speed %s: %w", Label(factor), err)
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", src, "-filter:a", filter, dst}
	if _, err := p.runner.Run(ctx, bin, args...); err != nil {
		_ = os.Remove(dst)
		return fmt.Errorf("unable to apply tempo: %w", err)
	}
	log.Debug("Applied tempo", "src", src, "dst", dst, "filter", filter)
	return nil
}
