// Package proc runs the external tools paste2audio depends on (ffmpeg, piper,
// gtts-cli) with timeouts and captured stderr.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTimeout applies when neither the caller's context nor the Runner
// carry a deadline.
const DefaultTimeout = 30 * time.Second

// ErrTimeout is returned when a subprocess outlives its deadline.
var ErrTimeout = errors.New("subprocess timed out")

// Runner executes commands. The zero value is usable and applies
// DefaultTimeout.
type Runner struct {
	Timeout time.Duration

	// Dir and Env are copied to every command when set.
	Dir string
	Env []string
}

// New returns a Runner with the given timeout.
func New(timeout time.Duration) *Runner {
	return &Runner{Timeout: timeout}
}

func (r *Runner) timeout() time.Duration {
	if r == nil || r.Timeout <= 0 {
		return DefaultTimeout
	}
	return r.Timeout
}

// Run executes name with args and returns its stdout.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.run(ctx, nil, name, args...)
}

// RunWithStdin executes name with input on stdin and returns its stdout.
// Stdin is attached before the process starts.
func (r *Runner) RunWithStdin(ctx context.Context, input string, name string, args ...string) ([]byte, error) {
	return r.run(ctx, strings.NewReader(input), name, args...)
}

func (r *Runner) run(ctx context.Context, stdin *strings.Reader, name string, args ...string) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout())
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	if r != nil {
		cmd.Dir = r.Dir
		if len(r.Env) > 0 {
			cmd.Env = append(os.Environ(), r.Env...)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	logExecution(name, args, time.Since(start), err)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(name), ErrTimeout)
		}
		return nil, fmt.Errorf("%s cancelled: %w", filepath.Base(name), ctxErr)
	}
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s failed: %w\nstderr: %s", filepath.Base(name), err, msg)
		}
		return nil, fmt.Errorf("%s failed: %w", filepath.Base(name), err)
	}
	return stdout.Bytes(), nil
}

func logExecution(name string, args []string, d time.Duration, err error) {
	if err != nil {
		log.Debug("Subprocess failed", "command", name, "args", args, "duration", d, "error", err)
		return
	}
	log.Debug("Subprocess executed", "command", name, "args", args, "duration", d)
}

// FindBinary resolves name through PATH, then through the extra locations
// given. A configured absolute path is returned as is when it exists.
func FindBinary(name string, extra ...string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("binary %q not found: %w", name, err)
		}
		return name, nil
	}

	path, lookErr := exec.LookPath(name)
	if lookErr == nil {
		return path, nil
	}
	for _, p := range extra {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("binary %q not found in PATH: %w", name, lookErr)
}

// CommonLocations lists the usual install locations of name outside PATH.
func CommonLocations(name string) []string {
	home, _ := os.UserHomeDir()
	locs := []string{
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/usr/bin", name),
		filepath.Join("/opt/homebrew/bin", name),
	}
	if home != "" {
		locs = append(locs, filepath.Join(home, ".local", "bin", name))
	}
	return locs
}
