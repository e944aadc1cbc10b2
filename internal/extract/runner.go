package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// maxStderr caps how much of a tool's stderr is logged or carried in errors.
const maxStderr = 8 << 10

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// CommandError is a failed external tool run. Stderr holds the tool's own
// diagnostic, trimmed, and is appended to the message when present.
type CommandError struct {
	Name   string
	Err    error
	Stderr string
}

func newCommandError(name string, err error, stderr []byte) *CommandError {
	return &CommandError{
		Name:   name,
		Err:    err,
		Stderr: truncate(strings.TrimSpace(string(stderr)), maxStderr),
	}
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Name, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExitCode returns the tool's exit status, or -1 when it did not exit normally.
func (e *CommandError) ExitCode() int {
	var ee *exec.ExitError
	if errors.As(e.Err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	log := r.logger.With(
		"tool", name,
		"args", strings.Join(args, " "),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if err != nil {
		ce := newCommandError(name, err, errb.Bytes())
		log.Warn("tool failed", "exit_code", ce.ExitCode(), "error", err, "stderr", ce.Stderr)
		return out.Bytes(), errb.Bytes(), err
	}
	log.Debug("tool finished", "stdout_bytes", out.Len(), "stderr_bytes", errb.Len())
	return out.Bytes(), errb.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
